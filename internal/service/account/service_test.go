package account_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/service/account"
)

// memRepo is an in-memory account repository for unit testing.
type memRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.EmailAccount
	seq      int
}

func newMemRepo() *memRepo {
	return &memRepo{accounts: make(map[uuid.UUID]*domain.EmailAccount)}
}

func (m *memRepo) Get(_ context.Context, userID, id uuid.UUID) (*domain.EmailAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return nil, account.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, userID uuid.UUID) ([]domain.EmailAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.EmailAccount
	for _, a := range m.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) Create(_ context.Context, a *domain.EmailAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.UserID == a.UserID && existing.Address == a.Address {
			return account.ErrDuplicateAddress
		}
	}
	cp := *a
	m.seq++
	cp.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	m.accounts[cp.ID] = &cp
	return nil
}

func (m *memRepo) Update(_ context.Context, userID, id uuid.UUID, u account.UpdateFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return account.ErrNotFound
	}
	if u.DisplayName != nil {
		a.DisplayName = *u.DisplayName
	}
	if u.ReplyTo != nil {
		a.ReplyTo = *u.ReplyTo
	}
	if u.Signature != nil {
		a.Signature = *u.Signature
	}
	if u.DailyLimit != nil {
		a.DailyLimit = *u.DailyLimit
	}
	if u.Status != nil {
		a.Status = *u.Status
	}
	return nil
}

func (m *memRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return account.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *memRepo) SetDefault(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[id]; !ok || a.UserID != userID {
		return account.ErrNotFound
	}
	for _, a := range m.accounts {
		if a.UserID == userID {
			a.IsDefault = a.ID == id
		}
	}
	return nil
}

func (m *memRepo) MarkVerified(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return account.ErrNotFound
	}
	now := time.Now()
	a.Status = domain.AccountActive
	a.VerifiedAt = &now
	return nil
}

type fakeProber struct {
	err    error
	probed []string
}

func (f *fakeProber) Probe(_ context.Context, _ uuid.UUID, address string) error {
	f.probed = append(f.probed, address)
	return f.err
}

func TestCreateFirstAccountBecomesDefault(t *testing.T) {
	svc := account.NewService(newMemRepo(), nil)
	userID := uuid.New()

	a, err := svc.Create(context.Background(), userID, account.CreateInput{
		Address:     "Rep@Example.com",
		DisplayName: "Rep",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !a.IsDefault {
		t.Error("first account should be default")
	}
	if a.Address != "rep@example.com" {
		t.Errorf("address not normalized: %q", a.Address)
	}
	if a.Status != domain.AccountUnverified {
		t.Errorf("status = %s, want unverified", a.Status)
	}
}

func TestCreateRejectsBadAddress(t *testing.T) {
	svc := account.NewService(newMemRepo(), nil)

	_, err := svc.Create(context.Background(), uuid.New(), account.CreateInput{Address: "not-an-email"})
	if !errors.Is(err, account.ErrInvalidAddress) {
		t.Fatalf("err = %v, want ErrInvalidAddress", err)
	}
}

func TestCreateRejectsNegativeDailyLimit(t *testing.T) {
	svc := account.NewService(newMemRepo(), nil)

	_, err := svc.Create(context.Background(), uuid.New(), account.CreateInput{
		Address:    "rep@example.com",
		DailyLimit: -1,
	})
	if !errors.Is(err, account.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCreateDuplicateAddress(t *testing.T) {
	svc := account.NewService(newMemRepo(), nil)
	userID := uuid.New()
	ctx := context.Background()

	if _, err := svc.Create(ctx, userID, account.CreateInput{Address: "rep@example.com"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := svc.Create(ctx, userID, account.CreateInput{Address: "rep@example.com"})
	if !errors.Is(err, account.ErrDuplicateAddress) {
		t.Fatalf("err = %v, want ErrDuplicateAddress", err)
	}
}

func TestSetDefaultClearsOthers(t *testing.T) {
	repo := newMemRepo()
	svc := account.NewService(repo, nil)
	userID := uuid.New()
	ctx := context.Background()

	first, _ := svc.Create(ctx, userID, account.CreateInput{Address: "a@example.com"})
	second, err := svc.Create(ctx, userID, account.CreateInput{Address: "b@example.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.SetDefault(ctx, userID, second.ID); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}

	got, _ := svc.Get(ctx, userID, first.ID)
	if got.IsDefault {
		t.Error("previous default not cleared")
	}
	got, _ = svc.Get(ctx, userID, second.ID)
	if !got.IsDefault {
		t.Error("new default not set")
	}
}

func TestDeleteDefaultPromotesRemaining(t *testing.T) {
	svc := account.NewService(newMemRepo(), nil)
	userID := uuid.New()
	ctx := context.Background()

	first, _ := svc.Create(ctx, userID, account.CreateInput{Address: "a@example.com"})
	second, _ := svc.Create(ctx, userID, account.CreateInput{Address: "b@example.com"})

	if err := svc.Delete(ctx, userID, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := svc.Get(ctx, userID, second.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.IsDefault {
		t.Error("remaining account not promoted to default")
	}
}

func TestVerifyActivatesAccount(t *testing.T) {
	prober := &fakeProber{}
	svc := account.NewService(newMemRepo(), prober)
	userID := uuid.New()
	ctx := context.Background()

	a, _ := svc.Create(ctx, userID, account.CreateInput{Address: "rep@example.com"})

	verified, err := svc.Verify(ctx, userID, a.ID)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verified.Status != domain.AccountActive {
		t.Errorf("status = %s, want active", verified.Status)
	}
	if verified.VerifiedAt == nil {
		t.Error("verified_at not stamped")
	}
	if len(prober.probed) != 1 || prober.probed[0] != "rep@example.com" {
		t.Errorf("prober saw %v", prober.probed)
	}
}

func TestVerifyFailsWhenProbeFails(t *testing.T) {
	prober := &fakeProber{err: errors.New("smtp 550")}
	svc := account.NewService(newMemRepo(), prober)
	userID := uuid.New()
	ctx := context.Background()

	a, _ := svc.Create(ctx, userID, account.CreateInput{Address: "rep@example.com"})

	if _, err := svc.Verify(ctx, userID, a.ID); !errors.Is(err, account.ErrNotVerifiable) {
		t.Fatalf("err = %v, want ErrNotVerifiable", err)
	}
	got, _ := svc.Get(ctx, userID, a.ID)
	if got.Status != domain.AccountUnverified {
		t.Errorf("status changed to %s after failed probe", got.Status)
	}
}

func TestCrossUserAccessReadsAsNotFound(t *testing.T) {
	svc := account.NewService(newMemRepo(), nil)
	ctx := context.Background()

	owner := uuid.New()
	a, _ := svc.Create(ctx, owner, account.CreateInput{Address: "rep@example.com"})

	if _, err := svc.Get(ctx, uuid.New(), a.ID); !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
