package prospect_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/service/prospect"
)

// memRepo is an in-memory prospect repository for unit testing.
type memRepo struct {
	mu       sync.Mutex
	lists    map[uuid.UUID]*domain.ProspectList
	contacts map[uuid.UUID]*domain.ProspectContact
}

func newMemRepo() *memRepo {
	return &memRepo{
		lists:    make(map[uuid.UUID]*domain.ProspectList),
		contacts: make(map[uuid.UUID]*domain.ProspectContact),
	}
}

func (m *memRepo) GetList(_ context.Context, id uuid.UUID) (*domain.ProspectList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[id]
	if !ok {
		return nil, prospect.ErrListNotFound
	}
	cp := *l
	for _, c := range m.contacts {
		if c.ListID == id {
			cp.ContactCount++
		}
	}
	return &cp, nil
}

func (m *memRepo) ListLists(_ context.Context) ([]domain.ProspectList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ProspectList
	for _, l := range m.lists {
		out = append(out, *l)
	}
	return out, nil
}

func (m *memRepo) CreateList(_ context.Context, l *domain.ProspectList) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.lists[l.ID] = &cp
	return nil
}

func (m *memRepo) UpdateList(_ context.Context, id uuid.UUID, name, description, source *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[id]
	if !ok {
		return prospect.ErrListNotFound
	}
	if name != nil {
		l.Name = *name
	}
	if description != nil {
		l.Description = *description
	}
	if source != nil {
		l.Source = *source
	}
	return nil
}

func (m *memRepo) DeleteList(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[id]; !ok {
		return prospect.ErrListNotFound
	}
	delete(m.lists, id)
	for cid, c := range m.contacts {
		if c.ListID == id {
			delete(m.contacts, cid)
		}
	}
	return nil
}

func (m *memRepo) GetContact(_ context.Context, listID, contactID uuid.UUID) (*domain.ProspectContact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[contactID]
	if !ok || c.ListID != listID {
		return nil, prospect.ErrContactNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) ListContacts(_ context.Context, listID uuid.UUID, limit, offset int) ([]domain.ProspectContact, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ProspectContact
	for _, c := range m.contacts {
		if c.ListID == listID {
			out = append(out, *c)
		}
	}
	total := len(out)
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) || limit <= 0 {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (m *memRepo) CreateContact(_ context.Context, c *domain.ProspectContact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.contacts {
		if existing.ListID == c.ListID && existing.EmailHash == c.EmailHash {
			return prospect.ErrDuplicateContact
		}
	}
	cp := *c
	m.contacts[c.ID] = &cp
	return nil
}

func (m *memRepo) DeleteContact(_ context.Context, listID, contactID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[contactID]
	if !ok || c.ListID != listID {
		return prospect.ErrContactNotFound
	}
	delete(m.contacts, contactID)
	return nil
}

func (m *memRepo) ActiveContacts(_ context.Context, listID uuid.UUID) ([]domain.ProspectContact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ProspectContact
	for _, c := range m.contacts {
		if c.ListID == listID && c.Status == domain.ContactActive {
			out = append(out, *c)
		}
	}
	return out, nil
}

func newService(t *testing.T) (*prospect.Service, uuid.UUID) {
	t.Helper()
	svc := prospect.NewService(newMemRepo())
	l, err := svc.CreateList(context.Background(), uuid.New(), prospect.ListInput{Name: "Q3 Leads"})
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}
	return svc, l.ID
}

func TestCreateListRequiresName(t *testing.T) {
	svc := prospect.NewService(newMemRepo())
	_, err := svc.CreateList(context.Background(), uuid.New(), prospect.ListInput{Name: "  "})
	if !errors.Is(err, prospect.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestAddContactNormalizesAndHashes(t *testing.T) {
	svc, listID := newService(t)

	c, err := svc.AddContact(context.Background(), listID, prospect.ContactInput{
		Email:     "  Ada@Example.COM ",
		FirstName: "Ada",
		Company:   "Acme",
	})
	if err != nil {
		t.Fatalf("AddContact: %v", err)
	}
	if c.Email != "ada@example.com" {
		t.Errorf("email = %q", c.Email)
	}
	if c.EmailHash != domain.HashEmail("ada@example.com") {
		t.Error("email hash mismatch")
	}
	if c.Status != domain.ContactActive {
		t.Errorf("status = %s", c.Status)
	}
}

func TestAddContactDuplicate(t *testing.T) {
	svc, listID := newService(t)
	ctx := context.Background()

	if _, err := svc.AddContact(ctx, listID, prospect.ContactInput{Email: "ada@example.com"}); err != nil {
		t.Fatalf("AddContact: %v", err)
	}
	// Same address with different casing hashes identically.
	_, err := svc.AddContact(ctx, listID, prospect.ContactInput{Email: "ADA@example.com"})
	if !errors.Is(err, prospect.ErrDuplicateContact) {
		t.Fatalf("err = %v, want ErrDuplicateContact", err)
	}
}

func TestImportCSV(t *testing.T) {
	svc, listID := newService(t)
	ctx := context.Background()

	// Pre-existing contact should be skipped by the import.
	if _, err := svc.AddContact(ctx, listID, prospect.ContactInput{Email: "existing@example.com"}); err != nil {
		t.Fatalf("AddContact: %v", err)
	}

	csvData := strings.Join([]string{
		"email,first_name,last_name,company,title,linkedin",
		"ada@example.com,Ada,Lovelace,Analytical Engines,CTO,linkedin.com/in/ada",
		"grace@example.com,Grace,Hopper,Navy,RADM,",
		"ADA@example.com,Ada,Dupe,,,",
		"existing@example.com,Already,Here,,,",
		"not-an-email,Bad,Row,,,",
	}, "\n")

	result, err := svc.ImportCSV(ctx, listID, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("imported = %d, want 2", result.Imported)
	}
	if result.Skipped != 3 {
		t.Errorf("skipped = %d, want 3", result.Skipped)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "invalid email") {
		t.Errorf("errors = %v", result.Errors)
	}

	contacts, total, err := svc.ListContacts(ctx, listID, 100, 0)
	if err != nil {
		t.Fatalf("ListContacts: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}

	// Unrecognized columns land in custom fields.
	for _, c := range contacts {
		if c.Email == "ada@example.com" {
			rc := prospect.RenderContext(&c)
			if rc["linkedin"] != "linkedin.com/in/ada" {
				t.Errorf("custom field missing: %v", rc)
			}
		}
	}
}

func TestImportCSVNoEmailColumn(t *testing.T) {
	svc, listID := newService(t)

	_, err := svc.ImportCSV(context.Background(), listID, strings.NewReader("name,company\nAda,Acme"))
	if !errors.Is(err, prospect.ErrBadCSV) {
		t.Fatalf("err = %v, want ErrBadCSV", err)
	}
}

func TestRenderContextLayersCustomFields(t *testing.T) {
	c := &domain.ProspectContact{
		Email:        "ada@example.com",
		FirstName:    "Ada",
		Company:      "Acme",
		CustomFields: []byte(`{"company":"Acme Corp","segment":"enterprise"}`),
	}

	ctx := prospect.RenderContext(c)
	if ctx["first_name"] != "Ada" {
		t.Errorf("first_name = %v", ctx["first_name"])
	}
	// Custom fields win over standard columns.
	if ctx["company"] != "Acme Corp" {
		t.Errorf("company = %v", ctx["company"])
	}
	if ctx["segment"] != "enterprise" {
		t.Errorf("segment = %v", ctx["segment"])
	}
}

func TestDeleteListCascades(t *testing.T) {
	svc, listID := newService(t)
	ctx := context.Background()

	if _, err := svc.AddContact(ctx, listID, prospect.ContactInput{Email: "ada@example.com"}); err != nil {
		t.Fatalf("AddContact: %v", err)
	}
	if err := svc.DeleteList(ctx, listID); err != nil {
		t.Fatalf("DeleteList: %v", err)
	}
	if _, _, err := svc.ListContacts(ctx, listID, 10, 0); !errors.Is(err, prospect.ErrListNotFound) {
		t.Fatalf("err = %v, want ErrListNotFound", err)
	}
}
