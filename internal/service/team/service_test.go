package team_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/service/team"
)

// memRepo is an in-memory team repository for unit testing.
type memRepo struct {
	mu      sync.Mutex
	teams   map[uuid.UUID]*domain.Team
	members map[uuid.UUID][]*domain.TeamMember // keyed by team id
	invites map[uuid.UUID]*domain.Invitation
}

func newMemRepo() *memRepo {
	return &memRepo{
		teams:   make(map[uuid.UUID]*domain.Team),
		members: make(map[uuid.UUID][]*domain.TeamMember),
		invites: make(map[uuid.UUID]*domain.Invitation),
	}
}

func (m *memRepo) Get(_ context.Context, id uuid.UUID) (*domain.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[id]
	if !ok {
		return nil, team.ErrNotFound
	}
	cp := *t
	cp.MemberCount = len(m.members[id])
	return &cp, nil
}

func (m *memRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]domain.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Team
	for id, members := range m.members {
		for _, mem := range members {
			if mem.UserID == userID {
				out = append(out, *m.teams[id])
			}
		}
	}
	return out, nil
}

func (m *memRepo) Create(_ context.Context, t *domain.Team, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.teams[t.ID] = &cp
	m.members[t.ID] = []*domain.TeamMember{{
		TeamID: t.ID, UserID: ownerID, Role: domain.TeamOwner, JoinedAt: time.Now(),
	}}
	return nil
}

func (m *memRepo) Update(_ context.Context, id uuid.UUID, name, description *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[id]
	if !ok {
		return team.ErrNotFound
	}
	if name != nil {
		t.Name = *name
	}
	if description != nil {
		t.Description = *description
	}
	return nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teams[id]; !ok {
		return team.ErrNotFound
	}
	delete(m.teams, id)
	delete(m.members, id)
	return nil
}

func (m *memRepo) GetMember(_ context.Context, teamID, userID uuid.UUID) (*domain.TeamMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mem := range m.members[teamID] {
		if mem.UserID == userID {
			cp := *mem
			return &cp, nil
		}
	}
	return nil, team.ErrMemberNotFound
}

func (m *memRepo) ListMembers(_ context.Context, teamID uuid.UUID) ([]domain.TeamMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TeamMember
	for _, mem := range m.members[teamID] {
		out = append(out, *mem)
	}
	return out, nil
}

func (m *memRepo) AddMember(_ context.Context, mem *domain.TeamMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.members[mem.TeamID] {
		if existing.UserID == mem.UserID {
			return team.ErrAlreadyMember
		}
	}
	cp := *mem
	m.members[mem.TeamID] = append(m.members[mem.TeamID], &cp)
	return nil
}

func (m *memRepo) UpdateMemberRole(_ context.Context, teamID, userID uuid.UUID, role domain.TeamRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mem := range m.members[teamID] {
		if mem.UserID == userID {
			mem.Role = role
			return nil
		}
	}
	return team.ErrMemberNotFound
}

func (m *memRepo) RemoveMember(_ context.Context, teamID, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := m.members[teamID]
	for i, mem := range members {
		if mem.UserID == userID {
			m.members[teamID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return team.ErrMemberNotFound
}

func (m *memRepo) CountOwners(_ context.Context, teamID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, mem := range m.members[teamID] {
		if mem.Role == domain.TeamOwner {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) CreateInvitation(_ context.Context, inv *domain.Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inv
	m.invites[inv.ID] = &cp
	return nil
}

func (m *memRepo) ListInvitations(_ context.Context, teamID uuid.UUID) ([]domain.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Invitation
	for _, inv := range m.invites {
		if inv.TeamID == teamID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *memRepo) GetInvitation(_ context.Context, teamID, invID uuid.UUID) (*domain.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invites[invID]
	if !ok || inv.TeamID != teamID {
		return nil, team.ErrInviteNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *memRepo) GetInvitationByToken(_ context.Context, token string) (*domain.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invites {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, team.ErrInviteNotFound
}

func (m *memRepo) UpdateInvitationStatus(_ context.Context, invID uuid.UUID, status domain.InvitationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invites[invID]
	if !ok {
		return team.ErrInviteNotFound
	}
	inv.Status = status
	return nil
}

func (m *memRepo) tokenFor(invID uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invites[invID].Token
}

const inviteExpiry = 7 * 24 * time.Hour

func TestCreateTeamMakesCreatorOwner(t *testing.T) {
	repo := newMemRepo()
	svc := team.NewService(repo, inviteExpiry)
	userID := uuid.New()
	ctx := context.Background()

	tm, err := svc.Create(ctx, userID, team.CreateInput{Name: "SDR Pod"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	m, err := repo.GetMember(ctx, tm.ID, userID)
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if m.Role != domain.TeamOwner {
		t.Errorf("creator role = %s, want owner", m.Role)
	}
}

func TestCreateRequiresName(t *testing.T) {
	svc := team.NewService(newMemRepo(), inviteExpiry)

	if _, err := svc.Create(context.Background(), uuid.New(), team.CreateInput{Name: "  "}); !errors.Is(err, team.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestUpdateRejectsBlankName(t *testing.T) {
	svc := team.NewService(newMemRepo(), inviteExpiry)
	ctx := context.Background()

	owner := uuid.New()
	tm, _ := svc.Create(ctx, owner, team.CreateInput{Name: "SDR Pod"})

	blank := " "
	if _, err := svc.Update(ctx, owner, tm.ID, team.UpdateInput{Name: &blank}); !errors.Is(err, team.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestInviteRejectsBadEmail(t *testing.T) {
	svc := team.NewService(newMemRepo(), inviteExpiry)
	ctx := context.Background()

	owner := uuid.New()
	tm, _ := svc.Create(ctx, owner, team.CreateInput{Name: "SDR Pod"})

	if _, err := svc.Invite(ctx, owner, tm.ID, team.InviteInput{Email: "not-an-email"}); !errors.Is(err, team.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestNonMemberReadsAsNotFound(t *testing.T) {
	svc := team.NewService(newMemRepo(), inviteExpiry)
	ctx := context.Background()

	tm, _ := svc.Create(ctx, uuid.New(), team.CreateInput{Name: "SDR Pod"})
	if _, err := svc.Get(ctx, uuid.New(), tm.ID); !errors.Is(err, team.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRequiresOwner(t *testing.T) {
	repo := newMemRepo()
	svc := team.NewService(repo, inviteExpiry)
	ctx := context.Background()

	owner := uuid.New()
	member := uuid.New()
	tm, _ := svc.Create(ctx, owner, team.CreateInput{Name: "SDR Pod"})
	repo.AddMember(ctx, &domain.TeamMember{TeamID: tm.ID, UserID: member, Role: domain.TeamMemberRole})

	if err := svc.Delete(ctx, member, tm.ID); !errors.Is(err, team.ErrForbidden) {
		t.Fatalf("member delete err = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, owner, tm.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestLastOwnerCannotBeDemotedOrRemoved(t *testing.T) {
	repo := newMemRepo()
	svc := team.NewService(repo, inviteExpiry)
	ctx := context.Background()

	owner := uuid.New()
	tm, _ := svc.Create(ctx, owner, team.CreateInput{Name: "SDR Pod"})

	if _, err := svc.ChangeMemberRole(ctx, owner, tm.ID, owner, domain.TeamMemberRole); !errors.Is(err, team.ErrLastOwner) {
		t.Fatalf("demote err = %v, want ErrLastOwner", err)
	}
	if err := svc.RemoveMember(ctx, owner, tm.ID, owner); !errors.Is(err, team.ErrLastOwner) {
		t.Fatalf("remove err = %v, want ErrLastOwner", err)
	}
}

func TestMemberCanLeaveButNotRemoveOthers(t *testing.T) {
	repo := newMemRepo()
	svc := team.NewService(repo, inviteExpiry)
	ctx := context.Background()

	owner := uuid.New()
	memberA := uuid.New()
	memberB := uuid.New()
	tm, _ := svc.Create(ctx, owner, team.CreateInput{Name: "SDR Pod"})
	repo.AddMember(ctx, &domain.TeamMember{TeamID: tm.ID, UserID: memberA, Role: domain.TeamMemberRole})
	repo.AddMember(ctx, &domain.TeamMember{TeamID: tm.ID, UserID: memberB, Role: domain.TeamMemberRole})

	if err := svc.RemoveMember(ctx, memberA, tm.ID, memberB); !errors.Is(err, team.ErrForbidden) {
		t.Fatalf("remove other err = %v, want ErrForbidden", err)
	}
	if err := svc.RemoveMember(ctx, memberA, tm.ID, memberA); err != nil {
		t.Fatalf("leave: %v", err)
	}
}

func TestInviteAndAccept(t *testing.T) {
	repo := newMemRepo()
	svc := team.NewService(repo, inviteExpiry)
	ctx := context.Background()

	owner := uuid.New()
	tm, _ := svc.Create(ctx, owner, team.CreateInput{Name: "SDR Pod"})

	inv, err := svc.Invite(ctx, owner, tm.ID, team.InviteInput{
		Email: "New@Example.com",
		Role:  domain.TeamAdmin,
	})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if inv.Email != "new@example.com" {
		t.Errorf("email not normalized: %q", inv.Email)
	}

	invitee := &domain.User{ID: uuid.New(), Email: "new@example.com"}
	m, err := svc.Accept(ctx, invitee, repo.tokenFor(inv.ID))
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if m.Role != domain.TeamAdmin {
		t.Errorf("joined role = %s, want admin", m.Role)
	}

	// Token is single-use.
	other := &domain.User{ID: uuid.New(), Email: "new@example.com"}
	if _, err := svc.Accept(ctx, other, repo.tokenFor(inv.ID)); !errors.Is(err, team.ErrInviteNotUsable) {
		t.Fatalf("second accept err = %v, want ErrInviteNotUsable", err)
	}
}

func TestAcceptRejectsWrongEmail(t *testing.T) {
	repo := newMemRepo()
	svc := team.NewService(repo, inviteExpiry)
	ctx := context.Background()

	owner := uuid.New()
	tm, _ := svc.Create(ctx, owner, team.CreateInput{Name: "SDR Pod"})
	inv, _ := svc.Invite(ctx, owner, tm.ID, team.InviteInput{Email: "new@example.com"})

	stranger := &domain.User{ID: uuid.New(), Email: "other@example.com"}
	if _, err := svc.Accept(ctx, stranger, repo.tokenFor(inv.ID)); !errors.Is(err, team.ErrInviteEmailMatch) {
		t.Fatalf("err = %v, want ErrInviteEmailMatch", err)
	}
}

func TestAcceptExpiredInvitation(t *testing.T) {
	repo := newMemRepo()
	svc := team.NewService(repo, time.Nanosecond)
	ctx := context.Background()

	owner := uuid.New()
	tm, _ := svc.Create(ctx, owner, team.CreateInput{Name: "SDR Pod"})
	inv, _ := svc.Invite(ctx, owner, tm.ID, team.InviteInput{Email: "new@example.com"})

	time.Sleep(time.Millisecond)

	invitee := &domain.User{ID: uuid.New(), Email: "new@example.com"}
	if _, err := svc.Accept(ctx, invitee, repo.tokenFor(inv.ID)); !errors.Is(err, team.ErrInviteNotUsable) {
		t.Fatalf("err = %v, want ErrInviteNotUsable", err)
	}

	got, _ := repo.GetInvitation(ctx, tm.ID, inv.ID)
	if got.Status != domain.InviteExpired {
		t.Errorf("status = %s, want expired", got.Status)
	}
}

func TestRevokeInvitation(t *testing.T) {
	repo := newMemRepo()
	svc := team.NewService(repo, inviteExpiry)
	ctx := context.Background()

	owner := uuid.New()
	tm, _ := svc.Create(ctx, owner, team.CreateInput{Name: "SDR Pod"})
	inv, _ := svc.Invite(ctx, owner, tm.ID, team.InviteInput{Email: "new@example.com"})

	if err := svc.RevokeInvitation(ctx, owner, tm.ID, inv.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	invitee := &domain.User{ID: uuid.New(), Email: "new@example.com"}
	if _, err := svc.Accept(ctx, invitee, repo.tokenFor(inv.ID)); !errors.Is(err, team.ErrInviteNotUsable) {
		t.Fatalf("err = %v, want ErrInviteNotUsable", err)
	}
}

func TestOnlyOwnerGrantsOwner(t *testing.T) {
	repo := newMemRepo()
	svc := team.NewService(repo, inviteExpiry)
	ctx := context.Background()

	owner := uuid.New()
	admin := uuid.New()
	member := uuid.New()
	tm, _ := svc.Create(ctx, owner, team.CreateInput{Name: "SDR Pod"})
	repo.AddMember(ctx, &domain.TeamMember{TeamID: tm.ID, UserID: admin, Role: domain.TeamAdmin})
	repo.AddMember(ctx, &domain.TeamMember{TeamID: tm.ID, UserID: member, Role: domain.TeamMemberRole})

	if _, err := svc.ChangeMemberRole(ctx, admin, tm.ID, member, domain.TeamOwner); !errors.Is(err, team.ErrForbidden) {
		t.Fatalf("admin grant owner err = %v, want ErrForbidden", err)
	}
	if _, err := svc.ChangeMemberRole(ctx, owner, tm.ID, member, domain.TeamOwner); err != nil {
		t.Fatalf("owner grant owner: %v", err)
	}
}
