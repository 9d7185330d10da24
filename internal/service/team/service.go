package team

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/pkg/logger"
)

// Service implements team business logic.
type Service struct {
	repo         Repository
	inviteExpiry time.Duration
	now          func() time.Time
}

// NewService creates a team service. inviteExpiry controls how long
// invitation tokens stay redeemable.
func NewService(repo Repository, inviteExpiry time.Duration) *Service {
	return &Service{
		repo:         repo,
		inviteExpiry: inviteExpiry,
		now:          time.Now,
	}
}

// requireRole loads the caller's membership and checks it against the
// allowed roles. Non-members read as ErrNotFound so team existence never
// leaks across tenants.
func (s *Service) requireRole(ctx context.Context, teamID, userID uuid.UUID, roles ...domain.TeamRole) (*domain.TeamMember, error) {
	m, err := s.repo.GetMember(ctx, teamID, userID)
	if err != nil {
		return nil, ErrNotFound
	}
	for _, r := range roles {
		if m.Role == r {
			return m, nil
		}
	}
	return nil, ErrForbidden
}

// Get returns a team the caller belongs to.
func (s *Service) Get(ctx context.Context, userID, teamID uuid.UUID) (*domain.Team, error) {
	if _, err := s.repo.GetMember(ctx, teamID, userID); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, teamID)
}

// List returns the caller's teams.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]domain.Team, error) {
	return s.repo.ListForUser(ctx, userID)
}

// CreateInput holds the fields for creating a team.
type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create persists a new team with the caller as owner.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*domain.Team, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	t := &domain.Team{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		CreatedBy:   userID,
	}
	if err := s.repo.Create(ctx, t, userID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, t.ID)
}

// UpdateInput holds the mutable team fields.
type UpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Update modifies team metadata. Owners and team admins only.
func (s *Service) Update(ctx context.Context, userID, teamID uuid.UUID, input UpdateInput) (*domain.Team, error) {
	if _, err := s.requireRole(ctx, teamID, userID, domain.TeamOwner, domain.TeamAdmin); err != nil {
		return nil, err
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if err := s.repo.Update(ctx, teamID, input.Name, input.Description); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, teamID)
}

// Delete removes a team. Owners only.
func (s *Service) Delete(ctx context.Context, userID, teamID uuid.UUID) error {
	if _, err := s.requireRole(ctx, teamID, userID, domain.TeamOwner); err != nil {
		return err
	}
	return s.repo.Delete(ctx, teamID)
}

// ListMembers returns the team's memberships. Any member may look.
func (s *Service) ListMembers(ctx context.Context, userID, teamID uuid.UUID) ([]domain.TeamMember, error) {
	if _, err := s.repo.GetMember(ctx, teamID, userID); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.ListMembers(ctx, teamID)
}

// ChangeMemberRole updates a member's role. Owners and team admins only;
// only owners may grant or revoke the owner role, and the last owner
// cannot be demoted.
func (s *Service) ChangeMemberRole(ctx context.Context, callerID, teamID, memberID uuid.UUID, role domain.TeamRole) (*domain.TeamMember, error) {
	if !domain.ValidTeamRole(role) {
		return nil, ErrInvalidRole
	}
	caller, err := s.requireRole(ctx, teamID, callerID, domain.TeamOwner, domain.TeamAdmin)
	if err != nil {
		return nil, err
	}

	target, err := s.repo.GetMember(ctx, teamID, memberID)
	if err != nil {
		return nil, ErrMemberNotFound
	}

	if (role == domain.TeamOwner || target.Role == domain.TeamOwner) && caller.Role != domain.TeamOwner {
		return nil, ErrForbidden
	}
	if target.Role == domain.TeamOwner && role != domain.TeamOwner {
		owners, err := s.repo.CountOwners(ctx, teamID)
		if err != nil {
			return nil, err
		}
		if owners <= 1 {
			return nil, ErrLastOwner
		}
	}

	if err := s.repo.UpdateMemberRole(ctx, teamID, memberID, role); err != nil {
		return nil, err
	}
	return s.repo.GetMember(ctx, teamID, memberID)
}

// RemoveMember removes a member from the team. Owners and team admins may
// remove others; any member may remove themselves (leave). The last owner
// cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, callerID, teamID, memberID uuid.UUID) error {
	caller, err := s.repo.GetMember(ctx, teamID, callerID)
	if err != nil {
		return ErrNotFound
	}
	if callerID != memberID && caller.Role != domain.TeamOwner && caller.Role != domain.TeamAdmin {
		return ErrForbidden
	}

	target, err := s.repo.GetMember(ctx, teamID, memberID)
	if err != nil {
		return ErrMemberNotFound
	}
	if target.Role == domain.TeamOwner {
		owners, err := s.repo.CountOwners(ctx, teamID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}

	return s.repo.RemoveMember(ctx, teamID, memberID)
}

// InviteInput holds the fields for creating an invitation.
type InviteInput struct {
	Email string          `json:"email"`
	Role  domain.TeamRole `json:"role"`
}

// Invite creates a pending invitation with a fresh single-use token.
// Owners and team admins only; inviting to the owner role requires owner.
func (s *Service) Invite(ctx context.Context, callerID, teamID uuid.UUID, input InviteInput) (*domain.Invitation, error) {
	caller, err := s.requireRole(ctx, teamID, callerID, domain.TeamOwner, domain.TeamAdmin)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !domain.ValidateEmail(email) {
		return nil, fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	role := input.Role
	if role == "" {
		role = domain.TeamMemberRole
	}
	if !domain.ValidTeamRole(role) {
		return nil, ErrInvalidRole
	}
	if role == domain.TeamOwner && caller.Role != domain.TeamOwner {
		return nil, ErrForbidden
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	inv := &domain.Invitation{
		ID:        uuid.New(),
		TeamID:    teamID,
		Email:     email,
		Role:      role,
		Token:     token,
		Status:    domain.InvitePending,
		InvitedBy: callerID,
		ExpiresAt: s.now().Add(s.inviteExpiry),
	}
	if err := s.repo.CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}

	log.Printf("[team.Service] invitation %s created for %s (team %s)",
		inv.ID, logger.RedactEmail(email), teamID)
	return inv, nil
}

// ListInvitations returns the team's invitations, expiring stale pending
// rows on read. Owners and team admins only.
func (s *Service) ListInvitations(ctx context.Context, callerID, teamID uuid.UUID) ([]domain.Invitation, error) {
	if _, err := s.requireRole(ctx, teamID, callerID, domain.TeamOwner, domain.TeamAdmin); err != nil {
		return nil, err
	}
	invs, err := s.repo.ListInvitations(ctx, teamID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range invs {
		if invs[i].Status == domain.InvitePending && now.After(invs[i].ExpiresAt) {
			invs[i].Status = domain.InviteExpired
			if err := s.repo.UpdateInvitationStatus(ctx, invs[i].ID, domain.InviteExpired); err != nil {
				log.Printf("[team.Service] expire invitation %s: %v", invs[i].ID, err)
			}
		}
	}
	return invs, nil
}

// RevokeInvitation cancels a pending invitation. Owners and team admins only.
func (s *Service) RevokeInvitation(ctx context.Context, callerID, teamID, invID uuid.UUID) error {
	if _, err := s.requireRole(ctx, teamID, callerID, domain.TeamOwner, domain.TeamAdmin); err != nil {
		return err
	}
	inv, err := s.repo.GetInvitation(ctx, teamID, invID)
	if err != nil {
		return ErrInviteNotFound
	}
	if inv.Status != domain.InvitePending {
		return ErrInviteNotUsable
	}
	return s.repo.UpdateInvitationStatus(ctx, invID, domain.InviteRevoked)
}

// Accept redeems an invitation token for the calling user. The token must
// be pending, unexpired, and issued to the caller's email address.
func (s *Service) Accept(ctx context.Context, user *domain.User, token string) (*domain.TeamMember, error) {
	inv, err := s.repo.GetInvitationByToken(ctx, token)
	if err != nil {
		return nil, ErrInviteNotFound
	}
	if !inv.Usable(s.now()) {
		if inv.Status == domain.InvitePending {
			// Expired but not yet swept; persist the terminal state.
			if err := s.repo.UpdateInvitationStatus(ctx, inv.ID, domain.InviteExpired); err != nil {
				log.Printf("[team.Service] expire invitation %s: %v", inv.ID, err)
			}
		}
		return nil, ErrInviteNotUsable
	}
	if !strings.EqualFold(inv.Email, user.Email) {
		return nil, ErrInviteEmailMatch
	}

	m := &domain.TeamMember{
		TeamID:   inv.TeamID,
		UserID:   user.ID,
		Role:     inv.Role,
		JoinedAt: s.now(),
	}
	if err := s.repo.AddMember(ctx, m); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateInvitationStatus(ctx, inv.ID, domain.InviteAccepted); err != nil {
		return nil, fmt.Errorf("mark invitation accepted: %w", err)
	}

	log.Printf("[team.Service] user %s joined team %s as %s", user.ID, inv.TeamID, inv.Role)
	return s.repo.GetMember(ctx, inv.TeamID, user.ID)
}

// generateToken creates a 64-hex-char single-use invitation token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
