package team

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
)

// Repository defines the data access contract for teams, memberships, and
// invitations. Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single team. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.Team, error)

	// ListForUser returns the teams the user belongs to, newest first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Team, error)

	// Create inserts a team and its owner membership in one transaction.
	Create(ctx context.Context, t *domain.Team, ownerID uuid.UUID) error

	// Update modifies team name/description. Nil fields are not applied.
	Update(ctx context.Context, id uuid.UUID, name, description *string) error

	// Delete removes a team, its memberships, and open invitations.
	Delete(ctx context.Context, id uuid.UUID) error

	// GetMember returns a membership row. Returns ErrMemberNotFound if the
	// user is not on the team.
	GetMember(ctx context.Context, teamID, userID uuid.UUID) (*domain.TeamMember, error)

	// ListMembers returns all memberships with user email/name joined in.
	ListMembers(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMember, error)

	// AddMember inserts a membership. Returns ErrAlreadyMember on conflict.
	AddMember(ctx context.Context, m *domain.TeamMember) error

	// UpdateMemberRole changes a member's role.
	UpdateMemberRole(ctx context.Context, teamID, userID uuid.UUID, role domain.TeamRole) error

	// RemoveMember deletes a membership.
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error

	// CountOwners returns the number of owner memberships on the team.
	CountOwners(ctx context.Context, teamID uuid.UUID) (int, error)

	// CreateInvitation inserts an invitation.
	CreateInvitation(ctx context.Context, inv *domain.Invitation) error

	// ListInvitations returns the team's invitations, newest first.
	ListInvitations(ctx context.Context, teamID uuid.UUID) ([]domain.Invitation, error)

	// GetInvitation returns an invitation by ID within a team.
	GetInvitation(ctx context.Context, teamID, invID uuid.UUID) (*domain.Invitation, error)

	// GetInvitationByToken returns an invitation by its token, any team.
	GetInvitationByToken(ctx context.Context, token string) (*domain.Invitation, error)

	// UpdateInvitationStatus transitions an invitation's status.
	UpdateInvitationStatus(ctx context.Context, invID uuid.UUID, status domain.InvitationStatus) error
}
