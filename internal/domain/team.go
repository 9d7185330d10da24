package domain

import (
	"time"

	"github.com/google/uuid"
)

// TeamRole enumerates membership roles within a team.
type TeamRole string

const (
	TeamOwner      TeamRole = "owner"
	TeamAdmin      TeamRole = "admin"
	TeamMemberRole TeamRole = "member"
)

// ValidTeamRole reports whether the role is one of the known membership roles.
func ValidTeamRole(r TeamRole) bool {
	return r == TeamOwner || r == TeamAdmin || r == TeamMemberRole
}

// Team is a collaboration group. The creating user becomes its owner.
type Team struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedBy   uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Computed, populated on list/get queries.
	MemberCount int `json:"member_count,omitempty" db:"-"`
}

// TeamMember links a user to a team with a role.
type TeamMember struct {
	TeamID   uuid.UUID `json:"team_id" db:"team_id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	Role     TeamRole  `json:"role" db:"role"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`

	// Joined from users for display.
	Email string `json:"email,omitempty" db:"-"`
	Name  string `json:"name,omitempty" db:"-"`
}

// InvitationStatus enumerates the lifecycle of a team invitation.
type InvitationStatus string

const (
	InvitePending  InvitationStatus = "pending"
	InviteAccepted InvitationStatus = "accepted"
	InviteRevoked  InvitationStatus = "revoked"
	InviteExpired  InvitationStatus = "expired"
)

// Invitation is a pending offer to join a team, delivered by email and
// redeemed with a single-use token.
type Invitation struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	TeamID    uuid.UUID        `json:"team_id" db:"team_id"`
	Email     string           `json:"email" db:"email"`
	Role      TeamRole         `json:"role" db:"role"`
	Token     string           `json:"-" db:"token"`
	Status    InvitationStatus `json:"status" db:"status"`
	InvitedBy uuid.UUID        `json:"invited_by" db:"invited_by"`
	ExpiresAt time.Time        `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// Usable reports whether the invitation can still be accepted.
func (i *Invitation) Usable(now time.Time) bool {
	return i.Status == InvitePending && now.Before(i.ExpiresAt)
}
