package team

import "errors"

// Sentinel errors for the team service layer.
var (
	ErrNotFound         = errors.New("team not found")
	ErrMemberNotFound   = errors.New("team member not found")
	ErrInviteNotFound   = errors.New("invitation not found")
	ErrInviteNotUsable  = errors.New("invitation expired or already used")
	ErrInviteEmailMatch = errors.New("invitation was issued to a different email")
	ErrAlreadyMember    = errors.New("user is already a team member")
	ErrLastOwner        = errors.New("team must keep at least one owner")
	ErrForbidden        = errors.New("insufficient team role")
	ErrInvalidRole      = errors.New("invalid team role")
	ErrInvalidInput     = errors.New("invalid team input")
)
