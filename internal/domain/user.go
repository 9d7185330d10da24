package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// UserRole enumerates platform-level roles.
type UserRole string

const (
	RoleMember UserRole = "member"
	RoleAdmin  UserRole = "admin"
)

// User represents a platform user, provisioned on first OAuth login.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Picture   string    `json:"picture,omitempty" db:"picture"`
	Role      UserRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the user carries the platform admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail reports whether the address is a plausible email.
// The local part is capped at 64 octets per RFC 5321.
func ValidateEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	at := -1
	for i, c := range email {
		if c == '@' {
			if at >= 0 {
				return false
			}
			at = i
		}
	}
	if at <= 0 || at > 64 {
		return false
	}
	return emailPattern.MatchString(email)
}
