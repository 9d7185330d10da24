package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProspectList is an admin-managed collection of sales lead contacts.
type ProspectList struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Source      string    `json:"source,omitempty" db:"source"`
	CreatedBy   uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Computed on list/get queries.
	ContactCount int `json:"contact_count,omitempty" db:"-"`
}

// ContactStatus enumerates prospect contact states.
type ContactStatus string

const (
	ContactActive       ContactStatus = "active"
	ContactUnsubscribed ContactStatus = "unsubscribed"
	ContactBounced      ContactStatus = "bounced"
)

// ProspectContact is one lead inside a prospect list. CustomFields is an
// opaque JSON object used for template personalization.
type ProspectContact struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	ListID       uuid.UUID     `json:"list_id" db:"list_id"`
	Email        string        `json:"email" db:"email"`
	EmailHash    string        `json:"-" db:"email_hash"`
	FirstName    string        `json:"first_name,omitempty" db:"first_name"`
	LastName     string        `json:"last_name,omitempty" db:"last_name"`
	Company      string        `json:"company,omitempty" db:"company"`
	Title        string        `json:"title,omitempty" db:"title"`
	CustomFields []byte        `json:"custom_fields,omitempty" db:"custom_fields"`
	Status       ContactStatus `json:"status" db:"status"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// HashEmail returns the canonical dedup key for an email address:
// SHA-256 of the lowercased, trimmed address.
func HashEmail(email string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(h[:])
}
