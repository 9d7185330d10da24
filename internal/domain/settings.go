package domain

import (
	"time"

	"github.com/google/uuid"
)

// EmailSettings holds a user's SMTP/IMAP connection configuration.
// Exactly one record exists per user (enforced by a UNIQUE constraint).
// Passwords are sealed at rest; the plaintext never appears in API responses.
type EmailSettings struct {
	ID     uuid.UUID `json:"id" db:"id"`
	UserID uuid.UUID `json:"user_id" db:"user_id"`

	SMTPHost     string `json:"smtp_host" db:"smtp_host"`
	SMTPPort     int    `json:"smtp_port" db:"smtp_port"`
	SMTPUsername string `json:"smtp_username" db:"smtp_username"`
	// SMTPPassword carries the plaintext only on inbound create/update
	// requests. It is never populated when reading from the store.
	SMTPPassword   string `json:"smtp_password,omitempty" db:"-"`
	SMTPPasswordEnc []byte `json:"-" db:"smtp_password_enc"`
	SMTPUseTLS     bool   `json:"smtp_use_tls" db:"smtp_use_tls"`

	IMAPHost        string `json:"imap_host,omitempty" db:"imap_host"`
	IMAPPort        int    `json:"imap_port,omitempty" db:"imap_port"`
	IMAPUsername    string `json:"imap_username,omitempty" db:"imap_username"`
	IMAPPassword    string `json:"imap_password,omitempty" db:"-"`
	IMAPPasswordEnc []byte `json:"-" db:"imap_password_enc"`

	Verified       bool       `json:"verified" db:"verified"`
	LastVerifiedAt *time.Time `json:"last_verified_at,omitempty" db:"last_verified_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Redact clears all secret material before serialization to a client.
func (s *EmailSettings) Redact() {
	s.SMTPPassword = ""
	s.IMAPPassword = ""
	s.SMTPPasswordEnc = nil
	s.IMAPPasswordEnc = nil
}
