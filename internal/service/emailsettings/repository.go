package emailsettings

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
)

// Repository defines the data access contract for email settings.
// Implementations must be safe for concurrent use.
type Repository interface {
	// GetByUser returns the user's settings record.
	// Returns ErrNotFound if none exists.
	GetByUser(ctx context.Context, userID uuid.UUID) (*domain.EmailSettings, error)

	// Create inserts the user's settings. Returns ErrAlreadyExists when
	// the user already has a record (UNIQUE user_id).
	Create(ctx context.Context, s *domain.EmailSettings) error

	// Update modifies the user's settings. Only non-nil fields are applied.
	Update(ctx context.Context, userID uuid.UUID, u UpdateFields) error

	// Delete removes the user's settings.
	Delete(ctx context.Context, userID uuid.UUID) error

	// MarkVerified sets verified and stamps last_verified_at.
	MarkVerified(ctx context.Context, userID uuid.UUID) error
}

// UpdateFields holds the mutable fields for a settings update.
// Nil fields are not applied. Password fields carry sealed ciphertext.
type UpdateFields struct {
	SMTPHost        *string
	SMTPPort        *int
	SMTPUsername    *string
	SMTPPasswordEnc []byte
	SMTPUseTLS      *bool
	IMAPHost        *string
	IMAPPort        *int
	IMAPUsername    *string
	IMAPPasswordEnc []byte
	// Unverify forces verified back to false (set when connection
	// parameters change).
	Unverify bool
}
