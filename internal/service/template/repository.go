package template

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
)

// Repository defines the data access contract for email templates.
// Implementations must be safe for concurrent use. Lookups are scoped by
// the owning user.
type Repository interface {
	// Get returns a single template. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.EmailTemplate, error)

	// List returns the user's templates ordered by updated_at DESC.
	List(ctx context.Context, userID uuid.UUID) ([]domain.EmailTemplate, error)

	// Create inserts a new template.
	Create(ctx context.Context, t *domain.EmailTemplate) error

	// Update modifies a template. Nil fields are not applied.
	Update(ctx context.Context, userID, id uuid.UUID, u UpdateFields) error

	// Delete removes a template.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// StoreCompiled saves compiled HTML and its source checksum.
	StoreCompiled(ctx context.Context, userID, id uuid.UUID, html, checksum string) error
}

// UpdateFields holds the mutable fields for a template update.
// Nil fields are not applied.
type UpdateFields struct {
	Name         *string
	Description  *string
	Subject      *string
	MJMLSource   *string
	PlainContent *string
	Status       *domain.TemplateStatus
}
