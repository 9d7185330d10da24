package account

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
)

// Repository defines the data access contract for email accounts.
// Implementations must be safe for concurrent use. All lookups are scoped
// by the owning user; a row belonging to someone else reads as ErrNotFound.
type Repository interface {
	// Get returns a single account. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.EmailAccount, error)

	// List returns the user's accounts ordered by created_at DESC.
	List(ctx context.Context, userID uuid.UUID) ([]domain.EmailAccount, error)

	// Create inserts a new account. Returns ErrDuplicateAddress when the
	// user already has an account with the same address.
	Create(ctx context.Context, a *domain.EmailAccount) error

	// Update modifies an account. Only non-nil fields are applied.
	Update(ctx context.Context, userID, id uuid.UUID, u UpdateFields) error

	// Delete removes an account.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// SetDefault marks the account as default and clears the flag on the
	// user's other accounts in the same transaction.
	SetDefault(ctx context.Context, userID, id uuid.UUID) error

	// MarkVerified sets status active and stamps verified_at.
	MarkVerified(ctx context.Context, userID, id uuid.UUID) error
}

// UpdateFields holds the mutable fields for an account update.
// Nil fields are not applied.
type UpdateFields struct {
	DisplayName *string
	ReplyTo     *string
	Signature   *string
	DailyLimit  *int
	Status      *domain.AccountStatus
}
