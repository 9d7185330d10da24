package prospect

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
)

// Repository defines the data access contract for prospect lists and
// contacts. Implementations must be safe for concurrent use.
type Repository interface {
	// GetList returns a single list. Returns ErrListNotFound if missing.
	GetList(ctx context.Context, id uuid.UUID) (*domain.ProspectList, error)

	// ListLists returns all prospect lists, newest first, with contact counts.
	ListLists(ctx context.Context) ([]domain.ProspectList, error)

	// CreateList inserts a new list.
	CreateList(ctx context.Context, l *domain.ProspectList) error

	// UpdateList modifies list metadata. Nil fields are not applied.
	UpdateList(ctx context.Context, id uuid.UUID, name, description, source *string) error

	// DeleteList removes a list and its contacts.
	DeleteList(ctx context.Context, id uuid.UUID) error

	// GetContact returns a contact within a list.
	GetContact(ctx context.Context, listID, contactID uuid.UUID) (*domain.ProspectContact, error)

	// ListContacts returns a page of the list's contacts plus the total count.
	ListContacts(ctx context.Context, listID uuid.UUID, limit, offset int) ([]domain.ProspectContact, int, error)

	// CreateContact inserts a contact. Returns ErrDuplicateContact when the
	// list already holds the email hash.
	CreateContact(ctx context.Context, c *domain.ProspectContact) error

	// DeleteContact removes a contact from a list.
	DeleteContact(ctx context.Context, listID, contactID uuid.UUID) error

	// ActiveContacts returns every contact in the list with active status.
	// Used by campaign launches; no pagination.
	ActiveContacts(ctx context.Context, listID uuid.UUID) ([]domain.ProspectContact, error)
}
