package aicampaign

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
)

// Repository defines the data access contract for AI campaigns and their
// send queue. Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single campaign. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.AICampaign, error)

	// List returns campaigns matching the filter plus the total count.
	List(ctx context.Context, filter ListFilter) ([]domain.AICampaign, int, error)

	// Create inserts a new campaign.
	Create(ctx context.Context, c *domain.AICampaign) error

	// Update modifies a campaign. Nil fields are not applied.
	Update(ctx context.Context, id uuid.UUID, u UpdateFields) error

	// Delete removes a campaign. Only draft or terminal campaigns.
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateStatus transitions a campaign's status, stamping started_at /
	// completed_at as appropriate.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CampaignStatus) error

	// EnqueueItems bulk-inserts queue items for a launch.
	EnqueueItems(ctx context.Context, items []domain.CampaignQueueItem) error

	// Stats returns queue counters for a campaign.
	Stats(ctx context.Context, id uuid.UUID) (*Stats, error)
}

// ListFilter controls pagination and filtering for campaign lists.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

// UpdateFields holds the mutable fields for a campaign update.
// Nil fields are not applied.
type UpdateFields struct {
	Name        *string
	ListID      *uuid.UUID
	TemplateID  *uuid.UUID
	AccountID   *uuid.UUID
	Channel     *domain.CampaignChannel
	ScheduledAt *time.Time
}

// Stats summarizes a campaign's queue progress.
type Stats struct {
	Total  int `json:"total"`
	Queued int `json:"queued"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
