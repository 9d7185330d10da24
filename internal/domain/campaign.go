package domain

import (
	"time"

	"github.com/google/uuid"
)

// CampaignStatus enumerates the lifecycle states of an AI campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignLaunching CampaignStatus = "launching"
	CampaignRunning   CampaignStatus = "running"
	CampaignCompleted CampaignStatus = "completed"
	CampaignCancelled CampaignStatus = "cancelled"
	CampaignFailed    CampaignStatus = "failed"
)

// CampaignChannel selects the delivery path for a campaign's sends.
type CampaignChannel string

const (
	// ChannelPlatform sends through the platform's SES identity.
	ChannelPlatform CampaignChannel = "platform"
	// ChannelOwnerSMTP sends through the owner's configured SMTP settings.
	ChannelOwnerSMTP CampaignChannel = "owner_smtp"
)

// AICampaign is an admin-managed automated outreach campaign binding a
// prospect list, a template, and a sender identity.
type AICampaign struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	ListID     uuid.UUID       `json:"list_id" db:"list_id"`
	TemplateID uuid.UUID       `json:"template_id" db:"template_id"`
	AccountID  uuid.UUID       `json:"account_id" db:"account_id"`
	Channel    CampaignChannel `json:"channel" db:"channel"`
	Status     CampaignStatus  `json:"status" db:"status"`
	CreatedBy  uuid.UUID       `json:"created_by" db:"created_by"`

	ScheduledAt *time.Time `json:"scheduled_at,omitempty" db:"scheduled_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	// Stats, populated by queries.
	TotalRecipients int `json:"total_recipients" db:"total_recipients"`
	SentCount       int `json:"sent_count" db:"sent_count"`
	FailedCount     int `json:"failed_count" db:"failed_count"`
}

// IsTerminal reports whether the campaign is in a final state.
func (c *AICampaign) IsTerminal() bool {
	return c.Status == CampaignCompleted || c.Status == CampaignCancelled || c.Status == CampaignFailed
}

// CanLaunch reports whether a launch is allowed from the current state.
func (c *AICampaign) CanLaunch() bool {
	return c.Status == CampaignDraft || c.Status == CampaignScheduled
}

// CanCancel reports whether a cancel is allowed from the current state.
func (c *AICampaign) CanCancel() bool {
	return c.Status == CampaignScheduled || c.Status == CampaignLaunching || c.Status == CampaignRunning
}

// QueueItemStatus enumerates the lifecycle of one queued send.
type QueueItemStatus string

const (
	QueueQueued  QueueItemStatus = "queued"
	QueueSending QueueItemStatus = "sending"
	QueueSent    QueueItemStatus = "sent"
	QueueFailed  QueueItemStatus = "failed"
)

// CampaignQueueItem is a single pending send for one contact. Subject and
// HTMLContent are rendered per contact at enqueue time.
type CampaignQueueItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CampaignID  uuid.UUID       `json:"campaign_id" db:"campaign_id"`
	ContactID   uuid.UUID       `json:"contact_id" db:"contact_id"`
	Email       string          `json:"email" db:"email"`
	Subject     string          `json:"subject" db:"subject"`
	HTMLContent string          `json:"html_content" db:"html_content"`
	Status      QueueItemStatus `json:"status" db:"status"`
	Attempts    int             `json:"attempts" db:"attempts"`
	LastError   string          `json:"last_error,omitempty" db:"last_error"`
	MessageID   string          `json:"message_id,omitempty" db:"message_id"`
	ScheduledAt time.Time       `json:"scheduled_at" db:"scheduled_at"`
	SentAt      *time.Time      `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
