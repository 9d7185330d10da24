package aicampaign

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/pkg/distlock"
	"github.com/ignite/outreach-platform/internal/service/prospect"
	"github.com/ignite/outreach-platform/internal/service/template"
)

// ContactSource provides the active contacts of a prospect list.
// Implemented by the prospect service.
type ContactSource interface {
	ActiveContacts(ctx context.Context, listID uuid.UUID) ([]domain.ProspectContact, error)
	GetList(ctx context.Context, id uuid.UUID) (*domain.ProspectList, error)
}

// TemplateProvider compiles and renders templates for a campaign's owner.
// Implemented by the template service.
type TemplateProvider interface {
	Compile(ctx context.Context, userID, id uuid.UUID) (*domain.EmailTemplate, error)
	Render(ctx context.Context, userID, id uuid.UUID, contactCtx map[string]interface{}, mode template.RenderMode) (*template.Rendered, error)
}

// AccountSource loads sender accounts. Implemented by the account service.
type AccountSource interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.EmailAccount, error)
}

// LockFactory creates a distributed lock for the given key.
type LockFactory func(key string, ttl time.Duration) distlock.DistLock

// Service implements AI campaign business logic.
type Service struct {
	repo      Repository
	contacts  ContactSource
	templates TemplateProvider
	accounts  AccountSource
	newLock   LockFactory
}

// NewService creates an AI campaign service.
func NewService(repo Repository, contacts ContactSource, templates TemplateProvider, accounts AccountSource, newLock LockFactory) *Service {
	return &Service{
		repo:      repo,
		contacts:  contacts,
		templates: templates,
		accounts:  accounts,
		newLock:   newLock,
	}
}

// Get returns a single campaign with its queue stats folded in.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.AICampaign, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if stats, err := s.repo.Stats(ctx, id); err == nil {
		c.TotalRecipients = stats.Total
		c.SentCount = stats.Sent
		c.FailedCount = stats.Failed
	}
	return c, nil
}

// List returns campaigns matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.AICampaign, int, error) {
	return s.repo.List(ctx, f)
}

// CreateInput holds the fields for creating a campaign.
type CreateInput struct {
	Name        string     `json:"name"`
	ListID      uuid.UUID  `json:"list_id"`
	TemplateID  uuid.UUID  `json:"template_id"`
	AccountID   uuid.UUID  `json:"account_id"`
	Channel     string     `json:"channel"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// Create validates the binding and persists a draft campaign.
func (s *Service) Create(ctx context.Context, createdBy uuid.UUID, input CreateInput) (*domain.AICampaign, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	channel := domain.CampaignChannel(input.Channel)
	if channel == "" {
		channel = domain.ChannelPlatform
	}
	if channel != domain.ChannelPlatform && channel != domain.ChannelOwnerSMTP {
		return nil, fmt.Errorf("%w: unknown channel %q", ErrInvalidInput, input.Channel)
	}

	// The referenced list, template, and account must exist up front.
	if _, err := s.contacts.GetList(ctx, input.ListID); err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrInvalidInput, err)
	}
	if _, err := s.accounts.Get(ctx, createdBy, input.AccountID); err != nil {
		return nil, fmt.Errorf("%w: account: %v", ErrInvalidInput, err)
	}

	c := &domain.AICampaign{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		ListID:      input.ListID,
		TemplateID:  input.TemplateID,
		AccountID:   input.AccountID,
		Channel:     channel,
		Status:      domain.CampaignDraft,
		CreatedBy:   createdBy,
		ScheduledAt: input.ScheduledAt,
	}
	if input.ScheduledAt != nil {
		c.Status = domain.CampaignScheduled
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.Get(ctx, c.ID)
}

// Update modifies a draft or scheduled campaign.
func (s *Service) Update(ctx context.Context, id uuid.UUID, u UpdateFields) (*domain.AICampaign, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.CanLaunch() {
		return nil, fmt.Errorf("%w: campaign is %s", ErrInvalidTransition, c.Status)
	}
	if err := s.repo.Update(ctx, id, u); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a campaign. Running campaigns must be cancelled first.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.Status != domain.CampaignDraft && !c.IsTerminal() {
		return fmt.Errorf("%w: cancel the campaign before deleting", ErrInvalidTransition)
	}
	return s.repo.Delete(ctx, id)
}

// Launch validates the campaign binding, compiles the template if stale,
// renders every active contact, enqueues the sends, and moves the campaign
// to running. A distributed lock makes concurrent launches of the same
// campaign enqueue at most once.
func (s *Service) Launch(ctx context.Context, id uuid.UUID) (*domain.AICampaign, error) {
	lock := s.newLock("campaign:launch:"+id.String(), 5*time.Minute)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire launch lock: %w", err)
	}
	if !acquired {
		return nil, ErrLaunchInProgress
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			log.Printf("[aicampaign.Service] release launch lock %s: %v", id, err)
		}
	}()

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.CanLaunch() {
		return nil, fmt.Errorf("%w: campaign is %s", ErrInvalidTransition, c.Status)
	}

	if err := s.repo.UpdateStatus(ctx, id, domain.CampaignLaunching); err != nil {
		return nil, fmt.Errorf("transition to launching: %w", err)
	}

	if err := s.enqueue(ctx, c); err != nil {
		// Roll back to failed so the campaign is not stuck launching.
		if rbErr := s.repo.UpdateStatus(ctx, id, domain.CampaignFailed); rbErr != nil {
			log.Printf("[aicampaign.Service] rollback failed: %v", rbErr)
		}
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, domain.CampaignRunning); err != nil {
		return nil, fmt.Errorf("transition to running: %w", err)
	}
	return s.Get(ctx, id)
}

// enqueue validates the sender, freshens the template, and inserts one
// rendered queue item per active contact.
func (s *Service) enqueue(ctx context.Context, c *domain.AICampaign) error {
	acct, err := s.accounts.Get(ctx, c.CreatedBy, c.AccountID)
	if err != nil {
		return fmt.Errorf("sender account: %w", err)
	}
	if !acct.CanSend() {
		return fmt.Errorf("%w: sender account %s cannot send (status %s)", ErrInvalidInput, acct.Address, acct.Status)
	}

	if _, err := s.templates.Compile(ctx, c.CreatedBy, c.TemplateID); err != nil {
		return fmt.Errorf("template: %w", err)
	}

	contacts, err := s.contacts.ActiveContacts(ctx, c.ListID)
	if err != nil {
		return fmt.Errorf("list contacts: %w", err)
	}
	if len(contacts) == 0 {
		return ErrEmptyList
	}

	now := time.Now()
	items := make([]domain.CampaignQueueItem, 0, len(contacts))
	for i := range contacts {
		contact := &contacts[i]
		rendered, err := s.templates.Render(ctx, c.CreatedBy, c.TemplateID,
			prospect.RenderContext(contact), template.RenderModeLax)
		if err != nil {
			return fmt.Errorf("render contact %s: %w", contact.ID, err)
		}
		items = append(items, domain.CampaignQueueItem{
			ID:          uuid.New(),
			CampaignID:  c.ID,
			ContactID:   contact.ID,
			Email:       contact.Email,
			Subject:     rendered.Subject,
			HTMLContent: rendered.HTML,
			Status:      domain.QueueQueued,
			ScheduledAt: now,
		})
	}

	if err := s.repo.EnqueueItems(ctx, items); err != nil {
		return fmt.Errorf("enqueue items: %w", err)
	}
	log.Printf("[aicampaign.Service] campaign %s: enqueued %d recipients", c.ID, len(items))
	return nil
}

// Cancel stops a scheduled, launching, or running campaign. Queued items
// of cancelled campaigns are skipped by the send worker.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*domain.AICampaign, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.CanCancel() {
		return nil, fmt.Errorf("%w: campaign is %s", ErrInvalidTransition, c.Status)
	}
	if err := s.repo.UpdateStatus(ctx, id, domain.CampaignCancelled); err != nil {
		return nil, err
	}
	log.Printf("[aicampaign.Service] campaign %s cancelled", id)
	return s.Get(ctx, id)
}

// CampaignStats returns the queue counters for a campaign.
func (s *Service) CampaignStats(ctx context.Context, id uuid.UUID) (*Stats, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Stats(ctx, id)
}
