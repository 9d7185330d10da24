package account

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
)

// Prober checks that mail can actually be sent from an address. The
// verification flow uses it before flipping an account to active.
type Prober interface {
	Probe(ctx context.Context, userID uuid.UUID, address string) error
}

// Service implements email account business logic.
type Service struct {
	repo   Repository
	prober Prober
}

// NewService creates an account service. The prober may be nil, in which
// case Verify trusts the caller and activates without a send probe.
func NewService(repo Repository, prober Prober) *Service {
	return &Service{repo: repo, prober: prober}
}

// Get returns a single account.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*domain.EmailAccount, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns all of the user's accounts.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]domain.EmailAccount, error) {
	return s.repo.List(ctx, userID)
}

// CreateInput holds the fields for creating a new email account.
type CreateInput struct {
	Address     string `json:"address"`
	DisplayName string `json:"display_name"`
	ReplyTo     string `json:"reply_to"`
	Signature   string `json:"signature"`
	DailyLimit  int    `json:"daily_limit"`
	IsDefault   bool   `json:"is_default"`
}

// Create validates and persists a new account in unverified status.
// The user's first account becomes the default automatically.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*domain.EmailAccount, error) {
	addr := strings.ToLower(strings.TrimSpace(input.Address))
	if !domain.ValidateEmail(addr) {
		return nil, ErrInvalidAddress
	}
	if input.ReplyTo != "" && !domain.ValidateEmail(input.ReplyTo) {
		return nil, fmt.Errorf("%w: reply_to", ErrInvalidAddress)
	}
	if input.DailyLimit < 0 {
		return nil, fmt.Errorf("%w: daily_limit must be >= 0", ErrInvalidInput)
	}

	existing, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	a := &domain.EmailAccount{
		ID:          uuid.New(),
		UserID:      userID,
		Address:     addr,
		DisplayName: input.DisplayName,
		ReplyTo:     input.ReplyTo,
		Signature:   input.Signature,
		DailyLimit:  input.DailyLimit,
		IsDefault:   input.IsDefault || len(existing) == 0,
		Status:      domain.AccountUnverified,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	if a.IsDefault && len(existing) > 0 {
		if err := s.repo.SetDefault(ctx, userID, a.ID); err != nil {
			return nil, fmt.Errorf("set default: %w", err)
		}
	}
	return s.repo.Get(ctx, userID, a.ID)
}

// Update modifies mutable account fields.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, u UpdateFields) (*domain.EmailAccount, error) {
	if u.ReplyTo != nil && *u.ReplyTo != "" && !domain.ValidateEmail(*u.ReplyTo) {
		return nil, fmt.Errorf("%w: reply_to", ErrInvalidAddress)
	}
	if u.DailyLimit != nil && *u.DailyLimit < 0 {
		return nil, fmt.Errorf("%w: daily_limit must be >= 0", ErrInvalidInput)
	}
	if err := s.repo.Update(ctx, userID, id, u); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID, id)
}

// Delete removes an account. When the default account is deleted the oldest
// remaining account is promoted, so a user with accounts always has a default.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	a, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	if a.IsDefault {
		remaining, err := s.repo.List(ctx, userID)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			oldest := remaining[len(remaining)-1]
			if err := s.repo.SetDefault(ctx, userID, oldest.ID); err != nil {
				log.Printf("[account.Service] promote default after delete: %v", err)
			}
		}
	}
	return nil
}

// SetDefault marks the given account as the user's default sender.
func (s *Service) SetDefault(ctx context.Context, userID, id uuid.UUID) (*domain.EmailAccount, error) {
	if _, err := s.repo.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetDefault(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID, id)
}

// Verify runs a send probe for the account's address and activates it.
// Disabled accounts must be re-enabled first.
func (s *Service) Verify(ctx context.Context, userID, id uuid.UUID) (*domain.EmailAccount, error) {
	a, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if a.Status == domain.AccountDisabled {
		return nil, ErrNotVerifiable
	}

	if s.prober != nil {
		if err := s.prober.Probe(ctx, userID, a.Address); err != nil {
			log.Printf("[account.Service] verify %s: send check failed: %v", id, err)
			return nil, fmt.Errorf("%w: send check failed", ErrNotVerifiable)
		}
	}

	if err := s.repo.MarkVerified(ctx, userID, id); err != nil {
		return nil, err
	}
	log.Printf("[account.Service] account %s verified", id)
	return s.repo.Get(ctx, userID, id)
}
