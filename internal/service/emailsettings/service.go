package emailsettings

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/mailer"
	"github.com/ignite/outreach-platform/internal/pkg/secretbox"
)

// Service implements email settings business logic: sealing credentials,
// enforcing the one-record-per-user rule, and SMTP verification.
type Service struct {
	repo   Repository
	box    *secretbox.Box
	sender mailer.Sender
}

// NewService creates an email settings service. The sender may be nil in
// tests that never call Verify.
func NewService(repo Repository, box *secretbox.Box, sender mailer.Sender) *Service {
	return &Service{repo: repo, box: box, sender: sender}
}

// Get returns the user's settings with secrets redacted.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*domain.EmailSettings, error) {
	settings, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings.Redact()
	return settings, nil
}

// CreateInput holds the fields for creating email settings.
type CreateInput struct {
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"smtp_password"`
	SMTPUseTLS   bool   `json:"smtp_use_tls"`
	IMAPHost     string `json:"imap_host"`
	IMAPPort     int    `json:"imap_port"`
	IMAPUsername string `json:"imap_username"`
	IMAPPassword string `json:"imap_password"`
}

func (in CreateInput) validate() error {
	if in.SMTPHost == "" {
		return fmt.Errorf("%w: smtp_host is required", ErrInvalidInput)
	}
	if in.SMTPPort <= 0 || in.SMTPPort > 65535 {
		return fmt.Errorf("%w: smtp_port out of range", ErrInvalidInput)
	}
	if in.SMTPUsername == "" {
		return fmt.Errorf("%w: smtp_username is required", ErrInvalidInput)
	}
	if in.SMTPPassword == "" {
		return fmt.Errorf("%w: smtp_password is required", ErrInvalidInput)
	}
	if in.IMAPHost != "" && (in.IMAPPort <= 0 || in.IMAPPort > 65535) {
		return fmt.Errorf("%w: imap_port out of range", ErrInvalidInput)
	}
	return nil
}

// Create seals the credentials and persists the user's settings record.
// Returns ErrAlreadyExists when the user already has one.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*domain.EmailSettings, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	smtpEnc, err := s.box.Seal(input.SMTPPassword)
	if err != nil {
		return nil, fmt.Errorf("seal smtp password: %w", err)
	}

	settings := &domain.EmailSettings{
		ID:              uuid.New(),
		UserID:          userID,
		SMTPHost:        input.SMTPHost,
		SMTPPort:        input.SMTPPort,
		SMTPUsername:    input.SMTPUsername,
		SMTPPasswordEnc: smtpEnc,
		SMTPUseTLS:      input.SMTPUseTLS,
		IMAPHost:        input.IMAPHost,
		IMAPPort:        input.IMAPPort,
		IMAPUsername:    input.IMAPUsername,
	}
	if input.IMAPPassword != "" {
		imapEnc, err := s.box.Seal(input.IMAPPassword)
		if err != nil {
			return nil, fmt.Errorf("seal imap password: %w", err)
		}
		settings.IMAPPasswordEnc = imapEnc
	}

	if err := s.repo.Create(ctx, settings); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// UpdateInput holds the fields for updating email settings. Nil fields are
// left untouched; a non-nil password is re-sealed.
type UpdateInput struct {
	SMTPHost     *string `json:"smtp_host"`
	SMTPPort     *int    `json:"smtp_port"`
	SMTPUsername *string `json:"smtp_username"`
	SMTPPassword *string `json:"smtp_password"`
	SMTPUseTLS   *bool   `json:"smtp_use_tls"`
	IMAPHost     *string `json:"imap_host"`
	IMAPPort     *int    `json:"imap_port"`
	IMAPUsername *string `json:"imap_username"`
	IMAPPassword *string `json:"imap_password"`
}

// Update modifies the user's settings. Changing any SMTP connection
// parameter clears the verified flag until the next successful Verify.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*domain.EmailSettings, error) {
	if input.SMTPPort != nil && (*input.SMTPPort <= 0 || *input.SMTPPort > 65535) {
		return nil, fmt.Errorf("%w: smtp_port out of range", ErrInvalidInput)
	}
	if input.IMAPPort != nil && (*input.IMAPPort <= 0 || *input.IMAPPort > 65535) {
		return nil, fmt.Errorf("%w: imap_port out of range", ErrInvalidInput)
	}

	u := UpdateFields{
		SMTPHost:     input.SMTPHost,
		SMTPPort:     input.SMTPPort,
		SMTPUsername: input.SMTPUsername,
		SMTPUseTLS:   input.SMTPUseTLS,
		IMAPHost:     input.IMAPHost,
		IMAPPort:     input.IMAPPort,
		IMAPUsername: input.IMAPUsername,
	}
	if input.SMTPPassword != nil {
		if *input.SMTPPassword == "" {
			return nil, fmt.Errorf("%w: smtp_password cannot be empty", ErrInvalidInput)
		}
		enc, err := s.box.Seal(*input.SMTPPassword)
		if err != nil {
			return nil, fmt.Errorf("seal smtp password: %w", err)
		}
		u.SMTPPasswordEnc = enc
	}
	if input.IMAPPassword != nil && *input.IMAPPassword != "" {
		enc, err := s.box.Seal(*input.IMAPPassword)
		if err != nil {
			return nil, fmt.Errorf("seal imap password: %w", err)
		}
		u.IMAPPasswordEnc = enc
	}
	u.Unverify = input.SMTPHost != nil || input.SMTPPort != nil ||
		input.SMTPUsername != nil || input.SMTPPassword != nil || input.SMTPUseTLS != nil

	if err := s.repo.Update(ctx, userID, u); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Delete removes the user's settings.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.repo.Delete(ctx, userID)
}

// Verify unseals the stored SMTP password, performs a dial-and-auth probe
// against the configured server, and marks the record verified on success.
func (s *Service) Verify(ctx context.Context, userID uuid.UUID) (*domain.EmailSettings, error) {
	settings, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	password, err := s.box.Open(settings.SMTPPasswordEnc)
	if err != nil {
		return nil, fmt.Errorf("unseal smtp password: %w", err)
	}

	if err := s.sender.Verify(ctx, settings, password); err != nil {
		log.Printf("[emailsettings.Service] verify failed for user %s: %v", userID, err)
		return nil, fmt.Errorf("%w: %v", ErrVerifyFailed, err)
	}

	if err := s.repo.MarkVerified(ctx, userID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Unseal returns the settings with plaintext passwords for internal senders
// (owner_smtp campaign channel). Never expose the result over the API.
func (s *Service) Unseal(ctx context.Context, userID uuid.UUID) (*domain.EmailSettings, string, error) {
	settings, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	password, err := s.box.Open(settings.SMTPPasswordEnc)
	if err != nil {
		return nil, "", fmt.Errorf("unseal smtp password: %w", err)
	}
	return settings, password, nil
}
