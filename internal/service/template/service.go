package template

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/mjml"
)

// TestSender delivers a one-off rendered template for the test-send
// operation. cmd/server wires this to the SES sender.
type TestSender interface {
	SendTest(ctx context.Context, userID uuid.UUID, to, subject, htmlBody string) error
}

// Service implements template business logic.
type Service struct {
	repo       Repository
	compiler   mjml.Compiler
	engine     *Engine
	testSender TestSender
}

// NewService creates a template service. testSender may be nil when the
// deployment has no platform sending channel.
func NewService(repo Repository, compiler mjml.Compiler, engine *Engine, testSender TestSender) *Service {
	return &Service{
		repo:       repo,
		compiler:   compiler,
		engine:     engine,
		testSender: testSender,
	}
}

// Get returns a single template.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*domain.EmailTemplate, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns the user's templates.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]domain.EmailTemplate, error) {
	return s.repo.List(ctx, userID)
}

// CreateInput holds the fields for creating a template.
type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Subject     string `json:"subject"`
	MJMLSource  string `json:"mjml_source"`
}

// Create validates Liquid syntax and persists a new template. MJML
// compilation is deferred to the explicit compile operation.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*domain.EmailTemplate, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.MJMLSource) == "" {
		return nil, fmt.Errorf("%w: mjml_source is required", ErrInvalidInput)
	}
	if err := s.engine.Parse(input.Subject); err != nil {
		return nil, fmt.Errorf("%w: subject: %v", ErrInvalidInput, err)
	}
	if err := s.engine.Parse(input.MJMLSource); err != nil {
		return nil, fmt.Errorf("%w: mjml_source: %v", ErrInvalidInput, err)
	}

	t := &domain.EmailTemplate{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Subject:     input.Subject,
		MJMLSource:  input.MJMLSource,
		Status:      domain.TemplateActive,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID, t.ID)
}

// Update modifies a template. Changing the MJML source invalidates the
// engine cache entry; the stored compiled HTML goes stale by checksum.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, u UpdateFields) (*domain.EmailTemplate, error) {
	if u.Subject != nil {
		if err := s.engine.Parse(*u.Subject); err != nil {
			return nil, fmt.Errorf("%w: subject: %v", ErrInvalidInput, err)
		}
	}
	if u.MJMLSource != nil {
		if err := s.engine.Parse(*u.MJMLSource); err != nil {
			return nil, fmt.Errorf("%w: mjml_source: %v", ErrInvalidInput, err)
		}
	}
	if err := s.repo.Update(ctx, userID, id, u); err != nil {
		return nil, err
	}
	if u.MJMLSource != nil {
		s.engine.ClearCacheKey(cacheKey(id))
	}
	return s.repo.Get(ctx, userID, id)
}

// Delete removes a template.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.engine.ClearCacheKey(cacheKey(id))
	return nil
}

// Compile runs the MJML compiler for the template's current source and
// caches the HTML on the row. A fresh cache short-circuits. Markup errors
// come back wrapped in ErrCompile with the compiler's messages.
func (s *Service) Compile(ctx context.Context, userID, id uuid.UUID) (*domain.EmailTemplate, error) {
	t, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if t.CompiledFresh() {
		return t, nil
	}

	html, compileErrs, err := s.compiler.Compile(ctx, t.MJMLSource)
	if err != nil {
		return nil, fmt.Errorf("compile template %s: %w", id, err)
	}
	if len(compileErrs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrCompile, strings.Join(compileErrs, "; "))
	}

	checksum := domain.ChecksumSource(t.MJMLSource)
	if err := s.repo.StoreCompiled(ctx, userID, id, html, checksum); err != nil {
		return nil, err
	}
	log.Printf("[template.Service] template %s compiled (%d bytes)", id, len(html))
	return s.repo.Get(ctx, userID, id)
}

// Variables returns the sorted unique Liquid variables referenced by the
// template's subject and body.
func (s *Service) Variables(ctx context.Context, userID, id uuid.UUID) ([]string, error) {
	t, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return ExtractVariables(t.Subject + "\n" + t.MJMLSource), nil
}

// Rendered is the output of a template render: substituted subject and
// HTML plus any strict-mode warnings.
type Rendered struct {
	Subject  string              `json:"subject"`
	HTML     string              `json:"html"`
	Warnings []ValidationWarning `json:"warnings,omitempty"`
}

// Render substitutes the contact context into the compiled template.
// The template is compiled first when its cache is stale.
func (s *Service) Render(ctx context.Context, userID, id uuid.UUID, contactCtx map[string]interface{}, mode RenderMode) (*Rendered, error) {
	t, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !t.CompiledFresh() {
		if t, err = s.Compile(ctx, userID, id); err != nil {
			return nil, err
		}
	}

	subject, err := s.engine.Render(cacheKey(id)+":subject", t.Subject, contactCtx)
	if err != nil {
		return nil, fmt.Errorf("render subject: %w", err)
	}
	body, err := s.engine.RenderWithMode(t.CompiledHTML, contactCtx, mode)
	if err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}

	// Strict mode also reports unresolved subject variables.
	var warnings []ValidationWarning
	if mode == RenderModeStrict {
		subjectResult, err := s.engine.RenderWithMode(t.Subject, contactCtx, RenderModeStrict)
		if err == nil {
			warnings = append(warnings, subjectResult.Warnings...)
		}
	}
	warnings = append(warnings, body.Warnings...)

	return &Rendered{Subject: subject, HTML: body.Output, Warnings: warnings}, nil
}

// Clone duplicates a template under a new name, with an empty compile cache.
func (s *Service) Clone(ctx context.Context, userID, id uuid.UUID, name string) (*domain.EmailTemplate, error) {
	src, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = src.Name + " (copy)"
	}

	clone := &domain.EmailTemplate{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: src.Description,
		Subject:     src.Subject,
		MJMLSource:  src.MJMLSource,
		Status:      domain.TemplateActive,
	}
	if err := s.repo.Create(ctx, clone); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID, clone.ID)
}

// TestSend renders the template with the given context in lax mode and
// delivers it to a single address through the platform channel.
func (s *Service) TestSend(ctx context.Context, userID, id uuid.UUID, to string, contactCtx map[string]interface{}) error {
	if s.testSender == nil {
		return ErrSendUnavailable
	}
	if !domain.ValidateEmail(to) {
		return fmt.Errorf("%w: invalid recipient address", ErrInvalidInput)
	}

	rendered, err := s.Render(ctx, userID, id, contactCtx, RenderModeLax)
	if err != nil {
		return err
	}
	return s.testSender.SendTest(ctx, userID, to, "[TEST] "+rendered.Subject, rendered.HTML)
}

func cacheKey(id uuid.UUID) string {
	return "template:" + id.String()
}
