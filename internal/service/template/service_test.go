package template_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/service/template"
)

// memRepo is an in-memory template repository for unit testing.
type memRepo struct {
	mu        sync.Mutex
	templates map[uuid.UUID]*domain.EmailTemplate
}

func newMemRepo() *memRepo {
	return &memRepo{templates: make(map[uuid.UUID]*domain.EmailTemplate)}
}

func (m *memRepo) Get(_ context.Context, userID, id uuid.UUID) (*domain.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok || t.UserID != userID {
		return nil, template.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, userID uuid.UUID) ([]domain.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.EmailTemplate
	for _, t := range m.templates {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memRepo) Create(_ context.Context, t *domain.EmailTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.templates[t.ID] = &cp
	return nil
}

func (m *memRepo) Update(_ context.Context, userID, id uuid.UUID, u template.UpdateFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok || t.UserID != userID {
		return template.ErrNotFound
	}
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Subject != nil {
		t.Subject = *u.Subject
	}
	if u.MJMLSource != nil {
		t.MJMLSource = *u.MJMLSource
	}
	if u.PlainContent != nil {
		t.PlainContent = *u.PlainContent
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	t.UpdatedAt = time.Now()
	return nil
}

func (m *memRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok || t.UserID != userID {
		return template.ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

func (m *memRepo) StoreCompiled(_ context.Context, userID, id uuid.UUID, html, checksum string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok || t.UserID != userID {
		return template.ErrNotFound
	}
	t.CompiledHTML = html
	t.SourceChecksum = checksum
	return nil
}

// stubCompiler returns canned compile output and counts calls.
type stubCompiler struct {
	mu       sync.Mutex
	html     string
	errs     []string
	err      error
	compiles int
}

func (s *stubCompiler) Compile(_ context.Context, source string) (string, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compiles++
	if s.err != nil {
		return "", nil, s.err
	}
	if s.errs != nil {
		return "", s.errs, nil
	}
	if s.html != "" {
		return s.html, nil, nil
	}
	return "<html>" + source + "</html>", nil, nil
}

type recordingSender struct {
	to      string
	subject string
	html    string
}

func (r *recordingSender) SendTest(_ context.Context, _ uuid.UUID, to, subject, htmlBody string) error {
	r.to, r.subject, r.html = to, subject, htmlBody
	return nil
}

const sampleMJML = `<mjml><mj-body><mj-text>Hi {{ first_name | default: "there" }} at {{ company }}</mj-text></mj-body></mjml>`

func newService(compiler *stubCompiler, sender template.TestSender) (*template.Service, *memRepo) {
	repo := newMemRepo()
	return template.NewService(repo, compiler, template.NewEngine(), sender), repo
}

func createSample(t *testing.T, svc *template.Service, userID uuid.UUID) *domain.EmailTemplate {
	t.Helper()
	tpl, err := svc.Create(context.Background(), userID, template.CreateInput{
		Name:       "Intro",
		Subject:    "Quick question, {{ first_name }}",
		MJMLSource: sampleMJML,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return tpl
}

func TestCreateValidatesLiquid(t *testing.T) {
	svc, _ := newService(&stubCompiler{}, nil)

	_, err := svc.Create(context.Background(), uuid.New(), template.CreateInput{
		Name:       "Broken",
		Subject:    "ok",
		MJMLSource: "{% if x %}unclosed",
	})
	if !errors.Is(err, template.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCompileCachesByChecksum(t *testing.T) {
	compiler := &stubCompiler{}
	svc, _ := newService(compiler, nil)
	userID := uuid.New()
	ctx := context.Background()

	tpl := createSample(t, svc, userID)

	compiled, err := svc.Compile(ctx, userID, tpl.ID)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if compiled.CompiledHTML == "" || !compiled.CompiledFresh() {
		t.Fatal("compile did not cache HTML")
	}

	// Second compile must hit the checksum cache.
	if _, err := svc.Compile(ctx, userID, tpl.ID); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if compiler.compiles != 1 {
		t.Errorf("compiler called %d times, want 1", compiler.compiles)
	}

	// Source change goes stale and recompiles.
	newSrc := `<mjml><mj-body><mj-text>v2</mj-text></mj-body></mjml>`
	if _, err := svc.Update(ctx, userID, tpl.ID, template.UpdateFields{MJMLSource: &newSrc}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := svc.Compile(ctx, userID, tpl.ID); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if compiler.compiles != 2 {
		t.Errorf("compiler called %d times after source change, want 2", compiler.compiles)
	}
}

func TestCompileSurfacesMarkupErrors(t *testing.T) {
	compiler := &stubCompiler{errs: []string{"line 2: mj-bogus is not a known element"}}
	svc, _ := newService(compiler, nil)
	userID := uuid.New()

	tpl := createSample(t, svc, userID)
	_, err := svc.Compile(context.Background(), userID, tpl.ID)
	if !errors.Is(err, template.ErrCompile) {
		t.Fatalf("err = %v, want ErrCompile", err)
	}
}

func TestVariables(t *testing.T) {
	svc, _ := newService(&stubCompiler{}, nil)
	userID := uuid.New()

	tpl := createSample(t, svc, userID)
	vars, err := svc.Variables(context.Background(), userID, tpl.ID)
	if err != nil {
		t.Fatalf("Variables: %v", err)
	}
	want := map[string]bool{"first_name": true, "company": true}
	if len(vars) != len(want) {
		t.Fatalf("vars = %v", vars)
	}
	for _, v := range vars {
		if !want[v] {
			t.Errorf("unexpected variable %q", v)
		}
	}
}

func TestRenderSubstitutesContact(t *testing.T) {
	svc, _ := newService(&stubCompiler{}, nil)
	userID := uuid.New()
	ctx := context.Background()

	tpl := createSample(t, svc, userID)
	rendered, err := svc.Render(ctx, userID, tpl.ID, map[string]interface{}{
		"first_name": "Ada",
		"company":    "Acme",
	}, template.RenderModeLax)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if rendered.Subject != "Quick question, Ada" {
		t.Errorf("subject = %q", rendered.Subject)
	}
	if want := "Hi Ada at Acme"; !strings.Contains(rendered.HTML, want) {
		t.Errorf("html = %q, want substring %q", rendered.HTML, want)
	}
}

func TestRenderStrictReportsUnresolved(t *testing.T) {
	svc, _ := newService(&stubCompiler{}, nil)
	userID := uuid.New()

	tpl := createSample(t, svc, userID)
	rendered, err := svc.Render(context.Background(), userID, tpl.ID,
		map[string]interface{}{"first_name": "Ada"}, template.RenderModeStrict)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	found := false
	for _, w := range rendered.Warnings {
		if w.Variable == "company" {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %+v, want one for company", rendered.Warnings)
	}
}

func TestClone(t *testing.T) {
	svc, _ := newService(&stubCompiler{}, nil)
	userID := uuid.New()
	ctx := context.Background()

	tpl := createSample(t, svc, userID)
	if _, err := svc.Compile(ctx, userID, tpl.ID); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	clone, err := svc.Clone(ctx, userID, tpl.ID, "")
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if clone.ID == tpl.ID {
		t.Error("clone shares id with original")
	}
	if clone.Name != "Intro (copy)" {
		t.Errorf("clone name = %q", clone.Name)
	}
	if clone.MJMLSource != tpl.MJMLSource {
		t.Error("clone source differs")
	}
	if clone.CompiledHTML != "" {
		t.Error("clone inherited compile cache")
	}
}

func TestTestSend(t *testing.T) {
	sender := &recordingSender{}
	svc, _ := newService(&stubCompiler{}, sender)
	userID := uuid.New()

	tpl := createSample(t, svc, userID)
	err := svc.TestSend(context.Background(), userID, tpl.ID, "me@example.com", map[string]interface{}{
		"first_name": "Ada",
		"company":    "Acme",
	})
	if err != nil {
		t.Fatalf("TestSend: %v", err)
	}
	if sender.to != "me@example.com" {
		t.Errorf("to = %q", sender.to)
	}
	if sender.subject != "[TEST] Quick question, Ada" {
		t.Errorf("subject = %q", sender.subject)
	}
}

func TestTestSendWithoutSender(t *testing.T) {
	svc, _ := newService(&stubCompiler{}, nil)
	userID := uuid.New()

	tpl := createSample(t, svc, userID)
	err := svc.TestSend(context.Background(), userID, tpl.ID, "me@example.com", nil)
	if !errors.Is(err, template.ErrSendUnavailable) {
		t.Fatalf("err = %v, want ErrSendUnavailable", err)
	}
}
