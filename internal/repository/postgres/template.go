package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/service/template"
)

// TemplateRepo implements template.Repository against PostgreSQL.
type TemplateRepo struct{ db *sql.DB }

// NewTemplateRepo creates a Postgres-backed template repository.
func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{db: db} }

const templateColumns = `id, user_id, team_id, name, COALESCE(description,''),
	subject, mjml_source, COALESCE(compiled_html,''), COALESCE(plain_content,''),
	COALESCE(source_checksum,''), status, created_at, updated_at`

func scanTemplate(row interface{ Scan(...interface{}) error }) (*domain.EmailTemplate, error) {
	t := &domain.EmailTemplate{}
	err := row.Scan(
		&t.ID, &t.UserID, &t.TeamID, &t.Name, &t.Description,
		&t.Subject, &t.MJMLSource, &t.CompiledHTML, &t.PlainContent,
		&t.SourceChecksum, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TemplateRepo) Get(ctx context.Context, userID, id uuid.UUID) (*domain.EmailTemplate, error) {
	t, err := scanTemplate(r.db.QueryRowContext(ctx, `
		SELECT `+templateColumns+`
		FROM email_templates
		WHERE id = $1 AND user_id = $2
	`, id, userID))
	if err == sql.ErrNoRows {
		return nil, template.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (r *TemplateRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.EmailTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+templateColumns+`
		FROM email_templates
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []domain.EmailTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *TemplateRepo) Create(ctx context.Context, t *domain.EmailTemplate) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_templates
			(id, user_id, team_id, name, description, subject, mjml_source,
			 compiled_html, plain_content, source_checksum, status,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`, t.ID, t.UserID, t.TeamID, t.Name, t.Description, t.Subject, t.MJMLSource,
		t.CompiledHTML, t.PlainContent, t.SourceChecksum, t.Status)
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (r *TemplateRepo) Update(ctx context.Context, userID, id uuid.UUID, u template.UpdateFields) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Subject != nil {
		add("subject", *u.Subject)
	}
	if u.MJMLSource != nil {
		add("mjml_source", *u.MJMLSource)
	}
	if u.PlainContent != nil {
		add("plain_content", *u.PlainContent)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	q := fmt.Sprintf("UPDATE email_templates SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(sets, ", "), idx, idx+1)
	args = append(args, id, userID)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return template.ErrNotFound
	}
	return nil
}

func (r *TemplateRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM email_templates WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return template.ErrNotFound
	}
	return nil
}

func (r *TemplateRepo) StoreCompiled(ctx context.Context, userID, id uuid.UUID, html, checksum string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE email_templates
		SET compiled_html = $1, source_checksum = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
	`, html, checksum, id, userID)
	if err != nil {
		return fmt.Errorf("store compiled html: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return template.ErrNotFound
	}
	return nil
}
