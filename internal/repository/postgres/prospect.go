package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/service/prospect"
)

// ProspectRepo implements prospect.Repository against PostgreSQL.
type ProspectRepo struct{ db *sql.DB }

// NewProspectRepo creates a Postgres-backed prospect repository.
func NewProspectRepo(db *sql.DB) *ProspectRepo { return &ProspectRepo{db: db} }

func (r *ProspectRepo) GetList(ctx context.Context, id uuid.UUID) (*domain.ProspectList, error) {
	l := &domain.ProspectList{}
	err := r.db.QueryRowContext(ctx, `
		SELECT l.id, l.name, COALESCE(l.description,''), COALESCE(l.source,''),
		       l.created_by, l.created_at, l.updated_at,
		       (SELECT COUNT(*) FROM prospect_contacts c WHERE c.list_id = l.id)
		FROM prospect_lists l
		WHERE l.id = $1
	`, id).Scan(&l.ID, &l.Name, &l.Description, &l.Source,
		&l.CreatedBy, &l.CreatedAt, &l.UpdatedAt, &l.ContactCount)
	if err == sql.ErrNoRows {
		return nil, prospect.ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get prospect list: %w", err)
	}
	return l, nil
}

func (r *ProspectRepo) ListLists(ctx context.Context) ([]domain.ProspectList, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.name, COALESCE(l.description,''), COALESCE(l.source,''),
		       l.created_by, l.created_at, l.updated_at,
		       (SELECT COUNT(*) FROM prospect_contacts c WHERE c.list_id = l.id)
		FROM prospect_lists l
		ORDER BY l.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list prospect lists: %w", err)
	}
	defer rows.Close()

	var out []domain.ProspectList
	for rows.Next() {
		var l domain.ProspectList
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.Source,
			&l.CreatedBy, &l.CreatedAt, &l.UpdatedAt, &l.ContactCount); err != nil {
			return nil, fmt.Errorf("scan prospect list: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *ProspectRepo) CreateList(ctx context.Context, l *domain.ProspectList) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prospect_lists (id, name, description, source, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`, l.ID, l.Name, l.Description, l.Source, l.CreatedBy)
	if err != nil {
		return fmt.Errorf("create prospect list: %w", err)
	}
	return nil
}

func (r *ProspectRepo) UpdateList(ctx context.Context, id uuid.UUID, name, description, source *string) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}
	if name != nil {
		add("name", *name)
	}
	if description != nil {
		add("description", *description)
	}
	if source != nil {
		add("source", *source)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	q := fmt.Sprintf("UPDATE prospect_lists SET %s WHERE id = $%d", strings.Join(sets, ", "), idx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update prospect list: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return prospect.ErrListNotFound
	}
	return nil
}

// DeleteList removes the list; contacts go with it via ON DELETE CASCADE.
func (r *ProspectRepo) DeleteList(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM prospect_lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete prospect list: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return prospect.ErrListNotFound
	}
	return nil
}

const contactColumns = `id, list_id, email, email_hash, COALESCE(first_name,''),
	COALESCE(last_name,''), COALESCE(company,''), COALESCE(title,''),
	custom_fields, status, created_at, updated_at`

func scanContact(row interface{ Scan(...interface{}) error }) (*domain.ProspectContact, error) {
	c := &domain.ProspectContact{}
	err := row.Scan(
		&c.ID, &c.ListID, &c.Email, &c.EmailHash, &c.FirstName,
		&c.LastName, &c.Company, &c.Title,
		&c.CustomFields, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ProspectRepo) GetContact(ctx context.Context, listID, contactID uuid.UUID) (*domain.ProspectContact, error) {
	c, err := scanContact(r.db.QueryRowContext(ctx, `
		SELECT `+contactColumns+`
		FROM prospect_contacts
		WHERE id = $1 AND list_id = $2
	`, contactID, listID))
	if err == sql.ErrNoRows {
		return nil, prospect.ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

func (r *ProspectRepo) ListContacts(ctx context.Context, listID uuid.UUID, limit, offset int) ([]domain.ProspectContact, int, error) {
	if limit <= 0 {
		limit = 50
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM prospect_contacts WHERE list_id = $1
	`, listID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+contactColumns+`
		FROM prospect_contacts
		WHERE list_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, listID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var out []domain.ProspectContact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *ProspectRepo) CreateContact(ctx context.Context, c *domain.ProspectContact) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prospect_contacts
			(id, list_id, email, email_hash, first_name, last_name, company,
			 title, custom_fields, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`, c.ID, c.ListID, c.Email, c.EmailHash, c.FirstName, c.LastName, c.Company,
		c.Title, nullableJSON(c.CustomFields), c.Status)
	if isUniqueViolation(err) {
		return prospect.ErrDuplicateContact
	}
	if err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

func (r *ProspectRepo) DeleteContact(ctx context.Context, listID, contactID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM prospect_contacts WHERE id = $1 AND list_id = $2
	`, contactID, listID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return prospect.ErrContactNotFound
	}
	return nil
}

func (r *ProspectRepo) ActiveContacts(ctx context.Context, listID uuid.UUID) ([]domain.ProspectContact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+contactColumns+`
		FROM prospect_contacts
		WHERE list_id = $1 AND status = 'active'
		ORDER BY created_at ASC
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("active contacts: %w", err)
	}
	defer rows.Close()

	var out []domain.ProspectContact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// nullableJSON maps an empty raw JSON payload to SQL NULL.
func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
