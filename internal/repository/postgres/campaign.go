package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/service/aicampaign"

	"github.com/google/uuid"
)

// CampaignRepo implements aicampaign.Repository against PostgreSQL.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

func (r *CampaignRepo) Get(ctx context.Context, id uuid.UUID) (*domain.AICampaign, error) {
	c := &domain.AICampaign{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, list_id, template_id, account_id, channel, status,
		       created_by, scheduled_at, started_at, completed_at,
		       created_at, updated_at
		FROM ai_campaigns
		WHERE id = $1
	`, id).Scan(
		&c.ID, &c.Name, &c.ListID, &c.TemplateID, &c.AccountID, &c.Channel, &c.Status,
		&c.CreatedBy, &c.ScheduledAt, &c.StartedAt, &c.CompletedAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, aicampaign.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

func (r *CampaignRepo) List(ctx context.Context, f aicampaign.ListFilter) ([]domain.AICampaign, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	countQ := `SELECT COUNT(*) FROM ai_campaigns`
	countArgs := []interface{}{}
	if f.Status != "" {
		countQ += ` WHERE status = $1`
		countArgs = append(countArgs, f.Status)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	q := `
		SELECT c.id, c.name, c.list_id, c.template_id, c.account_id, c.channel,
		       c.status, c.created_by, c.scheduled_at, c.started_at, c.completed_at,
		       c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM campaign_queue q WHERE q.campaign_id = c.id),
		       (SELECT COUNT(*) FROM campaign_queue q WHERE q.campaign_id = c.id AND q.status = 'sent'),
		       (SELECT COUNT(*) FROM campaign_queue q WHERE q.campaign_id = c.id AND q.status = 'failed')
		FROM ai_campaigns c`
	args := []interface{}{}
	idx := 1
	if f.Status != "" {
		q += fmt.Sprintf(" WHERE c.status = $%d", idx)
		args = append(args, f.Status)
		idx++
	}
	q += fmt.Sprintf(" ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []domain.AICampaign
	for rows.Next() {
		var c domain.AICampaign
		if err := rows.Scan(
			&c.ID, &c.Name, &c.ListID, &c.TemplateID, &c.AccountID, &c.Channel,
			&c.Status, &c.CreatedBy, &c.ScheduledAt, &c.StartedAt, &c.CompletedAt,
			&c.CreatedAt, &c.UpdatedAt,
			&c.TotalRecipients, &c.SentCount, &c.FailedCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *CampaignRepo) Create(ctx context.Context, c *domain.AICampaign) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ai_campaigns
			(id, name, list_id, template_id, account_id, channel, status,
			 created_by, scheduled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`, c.ID, c.Name, c.ListID, c.TemplateID, c.AccountID, c.Channel, c.Status,
		c.CreatedBy, c.ScheduledAt)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepo) Update(ctx context.Context, id uuid.UUID, u aicampaign.UpdateFields) error {
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
	if u.ListID != nil {
		add("list_id", *u.ListID)
	}
	if u.TemplateID != nil {
		add("template_id", *u.TemplateID)
	}
	if u.AccountID != nil {
		add("account_id", *u.AccountID)
	}
	if u.Channel != nil {
		add("channel", *u.Channel)
	}
	if u.ScheduledAt != nil {
		add("scheduled_at", *u.ScheduledAt)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	q := fmt.Sprintf("UPDATE ai_campaigns SET %s WHERE id = $%d", strings.Join(sets, ", "), idx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return aicampaign.ErrNotFound
	}
	return nil
}

// Delete removes the campaign; queue items go with it via ON DELETE CASCADE.
func (r *CampaignRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ai_campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return aicampaign.ErrNotFound
	}
	return nil
}

// UpdateStatus transitions a campaign, stamping started_at on running and
// completed_at on terminal states.
func (r *CampaignRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CampaignStatus) error {
	q := `UPDATE ai_campaigns SET status = $1, updated_at = NOW()`
	switch status {
	case domain.CampaignRunning:
		q += `, started_at = COALESCE(started_at, NOW())`
	case domain.CampaignCompleted, domain.CampaignCancelled, domain.CampaignFailed:
		q += `, completed_at = NOW()`
	}
	q += ` WHERE id = $2`

	res, err := r.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return fmt.Errorf("update campaign status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return aicampaign.ErrNotFound
	}
	return nil
}

// EnqueueItems bulk-inserts queue items inside one transaction so a launch
// enqueues all recipients or none.
func (r *CampaignRepo) EnqueueItems(ctx context.Context, items []domain.CampaignQueueItem) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO campaign_queue
			(id, campaign_id, contact_id, email, subject, html_content,
			 status, attempts, scheduled_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, NOW())
		ON CONFLICT (campaign_id, contact_id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("prepare enqueue: %w", err)
	}
	defer stmt.Close()

	for i := range items {
		it := &items[i]
		if _, err := stmt.ExecContext(ctx, it.ID, it.CampaignID, it.ContactID,
			it.Email, it.Subject, it.HTMLContent, it.Status, it.ScheduledAt); err != nil {
			return fmt.Errorf("enqueue item for %s: %w", it.ContactID, err)
		}
	}
	return tx.Commit()
}

func (r *CampaignRepo) Stats(ctx context.Context, id uuid.UUID) (*aicampaign.Stats, error) {
	st := &aicampaign.Stats{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status IN ('queued','sending')),
		       COUNT(*) FILTER (WHERE status = 'sent'),
		       COUNT(*) FILTER (WHERE status = 'failed')
		FROM campaign_queue
		WHERE campaign_id = $1
	`, id).Scan(&st.Total, &st.Queued, &st.Sent, &st.Failed)
	if err != nil {
		return nil, fmt.Errorf("campaign stats: %w", err)
	}
	return st, nil
}
