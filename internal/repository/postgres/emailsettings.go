package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/service/emailsettings"
)

// EmailSettingsRepo implements emailsettings.Repository against PostgreSQL.
type EmailSettingsRepo struct{ db *sql.DB }

// NewEmailSettingsRepo creates a Postgres-backed email settings repository.
func NewEmailSettingsRepo(db *sql.DB) *EmailSettingsRepo { return &EmailSettingsRepo{db: db} }

func (r *EmailSettingsRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.EmailSettings, error) {
	s := &domain.EmailSettings{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, smtp_host, smtp_port, smtp_username, smtp_password_enc,
		       smtp_use_tls, COALESCE(imap_host,''), COALESCE(imap_port,0),
		       COALESCE(imap_username,''), imap_password_enc,
		       verified, last_verified_at, created_at, updated_at
		FROM email_settings
		WHERE user_id = $1
	`, userID).Scan(
		&s.ID, &s.UserID, &s.SMTPHost, &s.SMTPPort, &s.SMTPUsername, &s.SMTPPasswordEnc,
		&s.SMTPUseTLS, &s.IMAPHost, &s.IMAPPort,
		&s.IMAPUsername, &s.IMAPPasswordEnc,
		&s.Verified, &s.LastVerifiedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, emailsettings.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get email settings: %w", err)
	}
	return s, nil
}

func (r *EmailSettingsRepo) Create(ctx context.Context, s *domain.EmailSettings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_settings
			(id, user_id, smtp_host, smtp_port, smtp_username, smtp_password_enc,
			 smtp_use_tls, imap_host, imap_port, imap_username, imap_password_enc,
			 verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, false, NOW(), NOW())
	`, s.ID, s.UserID, s.SMTPHost, s.SMTPPort, s.SMTPUsername, s.SMTPPasswordEnc,
		s.SMTPUseTLS, s.IMAPHost, s.IMAPPort, s.IMAPUsername, s.IMAPPasswordEnc)
	if isUniqueViolation(err) {
		return emailsettings.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create email settings: %w", err)
	}
	return nil
}

func (r *EmailSettingsRepo) Update(ctx context.Context, userID uuid.UUID, u emailsettings.UpdateFields) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.SMTPHost != nil {
		add("smtp_host", *u.SMTPHost)
	}
	if u.SMTPPort != nil {
		add("smtp_port", *u.SMTPPort)
	}
	if u.SMTPUsername != nil {
		add("smtp_username", *u.SMTPUsername)
	}
	if u.SMTPPasswordEnc != nil {
		add("smtp_password_enc", u.SMTPPasswordEnc)
	}
	if u.SMTPUseTLS != nil {
		add("smtp_use_tls", *u.SMTPUseTLS)
	}
	if u.IMAPHost != nil {
		add("imap_host", *u.IMAPHost)
	}
	if u.IMAPPort != nil {
		add("imap_port", *u.IMAPPort)
	}
	if u.IMAPUsername != nil {
		add("imap_username", *u.IMAPUsername)
	}
	if u.IMAPPasswordEnc != nil {
		add("imap_password_enc", u.IMAPPasswordEnc)
	}
	if u.Unverify {
		sets = append(sets, "verified = false")
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	q := fmt.Sprintf("UPDATE email_settings SET %s WHERE user_id = $%d", strings.Join(sets, ", "), idx)
	args = append(args, userID)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update email settings: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return emailsettings.ErrNotFound
	}
	return nil
}

func (r *EmailSettingsRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM email_settings WHERE user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("delete email settings: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return emailsettings.ErrNotFound
	}
	return nil
}

func (r *EmailSettingsRepo) MarkVerified(ctx context.Context, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE email_settings
		SET verified = true, last_verified_at = NOW(), updated_at = NOW()
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return emailsettings.ErrNotFound
	}
	return nil
}
