package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/service/account"
)

// AccountRepo implements account.Repository against PostgreSQL.
type AccountRepo struct{ db *sql.DB }

// NewAccountRepo creates a Postgres-backed email account repository.
func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

const accountColumns = `id, user_id, address, COALESCE(display_name,''),
	COALESCE(reply_to,''), COALESCE(signature,''), daily_limit, sent_today,
	is_default, status, verified_at, created_at, updated_at`

func scanAccount(row interface{ Scan(...interface{}) error }) (*domain.EmailAccount, error) {
	a := &domain.EmailAccount{}
	err := row.Scan(
		&a.ID, &a.UserID, &a.Address, &a.DisplayName,
		&a.ReplyTo, &a.Signature, &a.DailyLimit, &a.SentToday,
		&a.IsDefault, &a.Status, &a.VerifiedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AccountRepo) Get(ctx context.Context, userID, id uuid.UUID) (*domain.EmailAccount, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM email_accounts
		WHERE id = $1 AND user_id = $2
	`, id, userID))
	if err == sql.ErrNoRows {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *AccountRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.EmailAccount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM email_accounts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.EmailAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *AccountRepo) Create(ctx context.Context, a *domain.EmailAccount) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_accounts
			(id, user_id, address, display_name, reply_to, signature,
			 daily_limit, is_default, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`, a.ID, a.UserID, a.Address, a.DisplayName, a.ReplyTo, a.Signature,
		a.DailyLimit, a.IsDefault, a.Status)
	if isUniqueViolation(err) {
		return account.ErrDuplicateAddress
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepo) Update(ctx context.Context, userID, id uuid.UUID, u account.UpdateFields) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.DisplayName != nil {
		add("display_name", *u.DisplayName)
	}
	if u.ReplyTo != nil {
		add("reply_to", *u.ReplyTo)
	}
	if u.Signature != nil {
		add("signature", *u.Signature)
	}
	if u.DailyLimit != nil {
		add("daily_limit", *u.DailyLimit)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	q := fmt.Sprintf("UPDATE email_accounts SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(sets, ", "), idx, idx+1)
	args = append(args, id, userID)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (r *AccountRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM email_accounts WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return account.ErrNotFound
	}
	return nil
}

// SetDefault flips the default flag to the given account and clears it on
// the user's other accounts in one transaction.
func (r *AccountRepo) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE email_accounts SET is_default = false, updated_at = NOW()
		WHERE user_id = $1 AND is_default = true
	`, userID); err != nil {
		return fmt.Errorf("clear default: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE email_accounts SET is_default = true, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("set default: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return account.ErrNotFound
	}
	return tx.Commit()
}

func (r *AccountRepo) MarkVerified(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE email_accounts
		SET status = 'active', verified_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return account.ErrNotFound
	}
	return nil
}
