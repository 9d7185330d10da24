package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/service/account"
)

func TestAccountGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	userID, id := uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM email_accounts`).
		WithArgs(id, userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewAccountRepo(db).Get(context.Background(), userID, id)
	if !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestAccountGet(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	userID, id := uuid.New(), uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "address", "display_name", "reply_to", "signature",
		"daily_limit", "sent_today", "is_default", "status", "verified_at",
		"created_at", "updated_at",
	}).AddRow(id, userID, "rep@example.com", "Rep", "", "", 200, 10, true,
		"active", nil, now, now)

	mock.ExpectQuery(`SELECT .+ FROM email_accounts`).
		WithArgs(id, userID).
		WillReturnRows(rows)

	a, err := NewAccountRepo(db).Get(context.Background(), userID, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a.Address != "rep@example.com" || a.Status != domain.AccountActive || !a.IsDefault {
		t.Errorf("unexpected account: %+v", a)
	}
}

func TestAccountCreateDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO email_accounts`).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err = NewAccountRepo(db).Create(context.Background(), &domain.EmailAccount{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		Address: "rep@example.com",
		Status:  domain.AccountUnverified,
	})
	if !errors.Is(err, account.ErrDuplicateAddress) {
		t.Fatalf("err = %v, want ErrDuplicateAddress", err)
	}
}

func TestAccountUpdateBuildsPartialSet(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	userID, id := uuid.New(), uuid.New()
	name := "New Name"
	limit := 500

	mock.ExpectExec(`UPDATE email_accounts SET display_name = \$1, daily_limit = \$2, updated_at = NOW\(\)`).
		WithArgs(name, limit, id, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewAccountRepo(db).Update(context.Background(), userID, id, account.UpdateFields{
		DisplayName: &name,
		DailyLimit:  &limit,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestAccountSetDefaultTransaction(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	userID, id := uuid.New(), uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE email_accounts SET is_default = false`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE email_accounts SET is_default = true`).
		WithArgs(id, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := NewAccountRepo(db).SetDefault(context.Background(), userID, id); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestAccountSetDefaultMissingRolesBack(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	userID, id := uuid.New(), uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE email_accounts SET is_default = false`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE email_accounts SET is_default = true`).
		WithArgs(id, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = NewAccountRepo(db).SetDefault(context.Background(), userID, id)
	if !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
