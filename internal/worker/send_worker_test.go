package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/config"
	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/mailer"
	"github.com/ignite/outreach-platform/internal/ses"
)

type fakePlatform struct {
	lastMsg *ses.Message
	result  *ses.SendResult
	err     error
}

func (f *fakePlatform) Send(_ context.Context, msg *ses.Message) (*ses.SendResult, error) {
	f.lastMsg = msg
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSMTP struct {
	lastMsg      *mailer.Message
	lastPassword string
	err          error
}

func (f *fakeSMTP) Send(_ context.Context, _ *domain.EmailSettings, password string, msg *mailer.Message) error {
	f.lastMsg = msg
	f.lastPassword = password
	return f.err
}

func (f *fakeSMTP) Verify(_ context.Context, _ *domain.EmailSettings, _ string) error {
	return nil
}

type fakeUnsealer struct {
	settings *domain.EmailSettings
	password string
	err      error
}

func (f *fakeUnsealer) Unseal(_ context.Context, _ uuid.UUID) (*domain.EmailSettings, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.settings, f.password, nil
}

func testItem(channel domain.CampaignChannel) *QueueItem {
	return &QueueItem{
		ID:          uuid.New(),
		CampaignID:  uuid.New(),
		ContactID:   uuid.New(),
		Email:       "ada@example.com",
		Subject:     "Hi Ada",
		HTMLContent: "<p>Hi Ada</p>",
		Channel:     channel,
		OwnerID:     uuid.New(),
		FromEmail:   "rep@example.com",
		FromName:    "Rep",
	}
}

func TestDeliverPlatformChannel(t *testing.T) {
	platform := &fakePlatform{result: &ses.SendResult{Success: true, MessageID: "msg-1"}}
	w := NewSendWorker(nil, config.WorkerConfig{}, platform, &fakeSMTP{}, &fakeUnsealer{})

	item := testItem(domain.ChannelPlatform)
	messageID, err := w.deliver(context.Background(), item)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if messageID != "msg-1" {
		t.Errorf("messageID = %q", messageID)
	}
	if platform.lastMsg == nil || platform.lastMsg.To != "ada@example.com" {
		t.Errorf("platform message = %+v", platform.lastMsg)
	}
	if platform.lastMsg.CampaignID != item.CampaignID.String() {
		t.Errorf("campaign tag = %q", platform.lastMsg.CampaignID)
	}
}

func TestDeliverOwnerSMTPChannel(t *testing.T) {
	smtp := &fakeSMTP{}
	unsealer := &fakeUnsealer{
		settings: &domain.EmailSettings{SMTPHost: "smtp.example.com", SMTPPort: 587},
		password: "hunter2",
	}
	w := NewSendWorker(nil, config.WorkerConfig{}, &fakePlatform{}, smtp, unsealer)

	_, err := w.deliver(context.Background(), testItem(domain.ChannelOwnerSMTP))
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if smtp.lastPassword != "hunter2" {
		t.Errorf("password = %q, want unsealed plaintext", smtp.lastPassword)
	}
	if smtp.lastMsg == nil || smtp.lastMsg.FromEmail != "rep@example.com" {
		t.Errorf("smtp message = %+v", smtp.lastMsg)
	}
}

func TestDeliverOwnerSMTPMissingSettings(t *testing.T) {
	unsealer := &fakeUnsealer{err: errors.New("email settings not found")}
	w := NewSendWorker(nil, config.WorkerConfig{}, &fakePlatform{}, &fakeSMTP{}, unsealer)

	_, err := w.deliver(context.Background(), testItem(domain.ChannelOwnerSMTP))
	if err == nil {
		t.Fatal("deliver succeeded without settings")
	}
}

func TestDeliverPlatformUnsuccessfulResult(t *testing.T) {
	platform := &fakePlatform{result: &ses.SendResult{Success: false, Error: errors.New("throttled")}}
	w := NewSendWorker(nil, config.WorkerConfig{}, platform, &fakeSMTP{}, &fakeUnsealer{})

	_, err := w.deliver(context.Background(), testItem(domain.ChannelPlatform))
	if err == nil || err.Error() != "throttled" {
		t.Fatalf("err = %v, want throttled", err)
	}
}

func TestMarkFailedRequeuesUntilMaxAttempts(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	w := NewSendWorker(db, config.WorkerConfig{MaxAttempts: 3}, &fakePlatform{}, &fakeSMTP{}, &fakeUnsealer{})
	item := testItem(domain.ChannelPlatform)
	sendErr := errors.New("connection refused")

	// First failure requeues with backoff.
	mock.ExpectExec(`UPDATE campaign_queue\s+SET status = 'queued'`).
		WithArgs(1, sendErr.Error(), 30, item.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := w.markFailed(context.Background(), item, sendErr); err != nil {
		t.Fatalf("markFailed: %v", err)
	}

	// Final failure parks the item.
	item.Attempts = 2
	mock.ExpectExec(`UPDATE campaign_queue\s+SET status = 'failed'`).
		WithArgs(3, sendErr.Error(), item.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := w.markFailed(context.Background(), item, sendErr); err != nil {
		t.Fatalf("markFailed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRetryBackoffGrows(t *testing.T) {
	if retryBackoff(1) != 30*time.Second {
		t.Errorf("backoff(1) = %s", retryBackoff(1))
	}
	if retryBackoff(2) != 60*time.Second {
		t.Errorf("backoff(2) = %s", retryBackoff(2))
	}
}
