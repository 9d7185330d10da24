// Package worker drains the campaign send queue in the background. Items
// are claimed with FOR UPDATE SKIP LOCKED so multiple instances can run
// against the same database.
package worker

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/config"
	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/mailer"
	"github.com/ignite/outreach-platform/internal/pkg/logger"
	"github.com/ignite/outreach-platform/internal/ses"
)

// QueueItem is one claimed send, joined with its campaign and sender
// account at claim time.
type QueueItem struct {
	ID          uuid.UUID
	CampaignID  uuid.UUID
	ContactID   uuid.UUID
	Email       string
	Subject     string
	HTMLContent string
	Attempts    int

	Channel   domain.CampaignChannel
	OwnerID   uuid.UUID
	FromEmail string
	FromName  string
	ReplyTo   string
}

// PlatformSender delivers mail through the platform's SES identity.
// Implemented by ses.Sender.
type PlatformSender interface {
	Send(ctx context.Context, msg *ses.Message) (*ses.SendResult, error)
}

// SettingsUnsealer loads a user's SMTP settings with the plaintext
// password. Implemented by the emailsettings service.
type SettingsUnsealer interface {
	Unseal(ctx context.Context, userID uuid.UUID) (*domain.EmailSettings, string, error)
}

// SendWorker polls the campaign queue and delivers claimed items over the
// campaign's channel.
type SendWorker struct {
	db       *sql.DB
	cfg      config.WorkerConfig
	platform PlatformSender
	smtp     mailer.Sender
	settings SettingsUnsealer
	workerID string

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	totalSent   int64
	totalFailed int64
}

// NewSendWorker creates a send worker. platform handles the platform
// channel; smtp plus settings handle owner_smtp.
func NewSendWorker(db *sql.DB, cfg config.WorkerConfig, platform PlatformSender, smtp mailer.Sender, settings SettingsUnsealer) *SendWorker {
	host, _ := os.Hostname()
	return &SendWorker{
		db:       db,
		cfg:      cfg,
		platform: platform,
		smtp:     smtp,
		settings: settings,
		workerID: fmt.Sprintf("%s-%d", host, os.Getpid()),
	}
}

// Start launches the worker goroutines. No-op when already running.
func (w *SendWorker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.ctx, w.cancel = context.WithCancel(ctx)

	concurrency := w.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	log.Printf("[worker.SendWorker] %s: starting %d workers (batch %d, poll %s)",
		w.workerID, concurrency, w.cfg.BatchSize, w.cfg.PollInterval())

	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go w.loop(i)
	}
}

// Stop waits for in-flight sends to finish.
func (w *SendWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.cancel()
	w.mu.Unlock()

	w.wg.Wait()
	log.Printf("[worker.SendWorker] %s: stopped (sent %d, failed %d)",
		w.workerID, atomic.LoadInt64(&w.totalSent), atomic.LoadInt64(&w.totalFailed))
}

// Stats returns delivery counters.
func (w *SendWorker) Stats() map[string]int64 {
	return map[string]int64{
		"total_sent":   atomic.LoadInt64(&w.totalSent),
		"total_failed": atomic.LoadInt64(&w.totalFailed),
	}
}

func (w *SendWorker) loop(n int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		items, err := w.claimBatch()
		if err != nil {
			log.Printf("[worker.SendWorker] worker %d: claim failed: %v", n, err)
			w.sleep(time.Second)
			continue
		}
		if len(items) == 0 {
			if err := w.completeDrained(); err != nil {
				log.Printf("[worker.SendWorker] worker %d: completion sweep failed: %v", n, err)
			}
			w.sleep(w.cfg.PollInterval())
			continue
		}

		for i := range items {
			w.processItem(&items[i])
		}
	}
}

func (w *SendWorker) sleep(d time.Duration) {
	select {
	case <-w.ctx.Done():
	case <-time.After(d):
	}
}

// claimBatch flips a batch of due items to sending and returns them joined
// with campaign and account columns. Only running campaigns are claimed, so
// cancelled campaigns leave their queue untouched. Items stuck in sending
// for over five minutes are reclaimed.
func (w *SendWorker) claimBatch() ([]QueueItem, error) {
	ctx, cancel := context.WithTimeout(w.ctx, 5*time.Second)
	defer cancel()

	batch := w.cfg.BatchSize
	if batch <= 0 {
		batch = 50
	}

	rows, err := w.db.QueryContext(ctx, `
		WITH claimed AS (
			UPDATE campaign_queue
			SET status = 'sending', worker_id = $1, locked_at = NOW()
			WHERE id IN (
				SELECT q.id FROM campaign_queue q
				JOIN ai_campaigns c ON c.id = q.campaign_id
				WHERE c.status = 'running'
				  AND q.scheduled_at <= NOW()
				  AND (q.status = 'queued'
				       OR (q.status = 'sending' AND q.locked_at < NOW() - INTERVAL '5 minutes'))
				ORDER BY q.scheduled_at ASC
				LIMIT $2
				FOR UPDATE OF q SKIP LOCKED
			)
			RETURNING id, campaign_id, contact_id, email, subject, html_content, attempts
		)
		SELECT cl.id, cl.campaign_id, cl.contact_id, cl.email,
		       COALESCE(cl.subject,''), COALESCE(cl.html_content,''), cl.attempts,
		       c.channel, c.created_by,
		       a.address, COALESCE(a.display_name,''), COALESCE(a.reply_to,'')
		FROM claimed cl
		JOIN ai_campaigns c ON c.id = cl.campaign_id
		JOIN email_accounts a ON a.id = c.account_id
	`, w.workerID, batch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []QueueItem
	for rows.Next() {
		var it QueueItem
		if err := rows.Scan(
			&it.ID, &it.CampaignID, &it.ContactID, &it.Email,
			&it.Subject, &it.HTMLContent, &it.Attempts,
			&it.Channel, &it.OwnerID,
			&it.FromEmail, &it.FromName, &it.ReplyTo,
		); err != nil {
			return nil, fmt.Errorf("scan queue item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (w *SendWorker) processItem(item *QueueItem) {
	ctx, cancel := context.WithTimeout(w.ctx, 30*time.Second)
	defer cancel()

	messageID, err := w.deliver(ctx, item)
	if err != nil {
		atomic.AddInt64(&w.totalFailed, 1)
		log.Printf("[worker.SendWorker] send to %s failed (attempt %d): %v",
			logger.RedactEmail(item.Email), item.Attempts+1, err)
		if mErr := w.markFailed(ctx, item, err); mErr != nil {
			log.Printf("[worker.SendWorker] mark failed %s: %v", item.ID, mErr)
		}
		return
	}

	atomic.AddInt64(&w.totalSent, 1)
	if mErr := w.markSent(ctx, item.ID, messageID); mErr != nil {
		log.Printf("[worker.SendWorker] mark sent %s: %v", item.ID, mErr)
	}
}

// deliver routes the item over the campaign's channel and returns the
// provider message ID when there is one.
func (w *SendWorker) deliver(ctx context.Context, item *QueueItem) (string, error) {
	switch item.Channel {
	case domain.ChannelOwnerSMTP:
		settings, password, err := w.settings.Unseal(ctx, item.OwnerID)
		if err != nil {
			return "", fmt.Errorf("load smtp settings: %w", err)
		}
		err = w.smtp.Send(ctx, settings, password, &mailer.Message{
			To:          item.Email,
			FromEmail:   item.FromEmail,
			FromName:    item.FromName,
			ReplyTo:     item.ReplyTo,
			Subject:     item.Subject,
			HTMLContent: item.HTMLContent,
		})
		if err != nil {
			return "", err
		}
		return "", nil

	default:
		result, err := w.platform.Send(ctx, &ses.Message{
			To:          item.Email,
			FromEmail:   item.FromEmail,
			FromName:    item.FromName,
			ReplyTo:     item.ReplyTo,
			Subject:     item.Subject,
			HTMLContent: item.HTMLContent,
			CampaignID:  item.CampaignID.String(),
			ContactID:   item.ContactID.String(),
		})
		if err != nil {
			return "", err
		}
		if !result.Success {
			return "", result.Error
		}
		return result.MessageID, nil
	}
}

func (w *SendWorker) markSent(ctx context.Context, id uuid.UUID, messageID string) error {
	_, err := w.db.ExecContext(ctx, `
		UPDATE campaign_queue
		SET status = 'sent', message_id = $1, sent_at = NOW(),
		    attempts = attempts + 1, last_error = NULL
		WHERE id = $2
	`, messageID, id)
	return err
}

// markFailed requeues the item with a linear backoff until max attempts is
// reached, then parks it as failed. A single failed send never fails the
// campaign.
func (w *SendWorker) markFailed(ctx context.Context, item *QueueItem, sendErr error) error {
	attempts := item.Attempts + 1
	maxAttempts := w.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	if attempts >= maxAttempts {
		_, err := w.db.ExecContext(ctx, `
			UPDATE campaign_queue
			SET status = 'failed', attempts = $1, last_error = $2
			WHERE id = $3
		`, attempts, sendErr.Error(), item.ID)
		return err
	}

	_, err := w.db.ExecContext(ctx, `
		UPDATE campaign_queue
		SET status = 'queued', attempts = $1, last_error = $2,
		    scheduled_at = NOW() + $3 * INTERVAL '1 second'
		WHERE id = $4
	`, attempts, sendErr.Error(), int(retryBackoff(attempts).Seconds()), item.ID)
	return err
}

// retryBackoff returns the delay before the next attempt.
func retryBackoff(attempts int) time.Duration {
	return time.Duration(attempts) * 30 * time.Second
}

// completeDrained marks running campaigns whose queue has fully drained as
// completed.
func (w *SendWorker) completeDrained() error {
	ctx, cancel := context.WithTimeout(w.ctx, 5*time.Second)
	defer cancel()

	res, err := w.db.ExecContext(ctx, `
		UPDATE ai_campaigns
		SET status = 'completed', completed_at = NOW(), updated_at = NOW()
		WHERE status = 'running'
		  AND NOT EXISTS (
		      SELECT 1 FROM campaign_queue q
		      WHERE q.campaign_id = ai_campaigns.id
		        AND q.status IN ('queued','sending')
		  )
	`)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Printf("[worker.SendWorker] completed %d campaign(s)", n)
	}
	return nil
}
