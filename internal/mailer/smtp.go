// Package mailer sends email through a user's own SMTP server, for the
// owner_smtp campaign channel and for settings verification.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"

	mail "github.com/go-mail/mail"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/pkg/logger"
)

// Message is a single outbound email sent through user SMTP.
type Message struct {
	To          string
	FromEmail   string
	FromName    string
	ReplyTo     string
	Subject     string
	HTMLContent string
	TextContent string
}

// Sender delivers mail using per-user SMTP credentials. Credentials arrive
// already unsealed; this package never touches the ciphertext.
type Sender interface {
	Send(ctx context.Context, settings *domain.EmailSettings, smtpPassword string, msg *Message) error
	// Verify dials the SMTP server and authenticates without sending.
	Verify(ctx context.Context, settings *domain.EmailSettings, smtpPassword string) error
}

// SMTPSender implements Sender with go-mail.
type SMTPSender struct{}

// NewSMTPSender creates an SMTP sender.
func NewSMTPSender() *SMTPSender {
	return &SMTPSender{}
}

func dialer(settings *domain.EmailSettings, password string) *mail.Dialer {
	d := mail.NewDialer(settings.SMTPHost, settings.SMTPPort, settings.SMTPUsername, password)
	d.TLSConfig = &tls.Config{ServerName: settings.SMTPHost}
	if settings.SMTPUseTLS && settings.SMTPPort == 465 {
		d.SSL = true
	}
	return d
}

// Send delivers a single email through the user's SMTP server.
func (s *SMTPSender) Send(ctx context.Context, settings *domain.EmailSettings, smtpPassword string, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", msg.FromEmail, msg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}

	// Prefer multipart/alternative (text + html)
	if msg.TextContent != "" {
		m.SetBody("text/plain", msg.TextContent)
	}
	if msg.HTMLContent != "" {
		if msg.TextContent == "" {
			m.SetBody("text/html", msg.HTMLContent)
		} else {
			m.AddAlternative("text/html", msg.HTMLContent)
		}
	}

	if err := dialer(settings, smtpPassword).DialAndSend(m); err != nil {
		log.Printf("[SMTP] send to %s via %s failed: %v", logger.RedactEmail(msg.To), settings.SMTPHost, err)
		return fmt.Errorf("smtp send: %w", err)
	}

	log.Printf("[SMTP] sent to %s via %s", logger.RedactEmail(msg.To), settings.SMTPHost)
	return nil
}

// Verify dials and authenticates against the SMTP server, then disconnects.
// A nil return means host, port, username, and password are all usable.
func (s *SMTPSender) Verify(ctx context.Context, settings *domain.EmailSettings, smtpPassword string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := dialer(settings, smtpPassword).Dial()
	if err != nil {
		return fmt.Errorf("smtp verify %s:%d: %w", settings.SMTPHost, settings.SMTPPort, err)
	}
	return conn.Close()
}
