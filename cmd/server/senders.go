package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/ses"
)

// sesProber verifies a sending address by delivering a short confirmation
// message to it through the platform SES identity. A hard SES rejection
// means the address is not deliverable and verification fails.
type sesProber struct {
	sender *ses.Sender
	from   string
}

func (p *sesProber) Probe(ctx context.Context, userID uuid.UUID, address string) error {
	result, err := p.sender.Send(ctx, &ses.Message{
		To:          address,
		FromEmail:   p.from,
		FromName:    "Outreach Platform",
		Subject:     "Confirm your sending address",
		HTMLContent: "<p>This address was added as a sender identity. No action is needed.</p>",
		ContactID:   userID.String(),
	})
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("address probe rejected: %w", result.Error)
	}
	return nil
}

// sesTestSender delivers rendered template previews through SES.
type sesTestSender struct {
	sender *ses.Sender
	from   string
}

func (t *sesTestSender) SendTest(ctx context.Context, userID uuid.UUID, to, subject, htmlBody string) error {
	result, err := t.sender.Send(ctx, &ses.Message{
		To:          to,
		FromEmail:   t.from,
		FromName:    "Outreach Platform",
		Subject:     subject,
		HTMLContent: htmlBody,
		ContactID:   userID.String(),
	})
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("test send rejected: %w", result.Error)
	}
	return nil
}
