// Package ses delivers platform-channel email through AWS SES using the
// SDK v2 simple-content API.
package ses

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/ignite/outreach-platform/internal/config"
	"github.com/ignite/outreach-platform/internal/pkg/logger"
)

// Message is a single outbound email.
type Message struct {
	To          string
	FromEmail   string
	FromName    string
	ReplyTo     string
	Subject     string
	HTMLContent string
	TextContent string
	CampaignID  string
	ContactID   string
}

// SendResult reports the outcome of a single delivery attempt.
type SendResult struct {
	Success   bool
	MessageID string
	Error     error
	SentAt    time.Time
}

// Sender sends email via AWS SES.
type Sender struct {
	region string
	client *sesv2.Client
}

// NewSender creates an SES sender. Initializes the AWS SDK client if
// credentials are provided; with empty keys the default credential chain
// (IAM role on ECS) is used.
func NewSender(cfg config.SESConfig) *Sender {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	sender := &Sender{region: region}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		log.Printf("[SES] Warning: Failed to initialize AWS config: %v", err)
	} else {
		sender.client = sesv2.NewFromConfig(awsCfg)
	}

	return sender
}

// Send delivers a single email through AWS SES.
func (s *Sender) Send(ctx context.Context, msg *Message) (*SendResult, error) {
	if s.client == nil {
		return nil, fmt.Errorf("SES client not initialized - check credentials")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", msg.FromName, msg.FromEmail)),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTMLContent), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("campaign_id"), Value: aws.String(msg.CampaignID)},
			{Name: aws.String("contact_id"), Value: aws.String(msg.ContactID)},
		},
	}

	if msg.TextContent != "" {
		input.Content.Simple.Body.Text = &types.Content{Data: aws.String(msg.TextContent), Charset: aws.String("UTF-8")}
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		log.Printf("[SES] Failed to send to %s: %v", logger.RedactEmail(msg.To), err)
		return &SendResult{Success: false, Error: err}, nil
	}

	messageID := ""
	if result.MessageId != nil {
		messageID = *result.MessageId
	}

	log.Printf("[SES] Sent to %s (id: %s)", logger.RedactEmail(msg.To), messageID)

	return &SendResult{
		Success:   true,
		MessageID: messageID,
		SentAt:    time.Now(),
	}, nil
}
