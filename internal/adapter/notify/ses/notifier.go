// Package ses sends transactional email through Amazon SES v2.
package ses

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"digital-delivery-gateway/config"
	"digital-delivery-gateway/internal/core/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog"
)

const charset = "UTF-8"

// API is the part of *sesv2.Client the notifier calls.
type API interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Notifier implements ports.Notifier.
type Notifier struct {
	api API
	log zerolog.Logger
}

// NewClient builds an SES client from the notify settings. Credentials come
// from the default AWS chain (environment, shared profile, instance role)
// unless static keys are configured.
func NewClient(ctx context.Context, cfg config.NotifyConfig) (*sesv2.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return sesv2.NewFromConfig(awsCfg), nil
}

// NewNotifier creates a Notifier.
func NewNotifier(api API, log zerolog.Logger) *Notifier {
	return &Notifier{api: api, log: log}
}

// Send delivers msg and returns the SES message id.
func (n *Notifier) Send(ctx context.Context, msg domain.EmailMessage) (string, error) {
	if msg.ToEmail == "" {
		return "", errors.New("recipient is empty")
	}
	if msg.FromEmail == "" {
		return "", errors.New("sender is empty")
	}

	from := (&mail.Address{Name: msg.FromName, Address: msg.FromEmail}).String()

	body := &types.Body{}
	if msg.BodyHTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.BodyHTML), Charset: aws.String(charset)}
	}
	if msg.BodyText != "" {
		body.Text = &types.Content{Data: aws.String(msg.BodyText), Charset: aws.String(charset)}
	}

	out, err := n.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{msg.ToEmail}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(charset)},
				Body:    body,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ses send email: %w", err)
	}

	id := aws.ToString(out.MessageId)
	n.log.Debug().Str("message_id", id).Msg("email accepted by SES")
	return id, nil
}
