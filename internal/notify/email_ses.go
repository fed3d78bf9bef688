package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/wolfman30/inmobiliaria-premium/pkg/logging"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends lead alerts through Amazon SES v2.
type SESSender struct {
	client    sesAPI
	from      string
	configSet string
	logger    *logging.Logger
}

// SESConfig holds configuration for AWS SES. ConfigurationSet is optional;
// when set, the lead tags below show up in its event destinations.
type SESConfig struct {
	FromEmail        string
	FromName         string
	ConfigurationSet string
}

func NewSESSender(client sesAPI, cfg SESConfig, logger *logging.Logger) *SESSender {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SESSender{
		client:    client,
		from:      fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail),
		configSet: cfg.ConfigurationSet,
		logger:    logger,
	}
}

func utf8Content(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String("UTF-8")}
}

func (s *SESSender) input(alert LeadAlert) *sesv2.SendEmailInput {
	body := &types.Body{}
	if alert.Text != "" {
		body.Text = utf8Content(alert.Text)
	}
	if alert.HTML != "" {
		body.Html = utf8Content(alert.HTML)
	}

	tags := []types.MessageTag{
		{Name: aws.String("category"), Value: aws.String(alertCategory)},
		{Name: aws.String("lead_id"), Value: aws.String(alert.leadRef())},
	}
	if alert.Classification != "" {
		tags = append(tags, types.MessageTag{Name: aws.String("classification"), Value: aws.String(string(alert.Classification))})
	}

	in := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: []string{alert.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{Subject: utf8Content(alert.Subject), Body: body},
		},
		EmailTags: tags,
	}
	if s.configSet != "" {
		in.ConfigurationSetName = aws.String(s.configSet)
	}
	return in
}

func (s *SESSender) Send(ctx context.Context, alert LeadAlert) error {
	if s.client == nil {
		return fmt.Errorf("notify: SES client not configured")
	}

	output, err := s.client.SendEmail(ctx, s.input(alert))
	if err != nil {
		s.logger.Error("lead alert via SES failed", "error", err, "lead_id", alert.LeadID)
		return fmt.Errorf("notify: SES send failed: %w", err)
	}

	s.logger.Info("lead alert sent via SES", "lead_id", alert.LeadID, "classification", alert.Classification, "message_id", aws.ToString(output.MessageId))
	return nil
}

var _ AlertSender = (*SESSender)(nil)
