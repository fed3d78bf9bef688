package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/inmobiliaria-premium/internal/leads"
	"github.com/wolfman30/inmobiliaria-premium/pkg/logging"
)

const (
	defaultFromName = "Inmobiliaria Premium"
	alertCategory   = "lead-alert"
)

// AlertSender delivers lead alerts to the sales inbox. SendGrid, SES and the
// logging stub all satisfy it.
type AlertSender interface {
	Send(ctx context.Context, alert LeadAlert) error
}

// LeadAlert is one e-mail about a qualified lead. LeadID and Classification
// travel with the message so providers can tag it and replies can be traced
// back to the dashboard row.
type LeadAlert struct {
	LeadID         int64
	Classification leads.Classification
	To             string
	Subject        string
	Text           string
	HTML           string
}

func (a LeadAlert) leadRef() string {
	return strconv.FormatInt(a.LeadID, 10)
}

// categories groups alerts in provider dashboards, e.g. lead-alert + lead-hot.
func (a LeadAlert) categories() []string {
	out := []string{alertCategory}
	if a.Classification != "" {
		out = append(out, "lead-"+strings.ToLower(string(a.Classification)))
	}
	return out
}

// SendGridSender sends lead alerts through the SendGrid v3 API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender returns nil when no API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

func (s *SendGridSender) message(alert LeadAlert) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(s.fromName, s.fromEmail))
	m.Subject = alert.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", alert.To))
	m.AddPersonalizations(p)

	text := alert.Text
	if text == "" {
		text = alert.Subject
	}
	m.AddContent(mail.NewContent("text/plain", text))
	if alert.HTML != "" {
		m.AddContent(mail.NewContent("text/html", alert.HTML))
	}

	m.AddCategories(alert.categories()...)
	m.SetCustomArg("lead_id", alert.leadRef())
	m.SetHeader("X-Lead-ID", alert.leadRef())
	return m
}

// Send delivers the alert. The lead id rides along as a custom arg so
// SendGrid event webhooks can be joined back to the lead.
func (s *SendGridSender) Send(ctx context.Context, alert LeadAlert) error {
	if s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}

	response, err := s.client.SendWithContext(ctx, s.message(alert))
	if err != nil {
		s.logger.Error("lead alert via sendgrid failed", "error", err, "lead_id", alert.LeadID)
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid rejected lead alert", "status", response.StatusCode, "body", response.Body, "lead_id", alert.LeadID)
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	s.logger.Info("lead alert sent via sendgrid", "lead_id", alert.LeadID, "classification", alert.Classification, "status", response.StatusCode)
	return nil
}

// StubEmailSender only logs alerts. Used when no provider is configured.
type StubEmailSender struct {
	logger *logging.Logger
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(ctx context.Context, alert LeadAlert) error {
	s.logger.Info("lead alert not delivered, no email provider",
		"lead_id", alert.LeadID,
		"classification", alert.Classification,
		"to", alert.To,
		"subject", alert.Subject,
	)
	return nil
}

var (
	_ AlertSender = (*SendGridSender)(nil)
	_ AlertSender = (*StubEmailSender)(nil)
)
