package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/wolfman30/inmobiliaria-premium/internal/leads"
	"github.com/wolfman30/inmobiliaria-premium/pkg/logging"
)

func hotAlert() LeadAlert {
	return LeadAlert{
		LeadID:         42,
		Classification: leads.ClassificationHot,
		To:             "ventas@inmobiliaria.mx",
		Subject:        "Nuevo lead HOT: Ana",
		Text:           "texto",
		HTML:           "<p>html</p>",
	}
}

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "",
		FromEmail: "test@example.com",
	}, nil)

	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "test@example.com",
	}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != "Inmobiliaria Premium" {
		t.Errorf("expected default from name 'Inmobiliaria Premium', got %q", sender.fromName)
	}
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{client: nil}

	if err := sender.Send(context.Background(), hotAlert()); err == nil {
		t.Error("expected error when client is nil")
	}
}

func TestSendGridSender_MessageIsTaggedWithLead(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "SG.x", FromEmail: "sofia@inmobiliaria.mx"}, nil)

	m := sender.message(hotAlert())

	if m.From == nil || m.From.Address != "sofia@inmobiliaria.mx" || m.From.Name != "Inmobiliaria Premium" {
		t.Errorf("unexpected from %+v", m.From)
	}
	if m.Subject != "Nuevo lead HOT: Ana" {
		t.Errorf("unexpected subject %q", m.Subject)
	}
	if len(m.Personalizations) != 1 || len(m.Personalizations[0].To) != 1 || m.Personalizations[0].To[0].Address != "ventas@inmobiliaria.mx" {
		t.Errorf("unexpected recipients %+v", m.Personalizations)
	}
	if len(m.Content) != 2 || m.Content[0].Type != "text/plain" || m.Content[1].Type != "text/html" {
		t.Errorf("expected plain then html content, got %+v", m.Content)
	}
	if got := strings.Join(m.Categories, ","); got != "lead-alert,lead-hot" {
		t.Errorf("unexpected categories %q", got)
	}
	if m.CustomArgs["lead_id"] != "42" {
		t.Errorf("expected lead_id custom arg, got %v", m.CustomArgs)
	}
	if m.Headers["X-Lead-ID"] != "42" {
		t.Errorf("expected X-Lead-ID header, got %v", m.Headers)
	}
}

func TestSendGridSender_MessageFallsBackToSubjectAsText(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "SG.x", FromEmail: "sofia@inmobiliaria.mx"}, nil)

	m := sender.message(LeadAlert{LeadID: 1, To: "a@b.c", Subject: "solo asunto"})

	if len(m.Content) != 1 || m.Content[0].Value != "solo asunto" {
		t.Errorf("expected subject as plain body, got %+v", m.Content)
	}
	if got := strings.Join(m.Categories, ","); got != "lead-alert" {
		t.Errorf("unclassified alert should only carry the base category, got %q", got)
	}
}

func TestStubEmailSender_LogsLeadIdentity(t *testing.T) {
	var buf bytes.Buffer
	sender := NewStubEmailSender(logging.NewWithWriter("info", &buf))

	if err := sender.Send(context.Background(), hotAlert()); err != nil {
		t.Fatalf("stub sender should not return error, got: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"lead_id":42`) || !strings.Contains(out, `"classification":"HOT"`) {
		t.Errorf("stub log should name the lead, got %s", out)
	}
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	api := &fakeSES{}
	sender := NewSESSender(api, SESConfig{FromEmail: "sofia@inmobiliaria.mx"}, nil)

	if err := sender.Send(context.Background(), hotAlert()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := aws.ToString(api.input.FromEmailAddress); got != "Inmobiliaria Premium <sofia@inmobiliaria.mx>" {
		t.Errorf("unexpected from address %q", got)
	}
	if got := api.input.Destination.ToAddresses; len(got) != 1 || got[0] != "ventas@inmobiliaria.mx" {
		t.Errorf("unexpected destination %v", got)
	}
	body := api.input.Content.Simple.Body
	if aws.ToString(body.Text.Data) != "texto" || aws.ToString(body.Html.Data) != "<p>html</p>" {
		t.Errorf("unexpected body %+v", body)
	}
	if api.input.ConfigurationSetName != nil {
		t.Errorf("configuration set should be omitted when not configured")
	}
}

func TestSESSender_TagsLeadAndConfigurationSet(t *testing.T) {
	api := &fakeSES{}
	sender := NewSESSender(api, SESConfig{FromEmail: "sofia@inmobiliaria.mx", ConfigurationSet: "lead-alerts"}, nil)

	if err := sender.Send(context.Background(), hotAlert()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tags := map[string]string{}
	for _, tag := range api.input.EmailTags {
		tags[aws.ToString(tag.Name)] = aws.ToString(tag.Value)
	}
	if tags["lead_id"] != "42" || tags["classification"] != "HOT" || tags["category"] != "lead-alert" {
		t.Errorf("unexpected tags %v", tags)
	}
	if got := aws.ToString(api.input.ConfigurationSetName); got != "lead-alerts" {
		t.Errorf("unexpected configuration set %q", got)
	}
}

func TestSESSender_SendError(t *testing.T) {
	sender := NewSESSender(&fakeSES{err: errors.New("MessageRejected")}, SESConfig{FromEmail: "a@b.c"}, nil)

	err := sender.Send(context.Background(), LeadAlert{LeadID: 1, To: "x@y.z", Subject: "s", Text: "b"})
	if err == nil || !strings.Contains(err.Error(), "MessageRejected") {
		t.Fatalf("expected wrapped SES error, got %v", err)
	}
}
