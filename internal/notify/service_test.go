package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/inmobiliaria-premium/internal/leads"
)

type mockAlertSender struct {
	sent    []LeadAlert
	callErr error
}

func (m *mockAlertSender) Send(ctx context.Context, msg LeadAlert) error {
	if m.callErr != nil {
		return m.callErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func sampleLead(c leads.Classification) *leads.Lead {
	return &leads.Lead{
		ID:             7,
		Name:           "Ana <Torres>",
		WhatsApp:       "5215511112222",
		Operation:      "compra",
		PropertyType:   "casa",
		Zone:           "Polanco",
		Budget:         "$5,000,000",
		Financing:      "no",
		Timeline:       "inmediato",
		Classification: c,
		Status:         leads.StatusPending,
		CreatedAt:      time.Now(),
	}
}

func TestNotifyLead_HotAndWarm(t *testing.T) {
	for _, c := range []leads.Classification{leads.ClassificationHot, leads.ClassificationWarm} {
		sender := &mockAlertSender{}
		svc := NewService(sender, "ventas@inmobiliaria.mx", nil)

		if err := svc.NotifyLead(context.Background(), sampleLead(c)); err != nil {
			t.Fatalf("%s: unexpected error: %v", c, err)
		}
		if len(sender.sent) != 1 {
			t.Fatalf("%s: expected 1 email, got %d", c, len(sender.sent))
		}
		msg := sender.sent[0]
		if msg.To != "ventas@inmobiliaria.mx" {
			t.Errorf("unexpected recipient %q", msg.To)
		}
		if msg.LeadID != 7 || msg.Classification != c {
			t.Errorf("alert should identify the lead, got id=%d classification=%s", msg.LeadID, msg.Classification)
		}
		if !strings.Contains(msg.Subject, string(c)) {
			t.Errorf("subject should carry the classification, got %q", msg.Subject)
		}
		if !strings.Contains(msg.Text, "WhatsApp: 5215511112222") {
			t.Errorf("body missing contact: %q", msg.Text)
		}
		if !strings.Contains(msg.HTML, "Ana &lt;Torres&gt;") {
			t.Errorf("html body must escape lead fields: %q", msg.HTML)
		}
	}
}

func TestNotifyLead_SkipsColdLeads(t *testing.T) {
	sender := &mockAlertSender{}
	svc := NewService(sender, "ventas@inmobiliaria.mx", nil)

	if err := svc.NotifyLead(context.Background(), sampleLead(leads.ClassificationCold)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no email for COLD lead")
	}
}

func TestNotifyLead_NotConfigured(t *testing.T) {
	sender := &mockAlertSender{}
	if err := NewService(sender, "  ", nil).NotifyLead(context.Background(), sampleLead(leads.ClassificationHot)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := NewService(nil, "ventas@inmobiliaria.mx", nil).NotifyLead(context.Background(), sampleLead(leads.ClassificationHot)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no email without a recipient")
	}
}

func TestNotifyLead_SenderError(t *testing.T) {
	sender := &mockAlertSender{callErr: errors.New("smtp down")}
	err := NewService(sender, "ventas@inmobiliaria.mx", nil).NotifyLead(context.Background(), sampleLead(leads.ClassificationWarm))
	if err == nil || !strings.Contains(err.Error(), "smtp down") {
		t.Fatalf("expected sender error to be returned, got %v", err)
	}
}
