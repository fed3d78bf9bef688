package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/inmobiliaria-premium/internal/leads"
	"github.com/wolfman30/inmobiliaria-premium/pkg/logging"
)

// Service alerts the sales team about freshly qualified leads.
type Service struct {
	email     AlertSender
	recipient string
	logger    *logging.Logger
}

// NewService creates a notification service. With no sender or recipient
// every alert is skipped.
func NewService(email AlertSender, recipient string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:     email,
		recipient: strings.TrimSpace(recipient),
		logger:    logger,
	}
}

// NotifyLead e-mails the alert recipient about HOT and WARM leads. COLD
// leads are only visible in the dashboard.
func (s *Service) NotifyLead(ctx context.Context, lead *leads.Lead) error {
	if lead == nil {
		return nil
	}
	if s.email == nil || s.recipient == "" {
		s.logger.Debug("notify: lead alerts not configured, skipping", "lead_id", lead.ID)
		return nil
	}
	if lead.Classification != leads.ClassificationHot && lead.Classification != leads.ClassificationWarm {
		return nil
	}

	msg := LeadAlert{
		LeadID:         lead.ID,
		Classification: lead.Classification,
		To:             s.recipient,
		Subject:        leadAlertSubject(lead),
		Text:           leadAlertText(lead),
		HTML:           leadAlertHTML(lead),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: lead alert: %w", err)
	}
	s.logger.Info("notify: lead alert sent", "lead_id", lead.ID, "classification", lead.Classification)
	return nil
}

func leadAlertSubject(lead *leads.Lead) string {
	return fmt.Sprintf("Nuevo lead %s: %s", lead.Classification, lead.Name)
}

type alertField struct {
	label string
	value string
}

func alertFields(lead *leads.Lead) []alertField {
	return []alertField{
		{"Nombre", lead.Name},
		{"WhatsApp", lead.WhatsApp},
		{"Operación", lead.Operation},
		{"Inmueble", lead.PropertyType},
		{"Zona", lead.Zone},
		{"Presupuesto", lead.Budget},
		{"Financiamiento", lead.Financing},
		{"Plazo", lead.Timeline},
		{"Clasificación", string(lead.Classification)},
	}
}

func leadAlertText(lead *leads.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sofia calificó un nuevo lead (#%d).\n\n", lead.ID)
	for _, f := range alertFields(lead) {
		fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
	}
	b.WriteString("\nContáctalo por WhatsApp lo antes posible.\n")
	return b.String()
}

func leadAlertHTML(lead *leads.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Sofia calificó un nuevo lead (#%d).</p><table>", lead.ID)
	for _, f := range alertFields(lead) {
		fmt.Fprintf(&b, "<tr><th align=\"left\">%s</th><td>%s</td></tr>", f.label, html.EscapeString(f.value))
	}
	b.WriteString("</table><p>Contáctalo por WhatsApp lo antes posible.</p>")
	return b.String()
}
