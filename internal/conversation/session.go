package conversation

import (
	"slices"
	"time"

	"github.com/wolfman30/inmobiliaria-premium/internal/leads"
)

type SessionState string

const (
	SessionActive   SessionState = "active"
	SessionComplete SessionState = "complete"
)

// Session is the server-side state of one chat with a prospect.
type Session struct {
	ID             string               `json:"id"`
	Messages       []ChatMessage        `json:"messages"`
	State          SessionState         `json:"state"`
	Classification leads.Classification `json:"classification,omitempty"`
	LeadID         int64                `json:"lead_id,omitempty"`
	Slots          []string             `json:"slots,omitempty"`
	SelectedSlot   string               `json:"selected_slot,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// NewSession opens a session seeded with the greeting.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Messages:  []ChatMessage{{Role: ChatRoleModel, Text: Greeting}},
		State:     SessionActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) Complete() bool {
	return s.State == SessionComplete
}

func (s *Session) append(now time.Time, msgs ...ChatMessage) {
	s.Messages = append(s.Messages, msgs...)
	s.UpdatedAt = now
}

// complete marks the session finished. HOT and WARM prospects are offered
// appointment slots.
func (s *Session) complete(c leads.Classification, leadID int64) {
	s.State = SessionComplete
	s.Classification = c
	s.LeadID = leadID
	if c == leads.ClassificationHot || c == leads.ClassificationWarm {
		s.Slots = slices.Clone(DefaultSlots)
	}
}

func (s *Session) offersSlot(slot string) bool {
	return slices.Contains(s.Slots, slot)
}

func (s *Session) clone() *Session {
	cp := *s
	cp.Messages = slices.Clone(s.Messages)
	cp.Slots = slices.Clone(s.Slots)
	return &cp
}
