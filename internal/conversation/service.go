package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/inmobiliaria-premium/internal/leads"
	"github.com/wolfman30/inmobiliaria-premium/internal/observability/metrics"
	"github.com/wolfman30/inmobiliaria-premium/pkg/logging"
)

// LeadCreator persists a qualified prospect.
type LeadCreator interface {
	Create(ctx context.Context, req *leads.CreateLeadRequest) (*leads.Lead, error)
}

// LeadNotifier is told about every lead captured by a chat. Failures are
// logged and never retried.
type LeadNotifier interface {
	NotifyLead(ctx context.Context, lead *leads.Lead) error
}

// TurnResult is what a caller shows after a turn.
type TurnResult struct {
	Reply          string
	Complete       bool
	Fallback       bool
	Classification leads.Classification
	LeadID         int64
	Slots          []string
}

type Option func(*Service)

func WithNotifier(n LeadNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithMetrics(m *metrics.ConversationMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLeadMetrics(m *metrics.LeadMetrics) Option {
	return func(s *Service) { s.leadMetrics = m }
}

// WithModel overrides the model id and sampling settings sent with each request.
func WithModel(model string, maxTokens int32, temperature float32) Option {
	return func(s *Service) {
		s.model = model
		s.maxTokens = maxTokens
		s.temperature = temperature
	}
}

// WithTurnLocker replaces the in-process turn lock, e.g. with a Redis lock
// shared by every API instance.
func WithTurnLocker(l TurnLocker) Option {
	return func(s *Service) {
		if l != nil {
			s.turns = l
		}
	}
}

// WithTopP sets nucleus sampling. Zero leaves the provider default.
func WithTopP(topP float32) Option {
	return func(s *Service) { s.topP = topP }
}

// Service runs qualification conversations: it relays each user message to
// the model, watches replies for the data summary, and records the lead.
type Service struct {
	llm         LLMClient
	store       SessionStore
	leads       LeadCreator
	notifier    LeadNotifier
	logger      *logging.Logger
	metrics     *metrics.ConversationMetrics
	leadMetrics *metrics.LeadMetrics

	model       string
	maxTokens   int32
	temperature float32
	topP        float32

	turns TurnLocker
	now   func() time.Time
	newID func() string
}

func NewService(llm LLMClient, store SessionStore, creator LeadCreator, logger *logging.Logger, opts ...Option) *Service {
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if store == nil {
		panic("conversation: session store cannot be nil")
	}
	if creator == nil {
		panic("conversation: lead creator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		llm:         llm,
		store:       store,
		leads:       creator,
		logger:      logger,
		temperature: -1,
		turns:       NewMemoryTurnLocker(),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a new session seeded with the greeting.
func (s *Service) Start(ctx context.Context) (*Session, error) {
	session := NewSession(s.newID(), s.now())
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("chat session started", "session_id", session.ID)
	return session, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Load(ctx, id)
}

// Send processes one user message. A model failure is not an error for the
// caller: the turn completes with the fallback reply instead.
func (s *Service) Send(ctx context.Context, id, text string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	release, err := s.turns.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Complete() {
		return nil, ErrSessionComplete
	}

	userMsg := ChatMessage{Role: ChatRoleUser, Text: text}
	reply, err := s.complete(ctx, session.Messages, userMsg)
	if err != nil {
		var modelErr *ExternalModelError
		if !errors.As(err, &modelErr) {
			return nil, err
		}
		s.logger.Warn("model call failed, using fallback reply", "session_id", id, "error", err)
		session.append(s.now(), userMsg, ChatMessage{Role: ChatRoleModel, Text: FallbackReply})
		if err := s.store.Save(ctx, session); err != nil {
			return nil, err
		}
		s.metrics.ObserveTurn("fallback")
		return &TurnResult{Reply: FallbackReply, Fallback: true}, nil
	}

	extraction, parseErr := ExtractDataSummary(reply)
	if parseErr != nil {
		s.logger.Warn("discarding invalid data summary", "session_id", id, "error", parseErr)
		s.metrics.ObserveParseError()
	}

	outcome := "reply"
	// A reply that was only the summary block leaves nothing to show. History
	// must keep alternating, so the model turn always carries text.
	if extraction.Text == "" {
		if extraction.Summary != nil {
			extraction.Text = ClosingReply
		} else {
			extraction.Text = FallbackReply
			outcome = "fallback"
		}
	}
	session.append(s.now(), userMsg, ChatMessage{Role: ChatRoleModel, Text: extraction.Text})

	if extraction.Summary != nil {
		outcome = "qualified"
		session.complete(extraction.Summary.Classification, s.recordLead(ctx, id, extraction.Summary))
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	s.metrics.ObserveTurn(outcome)

	return &TurnResult{
		Reply:          extraction.Text,
		Complete:       session.Complete(),
		Fallback:       outcome == "fallback",
		Classification: session.Classification,
		LeadID:         session.LeadID,
		Slots:          session.Slots,
	}, nil
}

// SelectSlot confirms one of the offered appointment times. The lead itself
// is not touched.
func (s *Service) SelectSlot(ctx context.Context, id, slot string) (*TurnResult, error) {
	release, err := s.turns.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Complete() || len(session.Slots) == 0 {
		return nil, ErrSlotsNotOffered
	}
	if !session.offersSlot(slot) {
		return nil, ErrUnknownSlot
	}

	reply := slotConfirmation(slot)
	session.append(s.now(), ChatMessage{Role: ChatRoleModel, Text: reply})
	session.SelectedSlot = slot
	session.Slots = nil
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("appointment slot selected", "session_id", id, "lead_id", session.LeadID, "slot", slot)

	return &TurnResult{
		Reply:          reply,
		Complete:       true,
		Classification: session.Classification,
		LeadID:         session.LeadID,
	}, nil
}

func (s *Service) complete(ctx context.Context, history []ChatMessage, userMsg ChatMessage) (string, error) {
	messages := make([]ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, userMsg)

	start := time.Now()
	resp, err := s.llm.Complete(ctx, LLMRequest{
		Model:       s.model,
		System:      []string{SystemPrompt},
		Messages:    messages,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		TopP:        s.topP,
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		s.metrics.ObserveLLMLatency("error", elapsed)
		return "", &ExternalModelError{Err: err}
	}
	s.metrics.ObserveLLMLatency("ok", elapsed)

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", &ExternalModelError{Err: errors.New("empty completion")}
	}
	return text, nil
}

// recordLead stores the lead and returns its id, or 0 when the write failed.
// A failed write does not stop the session from completing.
func (s *Service) recordLead(ctx context.Context, sessionID string, summary *DataSummary) int64 {
	lead, err := s.leads.Create(ctx, summary.LeadRequest())
	if err != nil {
		s.logger.Error("failed to save chat lead", "session_id", sessionID, "error", err)
		s.leadMetrics.ObserveStorageError("insert")
		return 0
	}
	s.leadMetrics.ObserveCreated(string(lead.Classification), "chat")
	s.logger.Info("lead captured from chat",
		"session_id", sessionID,
		"lead_id", lead.ID,
		"classification", lead.Classification,
	)

	if s.notifier != nil {
		if err := s.notifier.NotifyLead(ctx, lead); err != nil {
			s.logger.Warn("lead alert failed", "lead_id", lead.ID, "error", err)
		}
	}
	return lead.ID
}
