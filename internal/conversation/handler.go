package conversation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/inmobiliaria-premium/internal/leads"
	"github.com/wolfman30/inmobiliaria-premium/pkg/logging"
)

// Handler wires HTTP requests to the conversation service.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a conversation handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Routes mounts the chat endpoints, relative to /chat/sessions.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Start)
	r.Get("/{id}", h.GetSession)
	r.Post("/{id}/messages", h.Message)
	r.Post("/{id}/slot", h.SelectSlot)
	return r
}

type StartResponse struct {
	SessionID string        `json:"session_id"`
	Messages  []ChatMessage `json:"messages"`
}

type MessageRequest struct {
	Text string `json:"text"`
}

type MessageResponse struct {
	Reply          string               `json:"reply"`
	Complete       bool                 `json:"complete"`
	Classification leads.Classification `json:"classification,omitempty"`
	LeadID         int64                `json:"lead_id,omitempty"`
	Slots          []string             `json:"slots,omitempty"`
}

type SlotRequest struct {
	Slot string `json:"slot"`
}

type SessionResponse struct {
	SessionID    string        `json:"session_id"`
	Messages     []ChatMessage `json:"messages"`
	Complete     bool          `json:"complete"`
	Slots        []string      `json:"slots,omitempty"`
	SelectedSlot string        `json:"selected_slot,omitempty"`
}

// Start handles POST /chat/sessions.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Start(r.Context())
	if err != nil {
		h.logger.Error("failed to start chat session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start conversation")
		return
	}
	writeJSON(w, http.StatusCreated, StartResponse{SessionID: session.ID, Messages: session.Messages})
}

// GetSession handles GET /chat/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{
		SessionID:    session.ID,
		Messages:     session.Messages,
		Complete:     session.Complete(),
		Slots:        session.Slots,
		SelectedSlot: session.SelectedSlot,
	})
}

// Message handles POST /chat/sessions/{id}/messages.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode message request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Send(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Reply:          result.Reply,
		Complete:       result.Complete,
		Classification: result.Classification,
		LeadID:         result.LeadID,
		Slots:          result.Slots,
	})
}

// SelectSlot handles POST /chat/sessions/{id}/slot.
func (h *Handler) SelectSlot(w http.ResponseWriter, r *http.Request) {
	var req SlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.SelectSlot(r.Context(), chi.URLParam(r, "id"), req.Slot)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": result.Reply})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, ErrTurnInProgress):
		writeError(w, http.StatusConflict, "a message is already being processed")
	case errors.Is(err, ErrSessionComplete):
		writeError(w, http.StatusConflict, "conversation already complete")
	case errors.Is(err, ErrSlotsNotOffered):
		writeError(w, http.StatusConflict, "no appointment slots available")
	case errors.Is(err, ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "text is required")
	case errors.Is(err, ErrUnknownSlot):
		writeError(w, http.StatusBadRequest, "unknown slot")
	default:
		h.logger.Error("chat request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process message")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
