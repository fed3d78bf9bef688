package leads

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/inmobiliaria-premium/internal/http/middleware"
	"github.com/wolfman30/inmobiliaria-premium/internal/observability/metrics"
	"github.com/wolfman30/inmobiliaria-premium/pkg/logging"
)

// Handler handles HTTP requests for leads
type Handler struct {
	repo    Repository
	logger  *logging.Logger
	metrics *metrics.LeadMetrics
}

// NewHandler creates a new leads handler. metrics may be nil.
func NewHandler(repo Repository, logger *logging.Logger, m *metrics.LeadMetrics) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:    repo,
		logger:  logger,
		metrics: m,
	}
}

// Routes mounts the lead endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateLead)
	r.Get("/", h.ListLeads)
	r.Get("/stats", h.GetStats)
	r.Get("/export", h.ExportLeads)
	r.Patch("/{id}/status", h.UpdateStatus)
	return r
}

// CreateLeadResponse is returned by POST /leads
type CreateLeadResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// CreateLead handles POST /leads requests
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lead, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to save lead", "error", err)
		h.metrics.ObserveStorageError("insert")
		writeError(w, http.StatusInternalServerError, "Failed to save lead")
		return
	}

	h.metrics.ObserveCreated(string(lead.Classification), "api")
	h.logger.Info("lead created", "id", lead.ID, "classification", lead.Classification)
	writeJSON(w, http.StatusOK, CreateLeadResponse{ID: lead.ID, Status: "success"})
}

// ListLeads handles GET /leads. Optional query params: classification, q.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		h.metrics.ObserveStorageError("select")
		writeError(w, http.StatusInternalServerError, "Failed to fetch leads")
		return
	}

	filter := ListFilter{
		Classification: Classification(strings.TrimSpace(r.URL.Query().Get("classification"))),
		Search:         strings.TrimSpace(r.URL.Query().Get("q")),
	}
	if filter.Classification == "ALL" {
		filter.Classification = ""
	}

	result := filter.Apply(all)
	if result == nil {
		result = []*Lead{}
	}
	writeJSON(w, http.StatusOK, result)
}

// GetStats handles GET /leads/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list leads for stats", "error", err)
		h.metrics.ObserveStorageError("select")
		writeError(w, http.StatusInternalServerError, "Failed to fetch leads")
		return
	}
	writeJSON(w, http.StatusOK, ComputeStats(all))
}

type updateStatusRequest struct {
	Status Status `json:"status"`
}

// UpdateStatus handles PATCH /leads/{id}/status. The id is not checked for
// existence.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, ErrInvalidStatus.Error())
		return
	}

	if err := h.repo.UpdateStatus(r.Context(), id, req.Status); err != nil {
		h.logger.Error("failed to update status", "error", err, "id", id)
		h.metrics.ObserveStorageError("update")
		writeError(w, http.StatusInternalServerError, "Failed to update status")
		return
	}

	h.logger.Info("lead status updated", "id", id, "status", req.Status, "admin_token", adminTokenID(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// ExportLeads handles GET /leads/export
func (h *Handler) ExportLeads(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list leads for export", "error", err)
		h.metrics.ObserveStorageError("select")
		http.Error(w, "Export failed", http.StatusInternalServerError)
		return
	}

	// Render fully before writing headers so a failure can still become a 500.
	var buf bytes.Buffer
	if err := WriteCSV(&buf, all); err != nil {
		h.logger.Error("failed to render csv", "error", err)
		http.Error(w, "Export failed", http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveExport()
	h.logger.Info("leads exported", "rows", len(all), "admin_token", adminTokenID(r))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+ExportFilename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// adminTokenID names the admin session behind a request for the audit log.
func adminTokenID(r *http.Request) string {
	claims, ok := middleware.AdminClaimsFromContext(r.Context())
	if !ok {
		return ""
	}
	return claims.ID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// IsStorageError reports whether err came from the lead store.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
