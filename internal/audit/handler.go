package audit

import (
	"net/http"
	"strconv"

	"github.com/statusdesk/statusdesk/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP requests for the audit module.
type Handler struct {
	recorder *Recorder
}

// NewHandler creates a new audit handler.
func NewHandler(recorder *Recorder) *Handler {
	return &Handler{recorder: recorder}
}

// RegisterAdminRoutes registers audit routes (admin only).
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/audit-logs", h.ListAuditLogs)
}

// ListAuditLogs handles GET /audit-logs.
func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	filter := Filter{Limit: DefaultListLimit}

	if entityType := r.URL.Query().Get("entity_type"); entityType != "" {
		filter.EntityType = &entityType
	}

	if entityID := r.URL.Query().Get("entity_id"); entityID != "" {
		filter.EntityID = &entityID
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			httputil.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = parsed
	}

	logs, err := h.recorder.List(r.Context(), filter)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusOK, logs)
}
