package incidents

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/statusdesk/statusdesk/internal/domain"
	"github.com/statusdesk/statusdesk/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for the incidents module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterReadRoutes registers incident read routes. These sit behind
// the optional-auth middleware: anonymous callers get the public
// projection.
func (h *Handler) RegisterReadRoutes(r chi.Router) {
	r.Get("/incidents", h.ListIncidents)
	r.Get("/incidents/{id}", h.GetIncident)
	r.Get("/incidents/{id}/updates", h.ListIncidentUpdates)
	r.Get("/updates/incident/{incidentId}", h.ListUpdatesByIncident)
}

// RegisterPublicRoutes registers unauthenticated projection routes.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/public/incidents", h.ListPublicIncidents)
}

// RegisterProtectedRoutes registers routes that need a verified
// identity but no particular role. Update deletion is gated by
// authorship in the service, not by role: an author keeps the right
// to remove their own entries even after a demotion.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Delete("/updates/{id}", h.DeleteUpdate)
}

// RegisterOperatorRoutes registers routes open to engineers and admins.
func (h *Handler) RegisterOperatorRoutes(r chi.Router) {
	r.Post("/incidents", h.CreateIncident)
	r.Patch("/incidents/{id}", h.UpdateIncident)
	r.Patch("/incidents/{id}/resolve", h.ResolveIncident)
	r.Patch("/incidents/{id}/publish", h.TogglePublish)
	r.Post("/incidents/{id}/updates", h.AddUpdate)
	r.Post("/updates", h.CreateUpdate)
}

// RegisterAdminRoutes registers routes restricted to admins.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Delete("/incidents/{id}", h.DeleteIncident)
}

// ListIncidents handles GET /incidents.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	filter := parseFilter(r)
	actor := httputil.GetActor(r.Context())

	incidents, err := h.service.ListIncidents(r.Context(), filter, actor)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, incidents)
}

// ListPublicIncidents handles GET /public/incidents.
func (h *Handler) ListPublicIncidents(w http.ResponseWriter, r *http.Request) {
	filter := parseFilter(r)

	incidents, err := h.service.ListIncidents(r.Context(), filter, domain.Actor{})
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, incidents)
}

// GetIncident handles GET /incidents/{id}.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	id, ok := h.incidentID(w, r, "id")
	if !ok {
		return
	}
	actor := httputil.GetActor(r.Context())

	incident, err := h.service.GetIncident(r.Context(), id, actor)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// CreateIncidentRequest represents the request body for opening an incident.
type CreateIncidentRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description string  `json:"description" validate:"required"`
	Severity    string  `json:"severity" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	ServiceID   *string `json:"service_id"`
	IsPublic    *bool   `json:"is_public"`
}

// CreateIncident handles POST /incidents.
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	actor := httputil.GetActor(r.Context())

	incident, err := h.service.CreateIncident(r.Context(), CreateIncidentInput(req), actor)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, incident)
}

// UpdateIncidentRequest represents the request body for a partial
// incident update. Status changes go through the resolve endpoint.
type UpdateIncidentRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Severity    *string `json:"severity" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	ServiceID   *string `json:"service_id"`
	IsPublic    *bool   `json:"is_public"`
}

// UpdateIncident handles PATCH /incidents/{id}.
func (h *Handler) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	id, ok := h.incidentID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	actor := httputil.GetActor(r.Context())

	incident, err := h.service.UpdateIncident(r.Context(), id, UpdateIncidentInput(req), actor)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// ResolveIncidentRequest represents the request body for resolving an incident.
type ResolveIncidentRequest struct {
	RootCauseSummary *string `json:"root_cause_summary"`
}

// ResolveIncident handles PATCH /incidents/{id}/resolve.
func (h *Handler) ResolveIncident(w http.ResponseWriter, r *http.Request) {
	id, ok := h.incidentID(w, r, "id")
	if !ok {
		return
	}

	// The body is optional: resolving without a root cause is fine.
	var req ResolveIncidentRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
	}

	actor := httputil.GetActor(r.Context())

	incident, err := h.service.ResolveIncident(r.Context(), id, req.RootCauseSummary, actor)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// TogglePublishRequest represents the request body for a publish toggle.
type TogglePublishRequest struct {
	IsPublic *bool `json:"is_public"`
}

// TogglePublish handles PATCH /incidents/{id}/publish. Without a body
// the visibility flips; with one it is set explicitly.
func (h *Handler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	id, ok := h.incidentID(w, r, "id")
	if !ok {
		return
	}

	var req TogglePublishRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
	}

	actor := httputil.GetActor(r.Context())

	incident, err := h.service.TogglePublish(r.Context(), id, req.IsPublic, actor)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// DeleteIncident handles DELETE /incidents/{id}.
func (h *Handler) DeleteIncident(w http.ResponseWriter, r *http.Request) {
	id, ok := h.incidentID(w, r, "id")
	if !ok {
		return
	}

	actor := httputil.GetActor(r.Context())

	if err := h.service.DeleteIncident(r.Context(), id, actor); err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddUpdateRequest represents the request body for an incident-scoped
// timeline entry.
type AddUpdateRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}

// AddUpdate handles POST /incidents/{id}/updates.
func (h *Handler) AddUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.incidentID(w, r, "id")
	if !ok {
		return
	}

	var req AddUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	actor := httputil.GetActor(r.Context())

	update, err := h.service.AddUpdate(r.Context(), id, req.Content, actor)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, update)
}

// CreateUpdateRequest represents the request body for the standalone
// update route.
type CreateUpdateRequest struct {
	IncidentID string `json:"incident_id" validate:"required,uuid"`
	Content    string `json:"content" validate:"required,min=1"`
}

// CreateUpdate handles POST /updates.
func (h *Handler) CreateUpdate(w http.ResponseWriter, r *http.Request) {
	var req CreateUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	actor := httputil.GetActor(r.Context())

	update, err := h.service.CreateUpdate(r.Context(), req.IncidentID, req.Content, actor)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, update)
}

// ListIncidentUpdates handles GET /incidents/{id}/updates. The
// timeline is chronological.
func (h *Handler) ListIncidentUpdates(w http.ResponseWriter, r *http.Request) {
	id, ok := h.incidentID(w, r, "id")
	if !ok {
		return
	}
	actor := httputil.GetActor(r.Context())

	updates, err := h.service.ListUpdates(r.Context(), id, actor, false)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, updates)
}

// ListUpdatesByIncident handles GET /updates/incident/{incidentId}.
// This public listing returns newest entries first.
func (h *Handler) ListUpdatesByIncident(w http.ResponseWriter, r *http.Request) {
	id, ok := h.incidentID(w, r, "incidentId")
	if !ok {
		return
	}
	actor := httputil.GetActor(r.Context())

	updates, err := h.service.ListUpdates(r.Context(), id, actor, true)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, updates)
}

// DeleteUpdate handles DELETE /updates/{id}.
func (h *Handler) DeleteUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		httputil.Error(w, http.StatusNotFound, ErrUpdateNotFound.Error())
		return
	}

	actor := httputil.GetActor(r.Context())

	if err := h.service.DeleteUpdate(r.Context(), id, actor); err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// incidentID extracts and validates an incident ID path parameter.
func (h *Handler) incidentID(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	id := chi.URLParam(r, param)
	if uuid.Validate(id) != nil {
		httputil.Error(w, http.StatusNotFound, ErrIncidentNotFound.Error())
		return "", false
	}
	return id, true
}

// parseFilter builds a listing filter from query parameters. Values
// that fail to parse are dropped rather than rejected.
func parseFilter(r *http.Request) Filter {
	filter := Filter{}
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		if status := domain.IncidentStatus(v); status.IsValid() {
			filter.Status = &status
		}
	}
	if v := q.Get("severity"); v != "" {
		if severity := domain.IncidentSeverity(v); severity.IsValid() {
			filter.Severity = &severity
		}
	}
	if v := q.Get("service_id"); v != "" {
		if uuid.Validate(v) == nil {
			filter.ServiceID = &v
		}
	}
	if v := q.Get("start_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := q.Get("end_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.EndDate = &t
		}
	}

	return filter
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrIncidentNotFound, Status: http.StatusNotFound},
		{Error: ErrUpdateNotFound, Status: http.StatusNotFound},
		{Error: ErrServiceNotFound, Status: http.StatusNotFound},
		{Error: ErrIncidentForbidden, Status: http.StatusForbidden},
		{Error: ErrUpdateForbidden, Status: http.StatusForbidden},
		{Error: ErrInvalidSeverity, Status: http.StatusBadRequest},
		{Error: ErrEmptyTitle, Status: http.StatusBadRequest},
		{Error: ErrEmptyDescription, Status: http.StatusBadRequest},
		{Error: ErrEmptyContent, Status: http.StatusBadRequest},
	})
}
