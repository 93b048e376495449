package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/statusdesk/statusdesk/internal/domain"
	"github.com/statusdesk/statusdesk/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for the catalog module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterReadRoutes registers service read routes.
func (h *Handler) RegisterReadRoutes(r chi.Router) {
	r.Get("/services", h.ListServices)
	r.Get("/services/{id}", h.GetService)
}

// RegisterOperatorRoutes registers routes open to engineers and admins.
func (h *Handler) RegisterOperatorRoutes(r chi.Router) {
	r.Patch("/services/{id}/status", h.UpdateServiceStatus)
}

// RegisterAdminRoutes registers service management routes. Callers must
// wrap these with the ADMIN role check.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/services", h.CreateService)
	r.Patch("/services/{id}", h.UpdateService)
	r.Delete("/services/{id}", h.DeleteService)
}

// ListServices handles GET /services.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.ListServices(r.Context())
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, services)
}

// GetService handles GET /services/{id}.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	id, ok := h.serviceID(w, r)
	if !ok {
		return
	}

	service, err := h.service.GetService(r.Context(), id)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, service)
}

// CreateServiceRequest represents the request body for creating a service.
type CreateServiceRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"omitempty,oneof=UP DEGRADED DOWN"`
}

// CreateService handles POST /services.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	actor := httputil.GetActor(r.Context())

	service, err := h.service.CreateService(r.Context(), CreateServiceInput(req), actor)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, service)
}

// UpdateServiceRequest represents the request body for updating a service.
type UpdateServiceRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=UP DEGRADED DOWN"`
}

// UpdateService handles PATCH /services/{id}.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := h.serviceID(w, r)
	if !ok {
		return
	}

	var req UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	actor := httputil.GetActor(r.Context())

	service, err := h.service.UpdateService(r.Context(), id, UpdateServiceInput(req), actor)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, service)
}

// UpdateStatusRequest represents the request body for a status change.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=UP DEGRADED DOWN"`
}

// UpdateServiceStatus handles PATCH /services/{id}/status.
func (h *Handler) UpdateServiceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.serviceID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	actor := httputil.GetActor(r.Context())

	service, err := h.service.UpdateServiceStatus(r.Context(), id, domain.ServiceStatus(req.Status), actor)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, service)
}

// DeleteService handles DELETE /services/{id}.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := h.serviceID(w, r)
	if !ok {
		return
	}

	actor := httputil.GetActor(r.Context())

	if err := h.service.DeleteService(r.Context(), id, actor); err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// serviceID extracts and validates the {id} path parameter. A malformed
// ID is reported the same way as a missing service.
func (h *Handler) serviceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		httputil.Error(w, http.StatusNotFound, ErrServiceNotFound.Error())
		return "", false
	}
	return id, true
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrServiceNotFound, Status: http.StatusNotFound},
		{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
		{Error: ErrEmptyName, Status: http.StatusBadRequest},
	})
}
