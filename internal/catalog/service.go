// Package catalog provides HTTP handlers and business logic for the
// service registry.
package catalog

import (
	"context"
	"strings"

	"github.com/statusdesk/statusdesk/internal/domain"
)

// AuditRecorder records catalog actions into the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, metadata map[string]any)
}

// Service contains business logic for the service catalog.
type Service struct {
	repo  Repository
	audit AuditRecorder
}

// NewService creates a new catalog service.
func NewService(repo Repository, audit AuditRecorder) *Service {
	return &Service{
		repo:  repo,
		audit: audit,
	}
}

// ListServices retrieves all services, newest first.
func (s *Service) ListServices(ctx context.Context) ([]domain.Service, error) {
	return s.repo.ListServices(ctx)
}

// GetService retrieves a service by ID.
func (s *Service) GetService(ctx context.Context, id string) (*domain.Service, error) {
	return s.repo.GetServiceByID(ctx, id)
}

// CreateServiceInput holds data for creating a service.
type CreateServiceInput struct {
	Name        string
	Description string
	Status      string
}

// CreateService registers a new service. Status defaults to UP when
// omitted.
func (s *Service) CreateService(ctx context.Context, input CreateServiceInput, actor domain.Actor) (*domain.Service, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	status := domain.ServiceStatus(input.Status)
	if status == "" {
		status = domain.ServiceStatusUp
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	service := &domain.Service{
		Name:        name,
		Description: input.Description,
		Status:      status,
	}

	if err := s.repo.CreateService(ctx, service); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, "SERVICE_CREATED", service.ID, map[string]any{
		"name":   service.Name,
		"status": service.Status,
	})

	return service, nil
}

// UpdateServiceInput holds data for a partial service update. Nil
// fields are left unchanged.
type UpdateServiceInput struct {
	Name        *string
	Description *string
	Status      *string
}

// UpdateService applies a partial update to a service.
func (s *Service) UpdateService(ctx context.Context, id string, input UpdateServiceInput, actor domain.Actor) (*domain.Service, error) {
	service, err := s.repo.GetServiceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := map[string]any{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		service.Name = name
		changed["name"] = name
	}
	if input.Description != nil {
		service.Description = *input.Description
		changed["description"] = *input.Description
	}
	if input.Status != nil {
		status := domain.ServiceStatus(*input.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		service.Status = status
		changed["status"] = status
	}

	if err := s.repo.UpdateService(ctx, service); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, "SERVICE_UPDATED", service.ID, changed)

	return service, nil
}

// UpdateServiceStatus changes only the status of a service. Unlike the
// full update, this operation is open to engineers.
func (s *Service) UpdateServiceStatus(ctx context.Context, id string, status domain.ServiceStatus, actor domain.Actor) (*domain.Service, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	existing, err := s.repo.GetServiceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldStatus := existing.Status

	service, err := s.repo.UpdateServiceStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, "SERVICE_STATUS_UPDATED", service.ID, map[string]any{
		"old_status": oldStatus,
		"new_status": status,
	})

	return service, nil
}

// DeleteService removes a service. Incidents that referenced it are
// kept and detached at the storage layer.
func (s *Service) DeleteService(ctx context.Context, id string, actor domain.Actor) error {
	service, err := s.repo.GetServiceByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteService(ctx, id); err != nil {
		return err
	}

	s.recordAudit(ctx, actor, "SERVICE_DELETED", id, map[string]any{
		"name": service.Name,
	})

	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor domain.Actor, action, entityID string, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, actor.UserID, action, "Service", entityID, metadata)
}
