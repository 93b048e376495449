// Package incidents provides HTTP handlers and business logic for the
// incident engine and its update timeline.
package incidents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/statusdesk/statusdesk/internal/catalog"
	"github.com/statusdesk/statusdesk/internal/domain"
	"github.com/google/uuid"
)

// ServiceCatalog resolves service references on incidents.
type ServiceCatalog interface {
	GetService(ctx context.Context, id string) (*domain.Service, error)
}

// AuditRecorder records incident actions into the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, metadata map[string]any)
}

// Service contains business logic for incidents and updates.
type Service struct {
	repo    Repository
	catalog ServiceCatalog
	audit   AuditRecorder
}

// NewService creates a new incidents service.
func NewService(repo Repository, catalog ServiceCatalog, audit AuditRecorder) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		audit:   audit,
	}
}

// ListIncidents retrieves incidents matching the filter. Callers
// without private visibility only ever see public incidents, whatever
// the filter says.
func (s *Service) ListIncidents(ctx context.Context, filter Filter, actor domain.Actor) ([]domain.Incident, error) {
	if !actor.CanViewPrivate() {
		filter.PublicOnly = true
	}
	return s.repo.ListIncidents(ctx, filter)
}

// GetIncident retrieves an incident by ID. Private incidents are
// rejected for callers without private visibility: the record's
// existence is not a secret, its content is.
func (s *Service) GetIncident(ctx context.Context, id string, actor domain.Actor) (*domain.Incident, error) {
	incident, err := s.repo.GetIncidentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !incident.IsPublic && !actor.CanViewPrivate() {
		return nil, ErrIncidentForbidden
	}
	return incident, nil
}

// CreateIncidentInput holds data for opening an incident.
type CreateIncidentInput struct {
	Title       string
	Description string
	Severity    string
	ServiceID   *string
	IsPublic    *bool
}

// CreateIncident opens a new incident. Severity defaults to MEDIUM and
// visibility to private.
func (s *Service) CreateIncident(ctx context.Context, input CreateIncidentInput, actor domain.Actor) (*domain.Incident, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	severity := domain.IncidentSeverity(input.Severity)
	if severity == "" {
		severity = domain.SeverityMedium
	}
	if !severity.IsValid() {
		return nil, ErrInvalidSeverity
	}

	if err := s.checkServiceRef(ctx, input.ServiceID); err != nil {
		return nil, err
	}

	isPublic := false
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	incident := &domain.Incident{
		Title:       title,
		Description: description,
		Severity:    severity,
		Status:      domain.IncidentStatusOpen,
		IsPublic:    isPublic,
		ServiceID:   input.ServiceID,
	}
	if actor.IsAuthenticated() {
		incident.CreatedBy = &actor.UserID
	}

	if err := s.repo.CreateIncident(ctx, incident); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, "INCIDENT_CREATED", "Incident", incident.ID, map[string]any{
		"title":    incident.Title,
		"severity": incident.Severity,
	})

	return s.repo.GetIncidentByID(ctx, incident.ID)
}

// UpdateIncidentInput holds data for a partial incident update. Nil
// fields are left unchanged. Status is deliberately absent: the
// lifecycle only moves through Resolve.
type UpdateIncidentInput struct {
	Title       *string
	Description *string
	Severity    *string
	ServiceID   *string
	IsPublic    *bool
}

// UpdateIncident applies a partial update to an incident.
func (s *Service) UpdateIncident(ctx context.Context, id string, input UpdateIncidentInput, actor domain.Actor) (*domain.Incident, error) {
	incident, err := s.repo.GetIncidentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := map[string]any{}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		incident.Title = title
		changed["title"] = title
	}
	if input.Description != nil {
		incident.Description = *input.Description
		changed["description"] = *input.Description
	}
	if input.Severity != nil {
		severity := domain.IncidentSeverity(*input.Severity)
		if !severity.IsValid() {
			return nil, ErrInvalidSeverity
		}
		incident.Severity = severity
		changed["severity"] = severity
	}
	if input.ServiceID != nil {
		if err := s.checkServiceRef(ctx, input.ServiceID); err != nil {
			return nil, err
		}
		incident.ServiceID = input.ServiceID
		changed["service_id"] = *input.ServiceID
	}
	if input.IsPublic != nil {
		incident.IsPublic = *input.IsPublic
		changed["is_public"] = *input.IsPublic
	}

	if err := s.repo.UpdateIncident(ctx, incident); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, "INCIDENT_UPDATED", "Incident", incident.ID, changed)

	return s.repo.GetIncidentByID(ctx, incident.ID)
}

// ResolveIncident marks an incident resolved. Resolving an already
// resolved incident is allowed and refreshes the resolution timestamp.
func (s *Service) ResolveIncident(ctx context.Context, id string, rootCauseSummary *string, actor domain.Actor) (*domain.Incident, error) {
	incident, err := s.repo.GetIncidentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	incident.Status = domain.IncidentStatusResolved
	incident.ResolvedAt = &now
	if rootCauseSummary != nil {
		incident.RootCauseSummary = rootCauseSummary
	}

	if err := s.repo.UpdateIncident(ctx, incident); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, "INCIDENT_RESOLVED", "Incident", incident.ID, map[string]any{
		"title": incident.Title,
	})

	return s.repo.GetIncidentByID(ctx, incident.ID)
}

// TogglePublish flips an incident's visibility, or sets it explicitly
// when a value is given.
func (s *Service) TogglePublish(ctx context.Context, id string, isPublic *bool, actor domain.Actor) (*domain.Incident, error) {
	incident, err := s.repo.GetIncidentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if isPublic != nil {
		incident.IsPublic = *isPublic
	} else {
		incident.IsPublic = !incident.IsPublic
	}

	if err := s.repo.UpdateIncident(ctx, incident); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, "INCIDENT_PUBLISH_TOGGLED", "Incident", incident.ID, map[string]any{
		"is_public": incident.IsPublic,
	})

	return s.repo.GetIncidentByID(ctx, incident.ID)
}

// DeleteIncident removes an incident. Its updates go with it.
func (s *Service) DeleteIncident(ctx context.Context, id string, actor domain.Actor) error {
	incident, err := s.repo.GetIncidentByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteIncident(ctx, id); err != nil {
		return err
	}

	s.recordAudit(ctx, actor, "INCIDENT_DELETED", "Incident", id, map[string]any{
		"title": incident.Title,
	})

	return nil
}

// AddUpdate appends a timeline entry through the incident-scoped route.
func (s *Service) AddUpdate(ctx context.Context, incidentID, content string, actor domain.Actor) (*domain.Update, error) {
	return s.createUpdate(ctx, incidentID, content, actor, "INCIDENT_UPDATE_ADDED", "Incident", incidentID)
}

// CreateUpdate appends a timeline entry through the standalone route.
func (s *Service) CreateUpdate(ctx context.Context, incidentID, content string, actor domain.Actor) (*domain.Update, error) {
	return s.createUpdate(ctx, incidentID, content, actor, "UPDATE_CREATED", "Update", "")
}

func (s *Service) createUpdate(ctx context.Context, incidentID, content string, actor domain.Actor, action, entityType, entityID string) (*domain.Update, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	if _, err := s.repo.GetIncidentByID(ctx, incidentID); err != nil {
		return nil, err
	}

	update := &domain.Update{
		Content:    content,
		IncidentID: incidentID,
	}
	if actor.IsAuthenticated() {
		update.UserID = &actor.UserID
	}

	if err := s.repo.CreateUpdate(ctx, update); err != nil {
		return nil, err
	}

	if entityID == "" {
		entityID = update.ID
	}
	s.recordAudit(ctx, actor, action, entityType, entityID, map[string]any{
		"incident_id": incidentID,
		"update_id":   update.ID,
	})

	return s.repo.GetUpdateByID(ctx, update.ID)
}

// ListUpdates returns an incident's timeline. The visibility rules of
// the incident apply to its updates too.
func (s *Service) ListUpdates(ctx context.Context, incidentID string, actor domain.Actor, descending bool) ([]domain.Update, error) {
	if _, err := s.GetIncident(ctx, incidentID, actor); err != nil {
		return nil, err
	}
	return s.repo.ListUpdatesByIncident(ctx, incidentID, descending)
}

// DeleteUpdate removes a timeline entry. Only the author or an admin
// may do so.
func (s *Service) DeleteUpdate(ctx context.Context, id string, actor domain.Actor) error {
	update, err := s.repo.GetUpdateByID(ctx, id)
	if err != nil {
		return err
	}

	if actor.Role != domain.RoleAdmin {
		if update.UserID == nil || *update.UserID != actor.UserID {
			return ErrUpdateForbidden
		}
	}

	if err := s.repo.DeleteUpdate(ctx, id); err != nil {
		return err
	}

	s.recordAudit(ctx, actor, "UPDATE_DELETED", "Update", id, map[string]any{
		"incident_id": update.IncidentID,
	})

	return nil
}

// checkServiceRef verifies that a referenced service exists. A
// malformed ID is treated the same as an unknown one.
func (s *Service) checkServiceRef(ctx context.Context, serviceID *string) error {
	if serviceID == nil {
		return nil
	}
	if uuid.Validate(*serviceID) != nil {
		return ErrServiceNotFound
	}
	if _, err := s.catalog.GetService(ctx, *serviceID); err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return ErrServiceNotFound
		}
		return fmt.Errorf("check service reference: %w", err)
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor domain.Actor, action, entityType, entityID string, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, actor.UserID, action, entityType, entityID, metadata)
}
