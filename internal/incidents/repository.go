package incidents

import (
	"context"
	"time"

	"github.com/statusdesk/statusdesk/internal/domain"
)

// Repository defines the interface for incident and update storage.
type Repository interface {
	CreateIncident(ctx context.Context, incident *domain.Incident) error
	GetIncidentByID(ctx context.Context, id string) (*domain.Incident, error)
	ListIncidents(ctx context.Context, filter Filter) ([]domain.Incident, error)
	UpdateIncident(ctx context.Context, incident *domain.Incident) error
	DeleteIncident(ctx context.Context, id string) error

	CreateUpdate(ctx context.Context, update *domain.Update) error
	GetUpdateByID(ctx context.Context, id string) (*domain.Update, error)
	ListUpdatesByIncident(ctx context.Context, incidentID string, descending bool) ([]domain.Update, error)
	DeleteUpdate(ctx context.Context, id string) error
}

// Filter represents combinable criteria for listing incidents.
// PublicOnly is forced for callers without private visibility.
type Filter struct {
	Status     *domain.IncidentStatus
	Severity   *domain.IncidentSeverity
	ServiceID  *string
	StartDate  *time.Time
	EndDate    *time.Time
	PublicOnly bool
}
