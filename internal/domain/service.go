package domain

import "time"

// ServiceStatus represents the health of a monitored service.
type ServiceStatus string

// Service statuses.
const (
	ServiceStatusUp       ServiceStatus = "UP"
	ServiceStatusDegraded ServiceStatus = "DEGRADED"
	ServiceStatusDown     ServiceStatus = "DOWN"
)

// IsValid checks if the service status is valid.
func (s ServiceStatus) IsValid() bool {
	switch s {
	case ServiceStatusUp, ServiceStatusDegraded, ServiceStatusDown:
		return true
	}
	return false
}

// Service represents a monitored system component.
type Service struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ServiceStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
