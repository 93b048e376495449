package domain

import "time"

// IncidentStatus represents the lifecycle state of an incident.
type IncidentStatus string

// Incident statuses. RESOLVED is terminal: there is no reopen
// transition, though resolving again refreshes resolved_at.
const (
	IncidentStatusOpen     IncidentStatus = "OPEN"
	IncidentStatusResolved IncidentStatus = "RESOLVED"
)

// IsValid checks if the incident status is valid.
func (s IncidentStatus) IsValid() bool {
	return s == IncidentStatusOpen || s == IncidentStatusResolved
}

// IncidentSeverity represents the impact level of an incident.
type IncidentSeverity string

// Severity levels.
const (
	SeverityLow      IncidentSeverity = "LOW"
	SeverityMedium   IncidentSeverity = "MEDIUM"
	SeverityHigh     IncidentSeverity = "HIGH"
	SeverityCritical IncidentSeverity = "CRITICAL"
)

// IsValid checks if the severity is valid.
func (s IncidentSeverity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Incident represents a tracked issue, optionally tied to a service,
// with a timeline of updates. Service, Creator and Updates are
// eager-loaded relations: a caller rendering a timeline never needs a
// second round trip.
type Incident struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Severity         IncidentSeverity `json:"severity"`
	Status           IncidentStatus   `json:"status"`
	IsPublic         bool             `json:"is_public"`
	RootCauseSummary *string          `json:"root_cause_summary"`
	ResolvedAt       *time.Time       `json:"resolved_at"`
	ServiceID        *string          `json:"service_id"`
	CreatedBy        *string          `json:"created_by"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`

	Updates []Update     `json:"updates"`
	Service *Service     `json:"service,omitempty"`
	Creator *UserSummary `json:"creator,omitempty"`
}

// Update represents a timestamped entry on an incident's timeline.
// UserID is nil for system-originated entries.
type Update struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	IncidentID string    `json:"incident_id"`
	UserID     *string   `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`

	Author *UserSummary `json:"author,omitempty"`
}
