package incidents

import "errors"

// Incident domain errors.
var (
	ErrIncidentNotFound  = errors.New("incident not found")
	ErrIncidentForbidden = errors.New("incident is not public")
	ErrUpdateNotFound    = errors.New("update not found")
	ErrUpdateForbidden   = errors.New("update can only be deleted by its author or an admin")
	ErrServiceNotFound   = errors.New("service not found")
	ErrInvalidSeverity   = errors.New("invalid severity")
	ErrEmptyTitle        = errors.New("incident title must not be empty")
	ErrEmptyDescription  = errors.New("incident description must not be empty")
	ErrEmptyContent      = errors.New("update content must not be empty")
)
