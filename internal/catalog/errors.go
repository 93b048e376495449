package catalog

import "errors"

// Catalog domain errors.
var (
	ErrServiceNotFound = errors.New("service not found")
	ErrInvalidStatus   = errors.New("invalid service status")
	ErrEmptyName       = errors.New("service name must not be empty")
)
