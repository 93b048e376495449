// Package postgres provides the PostgreSQL implementation of the catalog repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/statusdesk/statusdesk/internal/catalog"
	"github.com/statusdesk/statusdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements catalog.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateService inserts a new service.
func (r *Repository) CreateService(ctx context.Context, service *domain.Service) error {
	query := `
		INSERT INTO services (name, description, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		service.Name,
		service.Description,
		service.Status,
	).Scan(&service.ID, &service.CreatedAt, &service.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}

// GetServiceByID retrieves a service by ID.
func (r *Repository) GetServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	query := `
		SELECT id, name, description, status, created_at, updated_at
		FROM services
		WHERE id = $1
	`
	var service domain.Service
	err := r.db.QueryRow(ctx, query, id).Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Status,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return &service, nil
}

// ListServices retrieves all services, newest first.
func (r *Repository) ListServices(ctx context.Context) ([]domain.Service, error) {
	query := `
		SELECT id, name, description, status, created_at, updated_at
		FROM services
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	services := make([]domain.Service, 0)
	for rows.Next() {
		var service domain.Service
		err := rows.Scan(
			&service.ID,
			&service.Name,
			&service.Description,
			&service.Status,
			&service.CreatedAt,
			&service.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, service)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	return services, nil
}

// UpdateService persists all mutable fields of a service.
func (r *Repository) UpdateService(ctx context.Context, service *domain.Service) error {
	query := `
		UPDATE services
		SET name = $1, description = $2, status = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		service.Name,
		service.Description,
		service.Status,
		service.ID,
	).Scan(&service.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.ErrServiceNotFound
		}
		return fmt.Errorf("update service: %w", err)
	}
	return nil
}

// UpdateServiceStatus changes only the status of a service.
func (r *Repository) UpdateServiceStatus(ctx context.Context, id string, status domain.ServiceStatus) (*domain.Service, error) {
	query := `
		UPDATE services
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, name, description, status, created_at, updated_at
	`
	var service domain.Service
	err := r.db.QueryRow(ctx, query, status, id).Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Status,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("update service status: %w", err)
	}
	return &service, nil
}

// DeleteService removes a service. Incidents referencing it are
// detached by the ON DELETE SET NULL constraint.
func (r *Repository) DeleteService(ctx context.Context, id string) error {
	query := `DELETE FROM services WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrServiceNotFound
	}
	return nil
}
