// Package postgres provides the PostgreSQL implementation of the audit repository.
package postgres

import (
	"context"
	"fmt"

	"github.com/statusdesk/statusdesk/internal/audit"
	"github.com/statusdesk/statusdesk/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements audit.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert appends a new audit log entry.
func (r *Repository) Insert(ctx context.Context, entry *domain.AuditLog) error {
	query := `
		INSERT INTO audit_logs (actor_id, action, entity_type, entity_id, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		entry.ActorID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Metadata,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List retrieves audit entries matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter audit.Filter) ([]domain.AuditLog, error) {
	query := `
		SELECT id, actor_id, action, entity_type, entity_id, metadata, created_at
		FROM audit_logs
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.EntityType != nil {
		query += fmt.Sprintf(" AND entity_type = $%d", argNum)
		args = append(args, *filter.EntityType)
		argNum++
	}

	if filter.EntityID != nil {
		query += fmt.Sprintf(" AND entity_id = $%d", argNum)
		args = append(args, *filter.EntityID)
		argNum++
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = audit.DefaultListLimit
	}
	query += fmt.Sprintf(" LIMIT $%d", argNum)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0)
	for rows.Next() {
		var entry domain.AuditLog
		err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Metadata,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}

	return logs, nil
}
