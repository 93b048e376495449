// Package postgres provides the PostgreSQL implementation of the incidents repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/statusdesk/statusdesk/internal/domain"
	"github.com/statusdesk/statusdesk/internal/incidents"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements incidents.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const incidentColumns = `
	i.id, i.title, i.description, i.severity, i.status, i.is_public,
	i.root_cause_summary, i.resolved_at, i.service_id, i.created_by,
	i.created_at, i.updated_at,
	s.id, s.name, s.description, s.status, s.created_at, s.updated_at,
	u.id, u.email, u.role
`

const incidentJoins = `
	FROM incidents i
	LEFT JOIN services s ON s.id = i.service_id
	LEFT JOIN users u ON u.id = i.created_by
`

// CreateIncident inserts a new incident.
func (r *Repository) CreateIncident(ctx context.Context, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (title, description, severity, status, is_public, service_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		incident.Title,
		incident.Description,
		incident.Severity,
		incident.Status,
		incident.IsPublic,
		incident.ServiceID,
		incident.CreatedBy,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// GetIncidentByID retrieves an incident with its service, creator and
// chronological update timeline.
func (r *Repository) GetIncidentByID(ctx context.Context, id string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + incidentJoins + ` WHERE i.id = $1`

	row := r.db.QueryRow(ctx, query, id)
	incident, err := scanIncident(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident: %w", err)
	}

	updates, err := r.ListUpdatesByIncident(ctx, id, false)
	if err != nil {
		return nil, err
	}
	incident.Updates = updates

	return incident, nil
}

// ListIncidents retrieves incidents matching the filter, newest first.
// Updates for the whole page are loaded in one extra query.
func (r *Repository) ListIncidents(ctx context.Context, filter incidents.Filter) ([]domain.Incident, error) {
	query := `SELECT ` + incidentColumns + incidentJoins + ` WHERE 1=1`

	args := []interface{}{}
	argNum := 1

	if filter.PublicOnly {
		query += " AND i.is_public = TRUE"
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND i.status = $%d", argNum)
		args = append(args, *filter.Status)
		argNum++
	}
	if filter.Severity != nil {
		query += fmt.Sprintf(" AND i.severity = $%d", argNum)
		args = append(args, *filter.Severity)
		argNum++
	}
	if filter.ServiceID != nil {
		query += fmt.Sprintf(" AND i.service_id = $%d", argNum)
		args = append(args, *filter.ServiceID)
		argNum++
	}
	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND i.created_at >= $%d", argNum)
		args = append(args, *filter.StartDate)
		argNum++
	}
	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND i.created_at <= $%d", argNum)
		args = append(args, *filter.EndDate)
		argNum++
	}

	query += " ORDER BY i.created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Incident, 0)
	ids := make([]string, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		result = append(result, *incident)
		ids = append(ids, incident.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}

	if len(ids) == 0 {
		return result, nil
	}

	updatesByIncident, err := r.listUpdatesForIncidents(ctx, ids)
	if err != nil {
		return nil, err
	}
	for idx := range result {
		updates := updatesByIncident[result[idx].ID]
		if updates == nil {
			updates = make([]domain.Update, 0)
		}
		result[idx].Updates = updates
	}

	return result, nil
}

// UpdateIncident persists all mutable fields of an incident.
func (r *Repository) UpdateIncident(ctx context.Context, incident *domain.Incident) error {
	query := `
		UPDATE incidents
		SET title = $1, description = $2, severity = $3, status = $4,
		    is_public = $5, root_cause_summary = $6, resolved_at = $7,
		    service_id = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		incident.Title,
		incident.Description,
		incident.Severity,
		incident.Status,
		incident.IsPublic,
		incident.RootCauseSummary,
		incident.ResolvedAt,
		incident.ServiceID,
		incident.ID,
	).Scan(&incident.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return incidents.ErrIncidentNotFound
		}
		return fmt.Errorf("update incident: %w", err)
	}
	return nil
}

// DeleteIncident removes an incident. Updates go with it via the
// ON DELETE CASCADE constraint.
func (r *Repository) DeleteIncident(ctx context.Context, id string) error {
	query := `DELETE FROM incidents WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return incidents.ErrIncidentNotFound
	}
	return nil
}

// CreateUpdate inserts a new timeline entry.
func (r *Repository) CreateUpdate(ctx context.Context, update *domain.Update) error {
	query := `
		INSERT INTO updates (content, incident_id, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		update.Content,
		update.IncidentID,
		update.UserID,
	).Scan(&update.ID, &update.CreatedAt)

	if err != nil {
		return fmt.Errorf("create update: %w", err)
	}
	return nil
}

const updateColumns = `
	up.id, up.content, up.incident_id, up.user_id, up.created_at,
	u.id, u.email, u.role
`

const updateJoins = `
	FROM updates up
	LEFT JOIN users u ON u.id = up.user_id
`

// GetUpdateByID retrieves a single timeline entry with its author.
func (r *Repository) GetUpdateByID(ctx context.Context, id string) (*domain.Update, error) {
	query := `SELECT ` + updateColumns + updateJoins + ` WHERE up.id = $1`

	update, err := scanUpdate(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrUpdateNotFound
		}
		return nil, fmt.Errorf("get update: %w", err)
	}
	return update, nil
}

// ListUpdatesByIncident retrieves an incident's timeline, oldest first
// unless descending is set.
func (r *Repository) ListUpdatesByIncident(ctx context.Context, incidentID string, descending bool) ([]domain.Update, error) {
	order := "ASC"
	if descending {
		order = "DESC"
	}
	query := `SELECT ` + updateColumns + updateJoins + ` WHERE up.incident_id = $1 ORDER BY up.created_at ` + order

	rows, err := r.db.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}
	defer rows.Close()

	updates := make([]domain.Update, 0)
	for rows.Next() {
		update, err := scanUpdate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan update: %w", err)
		}
		updates = append(updates, *update)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate updates: %w", err)
	}

	return updates, nil
}

// DeleteUpdate removes a timeline entry.
func (r *Repository) DeleteUpdate(ctx context.Context, id string) error {
	query := `DELETE FROM updates WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return incidents.ErrUpdateNotFound
	}
	return nil
}

// listUpdatesForIncidents loads the timelines of several incidents in
// one query, chronological within each incident.
func (r *Repository) listUpdatesForIncidents(ctx context.Context, incidentIDs []string) (map[string][]domain.Update, error) {
	query := `SELECT ` + updateColumns + updateJoins + ` WHERE up.incident_id = ANY($1) ORDER BY up.created_at ASC`

	rows, err := r.db.Query(ctx, query, incidentIDs)
	if err != nil {
		return nil, fmt.Errorf("list updates for incidents: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]domain.Update)
	for rows.Next() {
		update, err := scanUpdate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan update: %w", err)
		}
		grouped[update.IncidentID] = append(grouped[update.IncidentID], *update)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate updates: %w", err)
	}

	return grouped, nil
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var incident domain.Incident

	var svcID, svcName, svcDescription *string
	var svcStatus *domain.ServiceStatus
	var svcCreatedAt, svcUpdatedAt *time.Time

	var creatorID, creatorEmail *string
	var creatorRole *domain.Role

	err := row.Scan(
		&incident.ID,
		&incident.Title,
		&incident.Description,
		&incident.Severity,
		&incident.Status,
		&incident.IsPublic,
		&incident.RootCauseSummary,
		&incident.ResolvedAt,
		&incident.ServiceID,
		&incident.CreatedBy,
		&incident.CreatedAt,
		&incident.UpdatedAt,
		&svcID,
		&svcName,
		&svcDescription,
		&svcStatus,
		&svcCreatedAt,
		&svcUpdatedAt,
		&creatorID,
		&creatorEmail,
		&creatorRole,
	)
	if err != nil {
		return nil, err
	}

	if svcID != nil {
		incident.Service = &domain.Service{
			ID:          *svcID,
			Name:        *svcName,
			Description: *svcDescription,
			Status:      *svcStatus,
			CreatedAt:   *svcCreatedAt,
			UpdatedAt:   *svcUpdatedAt,
		}
	}
	if creatorID != nil {
		incident.Creator = &domain.UserSummary{
			ID:    *creatorID,
			Email: *creatorEmail,
			Role:  *creatorRole,
		}
	}
	incident.Updates = make([]domain.Update, 0)

	return &incident, nil
}

func scanUpdate(row pgx.Row) (*domain.Update, error) {
	var update domain.Update

	var authorID, authorEmail *string
	var authorRole *domain.Role

	err := row.Scan(
		&update.ID,
		&update.Content,
		&update.IncidentID,
		&update.UserID,
		&update.CreatedAt,
		&authorID,
		&authorEmail,
		&authorRole,
	)
	if err != nil {
		return nil, err
	}

	if authorID != nil {
		update.Author = &domain.UserSummary{
			ID:    *authorID,
			Email: *authorEmail,
			Role:  *authorRole,
		}
	}

	return &update, nil
}
