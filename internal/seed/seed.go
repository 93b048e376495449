// Package seed loads a demo dataset into an empty database so a fresh
// deployment has accounts, services and incident history to explore.
// It refuses to touch a database that already has users.
package seed

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/statusdesk/statusdesk/internal/domain"
	"github.com/statusdesk/statusdesk/internal/pkg/ctxlog"
)

// UserStore is the slice of user storage the seeder needs.
type UserStore interface {
	CountUsers(ctx context.Context) (int, error)
	CreateUser(ctx context.Context, user *domain.User) error
}

// ServiceStore is the slice of service storage the seeder needs.
type ServiceStore interface {
	CreateService(ctx context.Context, service *domain.Service) error
}

// IncidentStore is the slice of incident storage the seeder needs.
// UpdateIncident is used to backfill resolution timestamps, which the
// insert path does not accept.
type IncidentStore interface {
	CreateIncident(ctx context.Context, incident *domain.Incident) error
	UpdateIncident(ctx context.Context, incident *domain.Incident) error
	CreateUpdate(ctx context.Context, update *domain.Update) error
}

// Seeder writes the demo dataset through the regular repositories.
type Seeder struct {
	users     UserStore
	services  ServiceStore
	incidents IncidentStore
}

func New(users UserStore, services ServiceStore, incidents IncidentStore) *Seeder {
	return &Seeder{users: users, services: services, incidents: incidents}
}

type demoUser struct {
	email    string
	password string
	role     domain.Role
}

type demoService struct {
	name        string
	description string
	status      domain.ServiceStatus
}

type demoIncident struct {
	title       string
	description string
	severity    domain.IncidentSeverity
	isPublic    bool
	service     string // demo service name
	createdBy   string // demo user email
	resolvedAgo time.Duration
	updates     []demoUpdate
}

type demoUpdate struct {
	content string
	author  string // demo user email
}

var demoUsers = []demoUser{
	{email: "admin@statusdesk.local", password: "admin123", role: domain.RoleAdmin},
	{email: "engineer1@statusdesk.local", password: "engineer123", role: domain.RoleEngineer},
	{email: "engineer2@statusdesk.local", password: "engineer123", role: domain.RoleEngineer},
	{email: "viewer@statusdesk.local", password: "viewer123", role: domain.RoleViewer},
}

var demoServices = []demoService{
	{name: "API Gateway", description: "Routes and authenticates all inbound API traffic", status: domain.ServiceStatusUp},
	{name: "Authentication Service", description: "Issues and validates user sessions", status: domain.ServiceStatusUp},
	{name: "Database Cluster", description: "Primary PostgreSQL cluster with read replicas", status: domain.ServiceStatusUp},
	{name: "CDN Network", description: "Edge caching for static assets", status: domain.ServiceStatusDegraded},
	{name: "Email Service", description: "Transactional email delivery", status: domain.ServiceStatusUp},
	{name: "Payment Gateway", description: "Card and wallet payment processing", status: domain.ServiceStatusUp},
	{name: "Analytics Engine", description: "Event ingestion and reporting pipeline", status: domain.ServiceStatusDegraded},
}

var demoIncidents = []demoIncident{
	{
		title:       "High CPU usage on API Gateway",
		description: "Gateway nodes are running hot and request latency is climbing.",
		severity:    domain.SeverityHigh,
		isPublic:    true,
		service:     "API Gateway",
		createdBy:   "engineer1@statusdesk.local",
		updates: []demoUpdate{
			{content: "Investigating elevated CPU across all gateway nodes.", author: "engineer1@statusdesk.local"},
			{content: "Identified a retry storm from a misbehaving client; applying throttling.", author: "engineer1@statusdesk.local"},
		},
	},
	{
		title:       "CDN performance degradation",
		description: "Cache hit ratio dropped in the EU region, asset load times doubled.",
		severity:    domain.SeverityMedium,
		isPublic:    true,
		service:     "CDN Network",
		createdBy:   "engineer2@statusdesk.local",
		updates: []demoUpdate{
			{content: "Working with the CDN provider on the EU edge degradation.", author: "engineer2@statusdesk.local"},
		},
	},
	{
		title:       "Scheduled database maintenance",
		description: "Planned failover exercise on the primary cluster this weekend.",
		severity:    domain.SeverityLow,
		isPublic:    true,
		service:     "Database Cluster",
		createdBy:   "admin@statusdesk.local",
		updates: []demoUpdate{
			{content: "Maintenance window confirmed for Saturday 02:00 UTC.", author: "engineer2@statusdesk.local"},
		},
	},
	{
		title:       "Payment gateway intermittent errors",
		description: "A subset of card payments failed with upstream timeouts.",
		severity:    domain.SeverityCritical,
		isPublic:    true,
		service:     "Payment Gateway",
		createdBy:   "engineer1@statusdesk.local",
		resolvedAgo: 2 * time.Hour,
		updates: []demoUpdate{
			{content: "Upstream processor acknowledged the outage on their side.", author: "engineer1@statusdesk.local"},
			{content: "Processor recovered, failed payments are being retried automatically.", author: "engineer1@statusdesk.local"},
		},
	},
	{
		title:       "Internal rate limiting misconfiguration",
		description: "A deploy shipped overly aggressive limits for internal callers.",
		severity:    domain.SeverityMedium,
		isPublic:    false,
		service:     "API Gateway",
		createdBy:   "admin@statusdesk.local",
		resolvedAgo: 5 * 24 * time.Hour,
		updates: []demoUpdate{
			{content: "Rolled back the limiter config, internal traffic is healthy again.", author: "engineer2@statusdesk.local"},
		},
	},
}

// Run inserts the demo dataset. It is a no-op when any user already
// exists, so running it against a live database is safe.
func (s *Seeder) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		logger.Info("database already has users, skipping demo seed", "users", count)
		return nil
	}

	userIDs := make(map[string]string, len(demoUsers))
	for _, du := range demoUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(du.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", du.email, err)
		}
		user := &domain.User{Email: du.email, PasswordHash: string(hash), Role: du.role}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("create user %s: %w", du.email, err)
		}
		userIDs[du.email] = user.ID
	}
	logger.Info("seeded demo users", "count", len(demoUsers))

	serviceIDs := make(map[string]string, len(demoServices))
	for _, ds := range demoServices {
		service := &domain.Service{Name: ds.name, Description: ds.description, Status: ds.status}
		if err := s.services.CreateService(ctx, service); err != nil {
			return fmt.Errorf("create service %q: %w", ds.name, err)
		}
		serviceIDs[ds.name] = service.ID
	}
	logger.Info("seeded demo services", "count", len(demoServices))

	updateCount := 0
	for _, di := range demoIncidents {
		serviceID := serviceIDs[di.service]
		creatorID := userIDs[di.createdBy]
		incident := &domain.Incident{
			Title:       di.title,
			Description: di.description,
			Severity:    di.severity,
			Status:      domain.IncidentStatusOpen,
			IsPublic:    di.isPublic,
			ServiceID:   &serviceID,
			CreatedBy:   &creatorID,
		}
		if err := s.incidents.CreateIncident(ctx, incident); err != nil {
			return fmt.Errorf("create incident %q: %w", di.title, err)
		}
		if di.resolvedAgo > 0 {
			resolvedAt := time.Now().Add(-di.resolvedAgo)
			incident.Status = domain.IncidentStatusResolved
			incident.ResolvedAt = &resolvedAt
			if err := s.incidents.UpdateIncident(ctx, incident); err != nil {
				return fmt.Errorf("mark incident %q resolved: %w", di.title, err)
			}
		}
		for _, du := range di.updates {
			authorID := userIDs[du.author]
			update := &domain.Update{
				Content:    du.content,
				IncidentID: incident.ID,
				UserID:     &authorID,
			}
			if err := s.incidents.CreateUpdate(ctx, update); err != nil {
				return fmt.Errorf("create update on %q: %w", di.title, err)
			}
			updateCount++
		}
	}
	logger.Info("seeded demo incidents", "incidents", len(demoIncidents), "updates", updateCount)

	return nil
}
