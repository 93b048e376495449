// Package identity provides registration, authentication, and user
// administration.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/statusdesk/statusdesk/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator issues and validates access tokens.
type Authenticator interface {
	GenerateToken(ctx context.Context, user *domain.User) (string, error)
	ValidateToken(ctx context.Context, token string) (domain.Actor, error)
}

// AuditRecorder records mutations to the audit trail. Implementations
// are best-effort and never fail the calling operation.
type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, metadata map[string]any)
}

// Service implements identity business logic.
type Service struct {
	repo  Repository
	auth  Authenticator
	audit AuditRecorder
}

// NewService creates a new identity service.
func NewService(repo Repository, auth Authenticator, audit AuditRecorder) *Service {
	return &Service{
		repo:  repo,
		auth:  auth,
		audit: audit,
	}
}

// RegisterInput holds data for registering a user. Role is honored only
// when the requester is an authenticated admin.
type RegisterInput struct {
	Email    string
	Password string
	Role     string
}

// Register creates a new user and issues an access token.
//
// The very first user ever registered becomes ADMIN regardless of the
// requested role: no admin exists yet who could authorize the
// elevation. Everyone after that defaults to VIEWER unless the
// requester is an authenticated ADMIN assigning an explicit role.
func (s *Service) Register(ctx context.Context, input RegisterInput, requester domain.Actor) (*domain.User, string, error) {
	if _, err := s.repo.GetUserByEmail(ctx, input.Email); err == nil {
		return nil, "", ErrEmailExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, "", fmt.Errorf("check existing user: %w", err)
	}

	role, err := s.resolveRole(ctx, input.Role, requester)
	if err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	s.recordAudit(ctx, user.ID, "USER_REGISTERED", user.ID, map[string]any{
		"email": user.Email,
		"role":  user.Role,
	})

	token, err := s.auth.GenerateToken(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

func (s *Service) resolveRole(ctx context.Context, requested string, requester domain.Actor) (domain.Role, error) {
	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return "", fmt.Errorf("count users: %w", err)
	}
	if count == 0 {
		return domain.RoleAdmin, nil
	}

	if requested == "" || requester.Role != domain.RoleAdmin {
		return domain.RoleViewer, nil
	}

	role := domain.Role(requested)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	s.recordAudit(ctx, user.ID, "USER_LOGIN", user.ID, map[string]any{
		"email": user.Email,
	})

	token, err := s.auth.GenerateToken(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// GetUserByID retrieves a user by ID.
func (s *Service) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// ListUsers retrieves all users, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

// UpdateUserRole changes a user's role.
func (s *Service) UpdateUserRole(ctx context.Context, id string, role domain.Role, actor domain.Actor) (*domain.User, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	existing, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldRole := existing.Role

	user, err := s.repo.UpdateUserRole(ctx, id, role)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor.UserID, "USER_ROLE_UPDATED", user.ID, map[string]any{
		"old_role": oldRole,
		"new_role": role,
	})

	return user, nil
}

// DeleteUser removes a user. Self-deletion is always rejected,
// regardless of role.
func (s *Service) DeleteUser(ctx context.Context, id string, actor domain.Actor) error {
	if id == actor.UserID {
		return ErrSelfDeletion
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.recordAudit(ctx, actor.UserID, "USER_DELETED", id, map[string]any{
		"email": user.Email,
	})

	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID, action, entityID string, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, actorID, action, "User", entityID, metadata)
}
