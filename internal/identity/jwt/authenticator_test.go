package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/statusdesk/statusdesk/internal/domain"
	"github.com/statusdesk/statusdesk/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(ttl time.Duration) *Authenticator {
	return NewAuthenticator(Config{
		SecretKey:           "test-secret-key",
		AccessTokenDuration: ttl,
	})
}

func TestAuthenticator_GenerateAndValidate(t *testing.T) {
	// Arrange
	auth := newTestAuthenticator(time.Hour)
	user := &domain.User{
		ID:    "7d4e2c1a-1111-2222-3333-444455556666",
		Email: "admin@example.com",
		Role:  domain.RoleAdmin,
	}

	// Act
	token, err := auth.GenerateToken(context.Background(), user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	actor, err := auth.ValidateToken(context.Background(), token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.UserID)
	assert.Equal(t, user.Email, actor.Email)
	assert.Equal(t, domain.RoleAdmin, actor.Role)
}

func TestAuthenticator_ValidateToken_Expired(t *testing.T) {
	// Arrange
	auth := newTestAuthenticator(-time.Minute)
	user := &domain.User{ID: "u1", Email: "u@example.com", Role: domain.RoleViewer}

	token, err := auth.GenerateToken(context.Background(), user)
	require.NoError(t, err)

	// Act
	_, err = auth.ValidateToken(context.Background(), token)

	// Assert
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestAuthenticator_ValidateToken_WrongSecret(t *testing.T) {
	// Arrange
	issuer := newTestAuthenticator(time.Hour)
	verifier := NewAuthenticator(Config{
		SecretKey:           "another-secret",
		AccessTokenDuration: time.Hour,
	})
	user := &domain.User{ID: "u1", Email: "u@example.com", Role: domain.RoleEngineer}

	token, err := issuer.GenerateToken(context.Background(), user)
	require.NoError(t, err)

	// Act
	_, err = verifier.ValidateToken(context.Background(), token)

	// Assert
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestAuthenticator_ValidateToken_Garbage(t *testing.T) {
	auth := newTestAuthenticator(time.Hour)

	_, err := auth.ValidateToken(context.Background(), "not.a.token")

	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}
