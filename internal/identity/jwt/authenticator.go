// Package jwt provides JWT-based token issuance and validation.
package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/statusdesk/statusdesk/internal/domain"
	"github.com/statusdesk/statusdesk/internal/identity"
	"github.com/golang-jwt/jwt/v5"
)

// Config contains JWT authenticator configuration.
type Config struct {
	SecretKey           string
	AccessTokenDuration time.Duration
}

// Authenticator issues and validates HS256-signed access tokens.
type Authenticator struct {
	secretKey           []byte
	accessTokenDuration time.Duration
}

// NewAuthenticator creates a new JWT authenticator.
func NewAuthenticator(cfg Config) *Authenticator {
	return &Authenticator{
		secretKey:           []byte(cfg.SecretKey),
		accessTokenDuration: cfg.AccessTokenDuration,
	}
}

type claims struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed access token for the user.
func (a *Authenticator) GenerateToken(_ context.Context, user *domain.User) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.accessTokenDuration)),
		},
	})

	signed, err := token.SignedString(a.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning the identity it
// carries.
func (a *Authenticator) ValidateToken(_ context.Context, tokenString string) (domain.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secretKey, nil
	})
	if err != nil || !token.Valid {
		return domain.Actor{}, identity.ErrInvalidToken
	}

	c, ok := token.Claims.(*claims)
	if !ok || c.UserID == "" || !c.Role.IsValid() {
		return domain.Actor{}, identity.ErrInvalidToken
	}

	return domain.Actor{
		UserID: c.UserID,
		Email:  c.Email,
		Role:   c.Role,
	}, nil
}
