package domain

import "time"

// Role defines the privilege tier of a user.
type Role string

// Roles, ordered by privilege: VIEWER < ENGINEER < ADMIN.
const (
	RoleViewer   Role = "VIEWER"
	RoleEngineer Role = "ENGINEER"
	RoleAdmin    Role = "ADMIN"
)

// IsValid checks if the role is one of the declared tiers.
func (r Role) IsValid() bool {
	return r == RoleViewer || r == RoleEngineer || r == RoleAdmin
}

// User represents a registered staff account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary is the author projection embedded in updates and incidents.
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Actor is the verified identity attached to a request. The zero value
// is an anonymous caller.
type Actor struct {
	UserID string
	Email  string
	Role   Role
}

// IsAuthenticated reports whether the actor carries a verified identity.
func (a Actor) IsAuthenticated() bool {
	return a.UserID != ""
}

// CanViewPrivate reports whether the actor may see non-public incidents.
// Anonymous callers and viewers only get the public projection.
func (a Actor) CanViewPrivate() bool {
	return a.IsAuthenticated() && a.Role != RoleViewer
}
