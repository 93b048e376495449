package domain

import "time"

// SystemActor is the actor recorded when no authenticated identity is
// attached to a mutation.
const SystemActor = "system"

// AuditLog is an append-only record of who did what to which entity.
// Entries reference other entities by opaque id only; they survive
// deletion of the entity they describe.
type AuditLog struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actor_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
}
