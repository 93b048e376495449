package audit

import (
	"context"

	"github.com/statusdesk/statusdesk/internal/domain"
)

// DefaultListLimit caps the audit listing when the caller supplies none.
const DefaultListLimit = 100

// Repository defines the interface for audit log storage. The table is
// append-only: there are no update or delete operations.
type Repository interface {
	Insert(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context, filter Filter) ([]domain.AuditLog, error)
}

// Filter holds options for listing audit entries.
type Filter struct {
	EntityType *string
	EntityID   *string
	Limit      int
}
