// Package audit provides the append-only audit trail: every mutating
// operation records one entry describing who did what to which entity.
package audit

import (
	"context"

	"github.com/statusdesk/statusdesk/internal/domain"
	"github.com/statusdesk/statusdesk/internal/pkg/ctxlog"
	"github.com/statusdesk/statusdesk/internal/pkg/metrics"
)

// Recorder writes audit entries. The write is best-effort: a failed
// insert must never fail or roll back the mutation it describes, so
// Record returns nothing and failures only surface in logs and the
// audit write-failure counter.
type Recorder struct {
	repo Repository
}

// NewRecorder creates a new audit recorder.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends one audit entry. An empty actorID is recorded as the
// "system" sentinel.
func (r *Recorder) Record(ctx context.Context, actorID, action, entityType, entityID string, metadata map[string]any) {
	if actorID == "" {
		actorID = domain.SystemActor
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	entry := &domain.AuditLog{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
	}

	if err := r.repo.Insert(ctx, entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		ctxlog.FromContext(ctx).Error("failed to write audit log",
			"action", action,
			"entity_type", entityType,
			"entity_id", entityID,
			"error", err,
		)
	}
}

// List returns audit entries matching the filter, newest first.
func (r *Recorder) List(ctx context.Context, filter Filter) ([]domain.AuditLog, error) {
	return r.repo.List(ctx, filter)
}
