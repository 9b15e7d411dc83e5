// Package audit appends immutable change records for every mutating
// settlement operation, including failed attempts.
package audit

import (
	"context"
	"log"

	"lexpay/internal/models"
	"lexpay/internal/repositories"
)

// Entry is one mutation attempt to record.
type Entry struct {
	Action     string
	EntityType string
	EntityID   string
	OldValue   models.JSON
	NewValue   models.JSON
	ActorID    uint
	ActorIP    string
	Outcome    string
	Note       string
}

// Recorder persists audit entries. Recording must never fail the
// operation being audited; persistence errors are logged and dropped.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

type recorder struct {
	repo repositories.AuditRepository
}

func NewRecorder(repo repositories.AuditRepository) Recorder {
	if repo == nil {
		panic("audit repo is required")
	}
	return &recorder{repo: repo}
}

func (r *recorder) Record(ctx context.Context, entry Entry) {
	if entry.Outcome == "" {
		entry.Outcome = models.AuditOutcomeSuccess
	}
	row := &models.AuditLog{
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		OldValue:   entry.OldValue,
		NewValue:   entry.NewValue,
		ActorID:    entry.ActorID,
		ActorIP:    entry.ActorIP,
		Outcome:    entry.Outcome,
		Note:       entry.Note,
	}
	if err := r.repo.Append(ctx, row); err != nil {
		log.Printf("audit: failed to append %s %s/%s: %v", entry.Action, entry.EntityType, entry.EntityID, err)
	}
}

// NoopRecorder discards entries. Used in tests.
type NoopRecorder struct{}

func (NoopRecorder) Record(ctx context.Context, entry Entry) {}
