package audit

import (
	"context"
	"testing"

	"lexpay/internal/errors"
	"lexpay/internal/models"
	"lexpay/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditRepo struct {
	entries []models.AuditLog
	fail    bool
}

func (f *fakeAuditRepo) Append(ctx context.Context, entry *models.AuditLog) error {
	if f.fail {
		return errors.New("db down")
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, filter repositories.AuditFilter) ([]models.AuditLog, error) {
	return f.entries, nil
}

func TestRecorder_Record(t *testing.T) {
	t.Run("defaults outcome to success", func(t *testing.T) {
		repo := &fakeAuditRepo{}
		r := NewRecorder(repo)

		r.Record(context.Background(), Entry{
			Action:     "payout.process",
			EntityType: "payout",
			EntityID:   "ref-1",
			ActorID:    7,
		})

		require.Len(t, repo.entries, 1)
		assert.Equal(t, models.AuditOutcomeSuccess, repo.entries[0].Outcome)
		assert.Equal(t, "payout.process", repo.entries[0].Action)
	})

	t.Run("failure outcome is preserved", func(t *testing.T) {
		repo := &fakeAuditRepo{}
		r := NewRecorder(repo)

		r.Record(context.Background(), Entry{
			Action:  "refund.reject",
			Outcome: models.AuditOutcomeFailure,
			Note:    "already approved",
		})

		require.Len(t, repo.entries, 1)
		assert.Equal(t, models.AuditOutcomeFailure, repo.entries[0].Outcome)
	})

	t.Run("append errors never reach the caller", func(t *testing.T) {
		r := NewRecorder(&fakeAuditRepo{fail: true})

		assert.NotPanics(t, func() {
			r.Record(context.Background(), Entry{Action: "payout.process"})
		})
	})
}
