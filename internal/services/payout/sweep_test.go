package payout

import (
	"context"
	"testing"
	"time"

	"lexpay/internal/models"
	"lexpay/internal/services/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_Sweep(t *testing.T) {
	repo := newFakePayoutRepo()

	stale := &models.Payout{ReferenceID: "stale", LawyerID: 1, Status: models.PayoutStatusProcessing, Method: models.PayoutMethodCard}
	require.NoError(t, repo.Create(context.Background(), stale))
	repo.payouts[stale.ID].UpdatedAt = time.Now().Add(-time.Hour)

	fresh := &models.Payout{ReferenceID: "fresh", LawyerID: 2, Status: models.PayoutStatusProcessing, Method: models.PayoutMethodCard}
	require.NoError(t, repo.Create(context.Background(), fresh))
	repo.payouts[fresh.ID].UpdatedAt = time.Now()

	done := &models.Payout{ReferenceID: "done", LawyerID: 3, Status: models.PayoutStatusCompleted, Method: models.PayoutMethodCard}
	require.NoError(t, repo.Create(context.Background(), done))
	repo.payouts[done.ID].UpdatedAt = time.Now().Add(-time.Hour)

	sweeper := NewSweeper(repo, audit.NoopRecorder{}, Config{SweepThreshold: 10 * time.Minute})
	recovered := sweeper.Sweep(context.Background())

	assert.Equal(t, 1, recovered)

	swept, err := repo.FindByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusFailed, swept.Status)
	assert.Contains(t, swept.FailureReason, "recovered by sweep")

	untouched, err := repo.FindByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusProcessing, untouched.Status)

	terminal, err := repo.FindByID(context.Background(), done.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusCompleted, terminal.Status)
}
