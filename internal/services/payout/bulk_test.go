package payout

import (
	"context"
	"testing"

	"lexpay/internal/errors"
	"lexpay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestService_ProcessBulk(t *testing.T) {
	t.Run("items succeed and fail independently", func(t *testing.T) {
		f := newFixture(t)
		for id := uint(2); id <= 5; id++ {
			require.NoError(t, f.lawyers.Create(context.Background(), &models.Lawyer{
				Model:             gorm.Model{ID: id},
				UserID:            10 + id,
				Name:              "Lawyer",
				Tier:              models.LawyerTierGold,
				PayoutMethod:      models.PayoutMethodBankTransfer,
				PayoutDestination: "acct",
			}))
		}
		// Lawyers 1-4 have earnings; lawyer 5 has nothing to settle.
		for id := uint(1); id <= 4; id++ {
			f.accrue(t, id, 5000)
		}

		items := []BulkItem{
			{LawyerID: 1}, {LawyerID: 2}, {LawyerID: 3}, {LawyerID: 4}, {LawyerID: 5},
		}
		result, err := f.service.ProcessBulk(context.Background(), items, 7, "10.0.0.1")
		require.NoError(t, err)

		assert.False(t, result.Success)
		assert.Equal(t, 4, result.Processed)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, len(items), result.Processed+result.Failed)

		// Results keep input order.
		require.Len(t, result.Results, 5)
		for i, item := range items {
			assert.Equal(t, item.LawyerID, result.Results[i].LawyerID)
		}
		assert.False(t, result.Results[4].Success)
		assert.Contains(t, result.Results[4].Error, "no payable earnings")
		for i := 0; i < 4; i++ {
			assert.True(t, result.Results[i].Success)
			assert.Equal(t, float64(4600), result.Results[i].Amount)
			assert.NotZero(t, result.Results[i].PayoutID)
		}
	})

	t.Run("all items succeed", func(t *testing.T) {
		f := newFixture(t)
		f.accrue(t, 1, 5000)

		result, err := f.service.ProcessBulk(context.Background(), []BulkItem{{LawyerID: 1}}, 7, "")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.Processed)
		assert.Zero(t, result.Failed)
	})

	t.Run("one rail failure does not abort the batch", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.lawyers.Create(context.Background(), &models.Lawyer{
			Model:             gorm.Model{ID: 2},
			UserID:            12,
			Name:              "Lawyer",
			Tier:              models.LawyerTierGold,
			PayoutMethod:      models.PayoutMethodBankTransfer,
			PayoutDestination: "acct",
		}))
		f.accrue(t, 1, 5000)
		f.accrue(t, 2, 5000)
		f.rail.failNext = &errors.RailError{Reason: "rail down"}

		// Workers run concurrently; force one at a time so the single
		// failNext deterministically hits the first item.
		f2 := f
		svc := f2.service.(*service)
		svc.config.BulkWorkers = 1

		result, err := svc.ProcessBulk(context.Background(), []BulkItem{{LawyerID: 1}, {LawyerID: 2}}, 7, "")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Processed)
		assert.Equal(t, 1, result.Failed)
		assert.False(t, result.Results[0].Success)
		assert.True(t, result.Results[1].Success)
	})
}
