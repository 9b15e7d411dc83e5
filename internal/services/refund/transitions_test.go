package refund

import (
	"testing"

	"lexpay/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := map[[2]string]bool{
		{models.RefundStatusPending, models.RefundStatusApproved}:     true,
		{models.RefundStatusPending, models.RefundStatusRejected}:     true,
		{models.RefundStatusApproved, models.RefundStatusProcessing}:  true,
		{models.RefundStatusProcessing, models.RefundStatusCompleted}: true,
		{models.RefundStatusProcessing, models.RefundStatusFailed}:    true,
	}

	statuses := []string{
		models.RefundStatusPending,
		models.RefundStatusApproved,
		models.RefundStatusRejected,
		models.RefundStatusProcessing,
		models.RefundStatusCompleted,
		models.RefundStatusFailed,
	}

	// Every pair not in the allowed set must be rejected, in particular
	// anything leaving a terminal state or re-entering pending.
	for _, from := range statuses {
		for _, to := range statuses {
			got := CanTransition(from, to)
			assert.Equal(t, allowed[[2]string{from, to}], got, "%s -> %s", from, to)
		}
	}
}

func TestValidReason(t *testing.T) {
	assert.True(t, ValidReason(models.RefundReasonNoShow))
	assert.True(t, ValidReason(models.RefundReasonDuplicate))
	assert.False(t, ValidReason(""))
	assert.False(t, ValidReason("vibes"))
}
