package payout

import (
	"time"

	"lexpay/internal/models"
)

// Config holds payout processing configuration.
type Config struct {
	Currency          string
	RailTimeout       time.Duration
	LockRetryInterval time.Duration
	LockMaxRetries    int
	BulkWorkers       int
	// SweepThreshold is how long a payout may sit in processing before
	// the reconciliation sweep fails it.
	SweepThreshold time.Duration
	SweepInterval  time.Duration
	SweepBatchSize int
}

// ProcessRequest asks for one lawyer's accrued earnings to be settled.
type ProcessRequest struct {
	LawyerID uint
	Method   string // falls back to the lawyer's preferred method
	Notes    string
	ActorID  uint
	ActorIP  string
}

// ProcessResult reports the outcome of one payout attempt. On rail
// failure the payout record exists in failed status and Result is
// returned alongside the error.
type ProcessResult struct {
	Payout           *models.Payout
	Amount           float64
	GrossAmount      float64
	CommissionAmount float64
	Status           string
}

// BulkItem is one entry of a bulk payout request.
type BulkItem struct {
	LawyerID uint   `json:"lawyer_id"`
	Method   string `json:"method,omitempty"`
}

// BulkItemResult captures one item's outcome. Error is a message, not a
// propagated failure; a bad item never aborts the batch.
type BulkItemResult struct {
	LawyerID uint    `json:"lawyer_id"`
	Success  bool    `json:"success"`
	PayoutID uint    `json:"payout_id,omitempty"`
	Amount   float64 `json:"amount,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// BulkResult aggregates a whole batch. Success is a summary flag, true
// only when no item failed; it never triggers a rollback.
type BulkResult struct {
	Success   bool             `json:"success"`
	Processed int              `json:"processed"`
	Failed    int              `json:"failed"`
	Results   []BulkItemResult `json:"results"`
}
