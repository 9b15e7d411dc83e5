package payout

import (
	"context"
	"time"

	"lexpay/internal/models"
)

// Service is the payout processing interface.
type Service interface {
	// Process settles one lawyer's accrued earnings into a new payout.
	// Repeating it after a settlement returns ErrNothingToSettle (422)
	// rather than a conflict; either way nothing is paid twice.
	Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error)
	// ProcessBulk fans a batch out through Process with partial-failure
	// semantics: items succeed or fail independently.
	ProcessBulk(ctx context.Context, items []BulkItem, actorID uint, actorIP string) (*BulkResult, error)
	// Resubmit retries the rail call for a failed payout. Any other
	// status is a conflict; a completed payout is never paid twice.
	Resubmit(ctx context.Context, payoutID uint, actorID uint) (*ProcessResult, error)
	// Cancel voids a failed payout and releases its earnings back to
	// the payable pool.
	Cancel(ctx context.Context, payoutID uint, actorID uint) error
	Get(ctx context.Context, payoutID uint) (*models.Payout, error)
	GetByReference(ctx context.Context, referenceID string) (*models.Payout, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Payout, error)
	ListByLawyer(ctx context.Context, lawyerID uint, limit, offset int) ([]models.Payout, error)
}

// Lock serializes payout processing per lawyer. Implemented by
// repositories.SettlementLock.
type Lock interface {
	Acquire(ctx context.Context, retryInterval time.Duration, maxRetries int) error
	Release(ctx context.Context) error
}

// LockFactory builds the per-lawyer lock. The token identifies the
// holder so an expired holder cannot release someone else's lock.
type LockFactory func(lawyerID uint, token string) Lock
