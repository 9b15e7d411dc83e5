// Package rail models the external payment rail the settlement engine
// depends on but does not own. Implementations submit money movements;
// the engine records outcomes and never retries on its own.
package rail

import "context"

// Request describes one money movement on the rail.
type Request struct {
	ReferenceID string  // engine-side reference, for idempotency at the rail
	Amount      float64
	Currency    string
	Method      string
	Destination string // rail-specific destination (account, card token, charge id)
	Description string
}

// Result is the rail's acknowledgement of an accepted submission.
type Result struct {
	TransactionID string
}

// Rail is the payment capability interface.
type Rail interface {
	// SubmitPayout pushes funds out to a lawyer's destination.
	SubmitPayout(ctx context.Context, req Request) (*Result, error)
	// SubmitRefund reverses a client payment.
	SubmitRefund(ctx context.Context, req Request) (*Result, error)
}
