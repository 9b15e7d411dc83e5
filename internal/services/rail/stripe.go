package rail

import (
	"context"
	"os"
	"strings"
	"time"

	"lexpay/internal/errors"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/payout"
	"github.com/stripe/stripe-go/v72/refund"
)

// StripeRail submits payouts and refunds through Stripe. A per-call
// timeout maps rail hangs to a failed submission instead of leaving the
// caller's record in processing indefinitely.
type StripeRail struct {
	timeout time.Duration
}

func NewStripeRail(timeout time.Duration) *StripeRail {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &StripeRail{timeout: timeout}
}

func (r *StripeRail) SubmitPayout(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	params := &stripe.PayoutParams{
		Amount:      stripe.Int64(toMinorUnits(req.Amount)),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Destination: stripe.String(req.Destination),
		Description: stripe.String(req.Description),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.ReferenceID)

	p, err := payout.New(params)
	if err != nil {
		return nil, railError(ctx, err)
	}
	return &Result{TransactionID: p.ID}, nil
}

func (r *StripeRail) SubmitRefund(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	params := &stripe.RefundParams{
		Amount: stripe.Int64(toMinorUnits(req.Amount)),
		Charge: stripe.String(req.Destination),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.ReferenceID)

	ref, err := refund.New(params)
	if err != nil {
		return nil, railError(ctx, err)
	}
	return &Result{TransactionID: ref.ID}, nil
}

func railError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return &errors.RailError{Reason: err.Error(), Timeout: true}
	}
	return &errors.RailError{Reason: err.Error()}
}

func toMinorUnits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
