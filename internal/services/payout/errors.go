package payout

import "lexpay/internal/errors"

// Service errors
var (
	ErrNothingToSettle = errors.ErrNothingToSettle
	ErrPayoutInFlight  = errors.ErrPayoutInFlight
	ErrLawyerNotFound  = errors.ErrLawyerNotFound
	ErrPayoutNotFound  = errors.ErrPayoutNotFound
)
