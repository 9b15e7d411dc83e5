package refund

import "lexpay/internal/errors"

// Service errors
var (
	ErrRefundNotFound = errors.ErrRefundNotFound
)
