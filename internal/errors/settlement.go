package errors

var (
	ErrLawyerNotFound = &DomainError{
		Code:    "LAWYER_NOT_FOUND",
		Message: "lawyer not found",
	}
	ErrPayoutNotFound = &DomainError{
		Code:    "PAYOUT_NOT_FOUND",
		Message: "payout not found",
	}
	ErrRefundNotFound = &DomainError{
		Code:    "REFUND_NOT_FOUND",
		Message: "refund not found",
	}
	ErrConfigNotFound = &DomainError{
		Code:    "COMMISSION_CONFIG_NOT_FOUND",
		Message: "no active commission config",
	}
	ErrNothingToSettle = &DomainError{
		Code:    "NOTHING_TO_SETTLE",
		Message: "no payable earnings for lawyer",
	}
	ErrPayoutInFlight = &DomainError{
		Code:    "PAYOUT_IN_FLIGHT",
		Message: "a payout is already being processed for this lawyer",
	}
)
