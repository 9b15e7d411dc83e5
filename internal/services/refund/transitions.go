package refund

import "lexpay/internal/models"

// transitions is the full refund state machine:
//
//	pending   -> approved | rejected
//	approved  -> processing
//	processing -> completed | failed
//
// rejected, completed and failed are terminal. No transition skips a
// state and nothing re-enters pending.
var transitions = map[string][]string{
	models.RefundStatusPending:    {models.RefundStatusApproved, models.RefundStatusRejected},
	models.RefundStatusApproved:   {models.RefundStatusProcessing},
	models.RefundStatusProcessing: {models.RefundStatusCompleted, models.RefundStatusFailed},
}

// CanTransition reports whether from -> to is a legal refund move.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

var validReasons = map[string]bool{
	models.RefundReasonNoShow:    true,
	models.RefundReasonCancelled: true,
	models.RefundReasonQuality:   true,
	models.RefundReasonDuplicate: true,
	models.RefundReasonOther:     true,
}

// ValidReason reports whether code belongs to the refund reason taxonomy.
func ValidReason(code string) bool {
	return validReasons[code]
}
