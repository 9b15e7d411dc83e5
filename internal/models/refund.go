package models

import (
	"time"
)

// Refund statuses
const (
	RefundStatusPending    = "pending"
	RefundStatusApproved   = "approved"
	RefundStatusRejected   = "rejected"
	RefundStatusProcessing = "processing"
	RefundStatusCompleted  = "completed"
	RefundStatusFailed     = "failed"
)

// Refund reason taxonomy
const (
	RefundReasonNoShow    = "lawyer_no_show"
	RefundReasonCancelled = "consultation_cancelled"
	RefundReasonQuality   = "service_quality"
	RefundReasonDuplicate = "duplicate_payment"
	RefundReasonOther     = "other"
)

// Refund is a reversal owed to a client, linked to the original payment
// and optionally the consultation it paid for. The lifecycle is strictly
// forward-moving; a refund never re-enters pending once decided.
type Refund struct {
	ID              uint    `gorm:"primarykey" json:"id"`
	ReferenceID     string  `gorm:"uniqueIndex;not null" json:"reference_id"`
	PaymentID       string  `gorm:"not null;index" json:"payment_id"`
	ConsultationID  *string `gorm:"index" json:"consultation_id,omitempty"`
	UserID          uint    `gorm:"not null;index" json:"user_id"`
	Amount          float64 `gorm:"not null" json:"amount"`
	Currency        string  `gorm:"default:'USD'" json:"currency"`
	Status          string  `gorm:"not null;default:'pending';index" json:"status"`
	ReasonCode      string  `gorm:"not null" json:"reason_code"`
	Reason          string  `json:"reason,omitempty"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
	DecidedBy       *uint   `json:"decided_by,omitempty"`
	DecidedAt       *time.Time
	TransactionID   string `json:"transaction_id,omitempty"`
	FailureReason   string `json:"failure_reason,omitempty"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Decided reports whether the refund has left pending.
func (r *Refund) Decided() bool {
	return r.Status != RefundStatusPending
}

// Terminal reports whether the refund can no longer change state.
func (r *Refund) Terminal() bool {
	switch r.Status {
	case RefundStatusRejected, RefundStatusCompleted, RefundStatusFailed:
		return true
	}
	return false
}
