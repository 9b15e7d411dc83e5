package models

import (
	"time"
)

// Payout statuses
const (
	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusCompleted  = "completed"
	PayoutStatusFailed     = "failed"
	PayoutStatusCancelled  = "cancelled"
)

// Payout methods
const (
	PayoutMethodBankTransfer = "bank_transfer"
	PayoutMethodCard         = "card"
)

// Payout is one settlement owed to a lawyer. It is created in pending
// status and moves one-way to a terminal state; a failed payout is
// re-submitted as a new command, never retried in place.
type Payout struct {
	ID               uint    `gorm:"primarykey" json:"id"`
	ReferenceID      string  `gorm:"uniqueIndex;not null" json:"reference_id"`
	LawyerID         uint    `gorm:"not null;index" json:"lawyer_id"`
	Amount           float64 `gorm:"not null" json:"amount"`
	GrossAmount      float64 `gorm:"not null" json:"gross_amount"`
	CommissionAmount float64 `gorm:"not null" json:"commission_amount"`
	Currency         string  `gorm:"default:'USD'" json:"currency"`
	Status           string  `gorm:"not null;default:'pending';index" json:"status"`
	Method           string  `gorm:"not null" json:"method"`
	TransactionID    string  `json:"transaction_id,omitempty"` // external rail reference
	FailureReason    string  `json:"failure_reason,omitempty"`
	Notes            string  `json:"notes,omitempty"`
	ProcessedBy      uint    `json:"processed_by"`
	ProcessedAt      *time.Time
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Terminal reports whether the payout can no longer change state.
func (p *Payout) Terminal() bool {
	switch p.Status {
	case PayoutStatusCompleted, PayoutStatusFailed, PayoutStatusCancelled:
		return true
	}
	return false
}
