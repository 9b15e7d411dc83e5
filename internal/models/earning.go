package models

import (
	"time"
)

// Earning settlement states
const (
	EarningStatusUnsettled = "unsettled"
	EarningStatusSettling  = "settling"
	EarningStatusSettled   = "settled"
)

// Earning is one accrued consultation fee owed to a lawyer. Earnings are
// written when a consultation completes and consumed by the payout
// processor, which marks them settling while a payout is in flight and
// settled (or back to unsettled) once the payout reaches a terminal state.
type Earning struct {
	ID               uint    `gorm:"primarykey" json:"id"`
	LawyerID         uint    `gorm:"not null;index" json:"lawyer_id"`
	ConsultationID   string  `gorm:"uniqueIndex;not null" json:"consultation_id"`
	ConsultationType string  `gorm:"not null" json:"consultation_type"`
	SubscriptionTier string  `json:"subscription_tier"` // client's subscription tier at consultation time
	GrossAmount      float64 `gorm:"not null" json:"gross_amount"`
	Currency         string  `gorm:"default:'USD'" json:"currency"`
	Status           string  `gorm:"not null;default:'unsettled';index" json:"status"`
	PayoutID         *uint   `gorm:"index" json:"payout_id,omitempty"`
	EarnedAt         time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Consultation types
const (
	ConsultationTypeStandard  = "standard"
	ConsultationTypeEmergency = "emergency"
	ConsultationTypeDocument  = "document_review"
	ConsultationTypeRetainer  = "retainer"
)
