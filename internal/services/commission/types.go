package commission

import (
	"lexpay/internal/models"
)

// RateTable is an immutable snapshot of one commission config version.
// Resolution never touches the database; updates publish a whole new
// snapshot, so readers cannot observe a half-written config.
type RateTable struct {
	Version            int                `json:"version"`
	DefaultRate        float64            `json:"default_rate"`
	MinAmount          float64            `json:"min_amount"`
	ByConsultationType map[string]float64 `json:"by_consultation_type"`
	ByLawyerTier       map[string]float64 `json:"by_lawyer_tier"`
	BySubscriptionTier map[string]float64 `json:"by_subscription_tier"`
}

// NewRateTable builds a snapshot from a stored config version.
func NewRateTable(cfg *models.CommissionConfig) *RateTable {
	return &RateTable{
		Version:            cfg.Version,
		DefaultRate:        cfg.DefaultRate,
		MinAmount:          cfg.MinAmount,
		ByConsultationType: cfg.ByConsultationType,
		ByLawyerTier:       cfg.ByLawyerTier,
		BySubscriptionTier: cfg.BySubscriptionTier,
	}
}

// ResolveRate picks the applicable commission percentage. Most specific
// dimension wins, in this fixed order:
//
//	subscription-tier override > lawyer-tier override >
//	consultation-type override > platform default
//
// The order is deliberate: subscription tier is a paid product promise
// to the client, lawyer tier is earned standing, consultation type is
// the broadest grouping.
func (t *RateTable) ResolveRate(consultationType, lawyerTier, subscriptionTier string) float64 {
	if rate, ok := t.BySubscriptionTier[subscriptionTier]; ok {
		return rate
	}
	if rate, ok := t.ByLawyerTier[lawyerTier]; ok {
		return rate
	}
	if rate, ok := t.ByConsultationType[consultationType]; ok {
		return rate
	}
	return t.DefaultRate
}

// CommissionFor computes the platform's cut of one gross amount: the
// resolved percentage, floored at the configured minimum commission.
func (t *RateTable) CommissionFor(gross float64, consultationType, lawyerTier, subscriptionTier string) float64 {
	rate := t.ResolveRate(consultationType, lawyerTier, subscriptionTier)
	c := gross * rate / 100
	if c < t.MinAmount {
		return t.MinAmount
	}
	return c
}

// UpdateInput is a full replacement config submitted by an admin.
type UpdateInput struct {
	DefaultRate        float64            `json:"default_rate"`
	MinAmount          float64            `json:"min_amount"`
	ByConsultationType map[string]float64 `json:"by_consultation_type"`
	ByLawyerTier       map[string]float64 `json:"by_lawyer_tier"`
	BySubscriptionTier map[string]float64 `json:"by_subscription_tier"`
	Note               string             `json:"note"`
	ActorID            uint               `json:"-"`
	ActorIP            string             `json:"-"`
}
