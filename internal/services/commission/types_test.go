package commission

import (
	"testing"

	"lexpay/internal/models"

	"github.com/stretchr/testify/assert"
)

func testTable() *RateTable {
	return NewRateTable(&models.CommissionConfig{
		Version:     3,
		DefaultRate: 15,
		MinAmount:   100,
		ByConsultationType: models.RateMap{
			models.ConsultationTypeEmergency: 20,
		},
		ByLawyerTier: models.RateMap{
			models.LawyerTierGold: 8,
		},
		BySubscriptionTier: models.RateMap{
			"premium": 5,
		},
	})
}

func TestRateTable_ResolveRate(t *testing.T) {
	table := testTable()

	tests := []struct {
		name             string
		consultationType string
		lawyerTier       string
		subscriptionTier string
		want             float64
	}{
		{
			name:             "subscription tier wins over everything",
			consultationType: models.ConsultationTypeEmergency,
			lawyerTier:       models.LawyerTierGold,
			subscriptionTier: "premium",
			want:             5,
		},
		{
			name:             "lawyer tier wins over consultation type",
			consultationType: models.ConsultationTypeEmergency,
			lawyerTier:       models.LawyerTierGold,
			subscriptionTier: "basic",
			want:             8,
		},
		{
			name:             "consultation type override",
			consultationType: models.ConsultationTypeEmergency,
			lawyerTier:       models.LawyerTierStandard,
			subscriptionTier: "basic",
			want:             20,
		},
		{
			name:             "platform default when nothing matches",
			consultationType: models.ConsultationTypeStandard,
			lawyerTier:       models.LawyerTierStandard,
			subscriptionTier: "basic",
			want:             15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.ResolveRate(tt.consultationType, tt.lawyerTier, tt.subscriptionTier)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRateTable_CommissionFor(t *testing.T) {
	table := testTable()

	t.Run("percentage above the floor", func(t *testing.T) {
		// gold tier: 8% of 5000 = 400
		got := table.CommissionFor(5000, models.ConsultationTypeStandard, models.LawyerTierGold, "")
		assert.Equal(t, float64(400), got)
	})

	t.Run("minimum commission floor applies", func(t *testing.T) {
		// gold tier: 8% of 500 = 40, floored at 100
		got := table.CommissionFor(500, models.ConsultationTypeStandard, models.LawyerTierGold, "")
		assert.Equal(t, float64(100), got)
	})

	t.Run("default rate", func(t *testing.T) {
		got := table.CommissionFor(1000, models.ConsultationTypeStandard, models.LawyerTierStandard, "")
		assert.Equal(t, float64(150), got)
	})
}
