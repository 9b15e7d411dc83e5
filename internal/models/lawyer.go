package models

import (
	"time"

	"gorm.io/gorm"
)

// Lawyer performance tiers
const (
	LawyerTierStandard = "standard"
	LawyerTierSilver   = "silver"
	LawyerTierGold     = "gold"
	LawyerTierPlatinum = "platinum"
)

type Lawyer struct {
	gorm.Model
	UserID            uint   `gorm:"uniqueIndex;not null"`
	Name              string `gorm:"not null"`
	Tier              string `gorm:"default:'standard'"`
	Status            string `gorm:"default:'active'"`
	PayoutMethod      string `gorm:"default:'bank_transfer'"` // preferred method when a bulk item omits one
	PayoutDestination string // rail-specific destination reference (IBAN, card token, connected account)
	VerifiedAt        *time.Time
}
