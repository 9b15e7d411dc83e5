package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// RateMap stores commission override percentages keyed by a dimension
// value (consultation type, lawyer tier or subscription tier).
type RateMap map[string]float64

// Value implements the driver.Valuer interface
func (m RateMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(RateMap{})
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface
func (m *RateMap) Scan(value interface{}) error {
	if value == nil {
		*m = RateMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("rate map: unsupported scan type")
	}
	return json.Unmarshal(bytes, m)
}

// CommissionConfig is one immutable version of the platform commission
// setup. Updates never mutate a row; they insert a new version and the
// highest version is the active one.
type CommissionConfig struct {
	ID                 uint    `gorm:"primarykey" json:"id"`
	Version            int     `gorm:"uniqueIndex;not null" json:"version"`
	DefaultRate        float64 `gorm:"not null" json:"default_rate"`
	MinAmount          float64 `gorm:"not null;default:0" json:"min_amount"`
	ByConsultationType RateMap `gorm:"type:jsonb" json:"by_consultation_type"`
	ByLawyerTier       RateMap `gorm:"type:jsonb" json:"by_lawyer_tier"`
	BySubscriptionTier RateMap `gorm:"type:jsonb" json:"by_subscription_tier"`
	UpdatedBy          uint    `gorm:"not null" json:"updated_by"`
	Note               string  `json:"note,omitempty"`
	CreatedAt          time.Time
}

// CommissionHistory is an append-only record of one config change.
type CommissionHistory struct {
	ID          uint `gorm:"primarykey" json:"id"`
	FromVersion int  `json:"from_version"`
	ToVersion   int  `gorm:"not null" json:"to_version"`
	OldValue    JSON `gorm:"type:jsonb" json:"old_value"`
	NewValue    JSON `gorm:"type:jsonb" json:"new_value"`
	ChangedBy   uint `gorm:"not null" json:"changed_by"`
	Note        string
	CreatedAt   time.Time
}
