package models

import (
	"time"
)

// Audit outcomes
const (
	AuditOutcomeSuccess = "success"
	AuditOutcomeFailure = "failure"
)

// AuditLog is an append-only record of one admin mutation attempt.
// Failed attempts are recorded too, with the error in Note.
type AuditLog struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	Action     string `gorm:"not null;index" json:"action"`
	EntityType string `gorm:"not null;index" json:"entity_type"`
	EntityID   string `gorm:"index" json:"entity_id"`
	OldValue   JSON   `gorm:"type:jsonb" json:"old_value,omitempty"`
	NewValue   JSON   `gorm:"type:jsonb" json:"new_value,omitempty"`
	ActorID    uint   `gorm:"not null;index" json:"actor_id"`
	ActorIP    string `json:"actor_ip,omitempty"`
	Outcome    string `gorm:"not null;default:'success'" json:"outcome"`
	Note       string `json:"note,omitempty"`
	CreatedAt  time.Time
}
