package models

import (
	"encoding/json"
	"time"
)

// AuditLog records who changed what.
type AuditLog struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time       `gorm:"autoCreateTime;index" json:"createdAt"`
	ActorID    uint            `gorm:"index" json:"actorId"`
	Action     string          `gorm:"index;not null" json:"action"`
	EntityType string          `gorm:"index" json:"entityType"`
	EntityID   uint            `json:"entityId"`
	Details    json.RawMessage `gorm:"type:json" json:"details,omitempty"`
}
