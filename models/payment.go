package models

import (
	"encoding/json"
	"time"
)

type Payment struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
	BookingID         uint            `gorm:"index;not null" json:"bookingId"`
	Booking           *Booking        `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	UserID            uint            `gorm:"index;not null" json:"userId"`
	Amount            int64           `gorm:"not null" json:"amount"`
	Currency          string          `gorm:"type:varchar(3);default:INR" json:"currency"`
	Method            string          `json:"method"`
	Provider          string          `json:"provider"`
	Reference         string          `gorm:"uniqueIndex" json:"reference"`
	ProviderPaymentID string          `gorm:"index" json:"providerPaymentId"`
	Status            string          `gorm:"default:pending;index" json:"status"`
	ProviderResponse  json.RawMessage `gorm:"type:json" json:"-"`
	PaidAt            *time.Time      `json:"paidAt,omitempty"`
}
