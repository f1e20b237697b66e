package models

import (
	"encoding/json"
	"time"

	"lablinc/pricing"

	"gorm.io/gorm"
)

type Instrument struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
	InstituteID    uint            `gorm:"index;not null" json:"instituteId"`
	Institute      *User           `gorm:"foreignKey:InstituteID" json:"institute,omitempty"`
	Name           string          `gorm:"not null" json:"name"`
	Category       string          `gorm:"index" json:"category"`
	Description    string          `gorm:"type:text" json:"description"`
	Manufacturer   string          `json:"manufacturer"`
	Model          string          `json:"model"`
	Location       string          `json:"location"`
	City           string          `gorm:"index" json:"city"`
	Specifications json.RawMessage `gorm:"type:json" json:"specifications,omitempty"`
	Images         json.RawMessage `gorm:"type:json" json:"images,omitempty"`
	Image          string          `json:"image"`
	HourlyRate     *float64        `json:"hourlyRate"`
	DailyRate      *float64        `json:"dailyRate"`
	WeeklyRate     *float64        `json:"weeklyRate"`
	MonthlyRate    *float64        `json:"monthlyRate"`
	Status         string          `gorm:"default:available;index" json:"status"`
	AverageRating  float64         `gorm:"default:0" json:"averageRating"`
	ReviewCount    int             `gorm:"default:0" json:"reviewCount"`
}

// RateCard returns the instrument's canonical pricing.
func (i *Instrument) RateCard() pricing.RateCard {
	return pricing.RateCard{
		Hourly:  i.HourlyRate,
		Daily:   i.DailyRate,
		Weekly:  i.WeeklyRate,
		Monthly: i.MonthlyRate,
	}
}
