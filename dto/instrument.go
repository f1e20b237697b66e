package dto

import (
	"encoding/json"

	"lablinc/utils"
)

type InstrumentInput struct {
	Name           string          `json:"name" binding:"required,min=2"`
	Category       string          `json:"category" binding:"required"`
	Description    string          `json:"description"`
	Manufacturer   string          `json:"manufacturer"`
	Model          string          `json:"model"`
	Location       string          `json:"location"`
	City           string          `json:"city"`
	Specifications json.RawMessage `json:"specifications" swaggertype:"object"`
	Images         []string        `json:"images"`
	Image          string          `json:"image"`
	HourlyRate     *float64        `json:"hourlyRate" binding:"omitempty,gte=0,lte=1000000000000"`
	DailyRate      *float64        `json:"dailyRate" binding:"omitempty,gte=0,lte=1000000000000"`
	WeeklyRate     *float64        `json:"weeklyRate" binding:"omitempty,gte=0,lte=1000000000000"`
	MonthlyRate    *float64        `json:"monthlyRate" binding:"omitempty,gte=0,lte=1000000000000"`
	Status         string          `json:"status" binding:"omitempty,instrument_status"`
}

type InstrumentFilter struct {
	Category     string
	City         string
	Status       string
	Query        string
	InstituteID  uint
	MinDailyRate *float64
	MaxDailyRate *float64
	Page         utils.Page
}
