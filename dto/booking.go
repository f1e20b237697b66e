package dto

import (
	"time"

	"lablinc/pricing"
	"lablinc/utils"
)

type QuoteInput struct {
	InstrumentID uint   `json:"instrumentId" binding:"required"`
	StartDate    string `json:"startDate" binding:"required"`
	EndDate      string `json:"endDate" binding:"required"`
}

type CreateBookingInput struct {
	InstrumentID uint   `json:"instrumentId" binding:"required"`
	StartDate    string `json:"startDate" binding:"required"`
	EndDate      string `json:"endDate" binding:"required"`
	Notes        string `json:"notes" binding:"max=2000"`
}

type BookingStatusInput struct {
	Action string `json:"action" binding:"required,oneof=confirm reject complete cancel"`
	Reason string `json:"reason" binding:"max=500"`
}

type QuoteResponse struct {
	InstrumentID uint      `json:"instrumentId"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	pricing.Quote
}

type BookingFilter struct {
	Status       string
	InstrumentID uint
	Page         utils.Page
}

type BusyWindow struct {
	BookingID uint      `json:"bookingId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
}
