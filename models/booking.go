package models

import (
	"time"

	"lablinc/pricing"
)

// Booking status values
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusRejected  = "rejected"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

type Booking struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`
	InstrumentID      uint        `gorm:"index;not null" json:"instrumentId"`
	Instrument        *Instrument `gorm:"foreignKey:InstrumentID" json:"instrument,omitempty"`
	UserID            uint        `gorm:"index;not null" json:"userId"`
	User              *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	InstituteID       uint        `gorm:"index;not null" json:"instituteId"`
	StartDate         time.Time   `gorm:"index;not null" json:"startDate"`
	EndDate           time.Time   `gorm:"index;not null" json:"endDate"`
	Notes             string      `gorm:"type:text" json:"notes"`
	Status            string      `gorm:"default:pending;index" json:"status"`
	RateType          string      `json:"rateType"`
	UnitRate          float64     `json:"unitRate"`
	UnitsCharged      int64       `json:"unitsCharged"`
	BaseAmount        int64       `json:"baseAmount"`
	SecurityFeeAmount int64       `json:"securityFeeAmount"`
	TaxAmount         int64       `json:"taxAmount"`
	TotalAmount       int64       `json:"totalAmount"`
	PaymentStatus     string      `gorm:"default:unpaid" json:"paymentStatus"`
	RejectionReason   string      `json:"rejectionReason,omitempty"`
	CancelledAt       *time.Time  `json:"cancelledAt,omitempty"`
}

// ApplyQuote copies a computed quote onto the booking.
func (b *Booking) ApplyQuote(q pricing.Quote) {
	b.RateType = string(q.RateType)
	b.UnitRate = q.UnitRate
	b.UnitsCharged = q.UnitsCharged
	b.BaseAmount = q.BaseAmount
	b.SecurityFeeAmount = q.SecurityFeeAmount
	b.TaxAmount = q.TaxAmount
	b.TotalAmount = q.TotalAmount
}

// Active reports whether the booking still holds its time slot.
func (b *Booking) Active() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// Overlaps reports whether [start, end) intersects the booking window.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && start.Before(b.EndDate)
}
