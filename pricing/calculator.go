// Package pricing computes booking price quotes from an instrument rate card.
//
// Calculate is the single source of truth for booking prices: the quote
// endpoint and booking creation both call it, so an estimate shown to the
// user always matches the amount that is persisted and charged.
package pricing

import (
	"errors"
	"math"
	"time"
)

// Tier is a rate card period.
type Tier string

const (
	TierHourly  Tier = "hourly"
	TierDaily   Tier = "daily"
	TierWeekly  Tier = "weekly"
	TierMonthly Tier = "monthly"
)

const (
	SecurityFeeRate = 0.10
	TaxRate         = 0.18

	hoursPerDay  = 24.0
	daysPerWeek  = 7.0
	daysPerMonth = 30.0
	msPerHour    = float64(time.Hour / time.Millisecond)
	msPerDay     = msPerHour * hoursPerDay

	// MaxRate is the largest per-unit rate a rate card may carry.
	MaxRate = 1e12
	// maxBaseAmount keeps base + fee + tax within int64.
	maxBaseAmount = math.MaxInt64 / (1 + SecurityFeeRate + TaxRate) / 2
)

var (
	// ErrInvalidWindow means the end of the window is not after its start.
	ErrInvalidWindow = errors.New("end must be after start")
	// ErrNoApplicableTier means no rate on the card covers the requested duration.
	ErrNoApplicableTier = errors.New("no rate tier applies to the requested duration")
	// ErrAmountOverflow means the priced amount does not fit in an int64 total.
	ErrAmountOverflow = errors.New("booking amount exceeds the supported maximum")
	// ErrZeroDuration means the window rounds to zero chargeable units.
	ErrZeroDuration = errors.New("duration rounds to zero chargeable units")
)

// RateCard holds the optional per-period rates of an instrument. A nil rate
// means the tier is not offered; an explicit zero is a free tier.
type RateCard struct {
	Hourly  *float64 `json:"hourly,omitempty"`
	Daily   *float64 `json:"daily,omitempty"`
	Weekly  *float64 `json:"weekly,omitempty"`
	Monthly *float64 `json:"monthly,omitempty"`
}

// Quote is the priced result for one booking window.
type Quote struct {
	RateType          Tier    `json:"rateType"`
	UnitRate          float64 `json:"unitRate"`
	UnitsCharged      int64   `json:"unitsCharged"`
	TotalHours        float64 `json:"totalHours"`
	TotalDays         float64 `json:"totalDays"`
	BaseAmount        int64   `json:"baseAmount"`
	SecurityFeeAmount int64   `json:"securityFeeAmount"`
	TaxAmount         int64   `json:"taxAmount"`
	TotalAmount       int64   `json:"totalAmount"`
}

// Rate returns the rate of a tier and whether the card offers it.
func (rc RateCard) Rate(t Tier) (float64, bool) {
	var r *float64
	switch t {
	case TierHourly:
		r = rc.Hourly
	case TierDaily:
		r = rc.Daily
	case TierWeekly:
		r = rc.Weekly
	case TierMonthly:
		r = rc.Monthly
	}
	if r == nil || *r < 0 || math.IsNaN(*r) || math.IsInf(*r, 0) {
		return 0, false
	}
	return *r, true
}

// Empty reports whether the card offers no usable tier.
func (rc RateCard) Empty() bool {
	for _, t := range []Tier{TierHourly, TierDaily, TierWeekly, TierMonthly} {
		if _, ok := rc.Rate(t); ok {
			return false
		}
	}
	return true
}

// Calculate picks the tier for the window [start, end) and prices it.
//
// Tiers are tried in priority order: monthly (>= 30 days), weekly (>= 7 days),
// daily (>= 1 day), hourly, then daily as a fallback for sub-day windows on
// cards without an hourly rate. Units are always rounded up so a partial
// period is billed as a full one.
func Calculate(card RateCard, start, end time.Time) (Quote, error) {
	if !end.After(start) {
		return Quote{}, ErrInvalidWindow
	}
	if card.Empty() {
		return Quote{}, ErrNoApplicableTier
	}

	ms := end.Sub(start).Milliseconds()
	if ms <= 0 {
		return Quote{}, ErrZeroDuration
	}
	hours := float64(ms) / msPerHour
	days := float64(ms) / msPerDay

	tier, units, ok := selectTier(card, hours, days)
	if !ok {
		return Quote{}, ErrNoApplicableTier
	}
	if units <= 0 {
		return Quote{}, ErrZeroDuration
	}

	rate, _ := card.Rate(tier)
	raw := rate * float64(units)
	if raw > maxBaseAmount || math.IsNaN(raw) {
		return Quote{}, ErrAmountOverflow
	}
	base := int64(math.Round(raw))
	fee := int64(math.Round(float64(base) * SecurityFeeRate))
	tax := int64(math.Round(float64(base) * TaxRate))

	return Quote{
		RateType:          tier,
		UnitRate:          rate,
		UnitsCharged:      units,
		TotalHours:        hours,
		TotalDays:         days,
		BaseAmount:        base,
		SecurityFeeAmount: fee,
		TaxAmount:         tax,
		TotalAmount:       base + fee + tax,
	}, nil
}

func selectTier(card RateCard, hours, days float64) (Tier, int64, bool) {
	_, hasHourly := card.Rate(TierHourly)
	_, hasDaily := card.Rate(TierDaily)
	_, hasWeekly := card.Rate(TierWeekly)
	_, hasMonthly := card.Rate(TierMonthly)

	switch {
	case days >= daysPerMonth && hasMonthly:
		return TierMonthly, ceilUnits(days / daysPerMonth), true
	case days >= daysPerWeek && hasWeekly:
		return TierWeekly, ceilUnits(days / daysPerWeek), true
	case days >= 1 && hasDaily:
		return TierDaily, ceilUnits(days), true
	case hasHourly:
		return TierHourly, ceilUnits(hours), true
	case hasDaily:
		return TierDaily, ceilUnits(days), true
	}
	return "", 0, false
}

func ceilUnits(v float64) int64 {
	return int64(math.Ceil(v))
}
