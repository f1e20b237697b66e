package services

import (
	"errors"
	"time"

	apperrors "lablinc/errors"
	"lablinc/models"
	"lablinc/pricing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var quoteOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lablinc",
	Name:      "quotes_total",
	Help:      "Price quotes computed, by call site and outcome.",
}, []string{"source", "outcome"})

// Quote call sites.
const (
	QuoteSourceEstimate = "estimate"
	QuoteSourceBooking  = "booking"
)

// QuoteForInstrument prices [start, end) against the instrument's stored
// rate card. The quote endpoint and booking creation both go through here.
func QuoteForInstrument(inst *models.Instrument, start, end time.Time) (pricing.Quote, error) {
	q, err := pricing.Calculate(inst.RateCard(), start, end)
	if err != nil {
		return pricing.Quote{}, quoteError(err)
	}
	return q, nil
}

func quoteWithMetrics(source string, inst *models.Instrument, start, end time.Time) (pricing.Quote, error) {
	q, err := QuoteForInstrument(inst, start, end)
	outcome := "ok"
	if appErr := apperrors.GetAppError(err); appErr != nil {
		outcome = string(appErr.Code)
	}
	quoteOutcomes.WithLabelValues(source, outcome).Inc()
	return q, err
}

func quoteError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrInvalidWindow):
		return apperrors.NewAppError(apperrors.ErrCodeInvalidWindow, "End date must be after start date", err)
	case errors.Is(err, pricing.ErrZeroDuration):
		return apperrors.NewAppError(apperrors.ErrCodeZeroDuration, "Booking duration is too short to be charged", err)
	case errors.Is(err, pricing.ErrAmountOverflow):
		return apperrors.NewAppError(apperrors.ErrCodeInvalidAmount, "Booking amount is too large", err)
	case errors.Is(err, pricing.ErrNoApplicableTier):
		return apperrors.NewAppError(apperrors.ErrCodeNoApplicableTier, "This instrument has no rate for the selected duration", err)
	}
	return err
}
