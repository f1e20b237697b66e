package validator

import (
	"fmt"
	"math"
	"regexp"
	"sync"

	"lablinc/constants"
	"lablinc/errors"
	"lablinc/pricing"

	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"
)

var (
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,14}$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	registerOnce sync.Once
	registerErr  error
)

// RegisterBindings adds the custom tags used in dto binding rules to gin's
// validator. Safe to call more than once.
func RegisterBindings() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*playground.Validate)
		if !ok {
			return
		}
		if registerErr = v.RegisterValidation("phone", func(fl playground.FieldLevel) bool {
			return phoneRegex.MatchString(fl.Field().String())
		}); registerErr != nil {
			return
		}
		registerErr = v.RegisterValidation("instrument_status", func(fl playground.FieldLevel) bool {
			return IsInstrumentStatus(fl.Field().String())
		})
	})
	return registerErr
}

func IsInstrumentStatus(s string) bool {
	switch s {
	case constants.InstrumentStatusAvailable, constants.InstrumentStatusMaintenance, constants.InstrumentStatusInactive:
		return true
	}
	return false
}

// ValidateRateCard requires at least one tier and rates within [0, pricing.MaxRate].
func ValidateRateCard(card pricing.RateCard) error {
	for _, r := range []*float64{card.Hourly, card.Daily, card.Weekly, card.Monthly} {
		if r == nil {
			continue
		}
		if *r < 0 || math.IsNaN(*r) || math.IsInf(*r, 0) {
			return errors.NewAppError(errors.ErrCodeInvalidAmount, "Rates must be zero or positive", nil)
		}
		if *r > pricing.MaxRate {
			return errors.NewAppError(errors.ErrCodeInvalidAmount, fmt.Sprintf("Rates cannot exceed %.0f", pricing.MaxRate), nil)
		}
	}
	if card.Empty() {
		return errors.NewAppError(errors.ErrCodeNoApplicableTier, "At least one of hourly, daily, weekly or monthly rate is required", nil)
	}
	return nil
}

// ValidateEmail checks the address format.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return errors.NewAppError(errors.ErrCodeInvalidFormat, "Invalid email address", nil)
	}
	return nil
}

// ValidatePhone checks a 10 to 14 digit number with optional leading +.
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return errors.NewAppError(errors.ErrCodeInvalidFormat, "Invalid phone number", nil)
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.NewAppError(errors.ErrCodeInvalidPassword, "Password must be at least 8 characters", nil)
	}
	return nil
}

func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return errors.NewAppError(errors.ErrCodeValidation, "Rating must be between 1 and 5", nil)
	}
	return nil
}
