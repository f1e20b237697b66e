package builders

import (
	"time"

	"lablinc/constants"
	"lablinc/models"
	"lablinc/pricing"
)

// BookingBuilder assembles a new booking step by step.
type BookingBuilder struct {
	booking *models.Booking
}

func NewBookingBuilder() *BookingBuilder {
	return &BookingBuilder{
		booking: &models.Booking{
			Status:        models.BookingStatusPending,
			PaymentStatus: constants.BookingUnpaid,
		},
	}
}

// ForInstrument sets the instrument and its owning institute.
func (b *BookingBuilder) ForInstrument(inst *models.Instrument) *BookingBuilder {
	b.booking.InstrumentID = inst.ID
	b.booking.InstituteID = inst.InstituteID
	return b
}

func (b *BookingBuilder) WithUser(userID uint) *BookingBuilder {
	b.booking.UserID = userID
	return b
}

// WithWindow stores the window in UTC.
func (b *BookingBuilder) WithWindow(start, end time.Time) *BookingBuilder {
	b.booking.StartDate = start.UTC()
	b.booking.EndDate = end.UTC()
	return b
}

func (b *BookingBuilder) WithNotes(notes string) *BookingBuilder {
	b.booking.Notes = notes
	return b
}

func (b *BookingBuilder) WithQuote(q pricing.Quote) *BookingBuilder {
	b.booking.ApplyQuote(q)
	return b
}

func (b *BookingBuilder) Build() *models.Booking {
	return b.booking
}
