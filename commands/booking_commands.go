package commands

import (
	"context"

	"lablinc/models"

	"gorm.io/gorm"
)

// BookingCommand is a write against the bookings table, run inside the
// caller's transaction.
type BookingCommand interface {
	Execute(ctx context.Context) error
}

type CreateBookingCommand struct {
	booking *models.Booking
	db      *gorm.DB
}

func NewCreateBookingCommand(booking *models.Booking, db *gorm.DB) *CreateBookingCommand {
	return &CreateBookingCommand{
		booking: booking,
		db:      db,
	}
}

func (c *CreateBookingCommand) Execute(ctx context.Context) error {
	return c.db.WithContext(ctx).Omit("Instrument", "User").Create(c.booking).Error
}

// UpdateBookingStatusCommand persists the lifecycle fields of a booking.
type UpdateBookingStatusCommand struct {
	booking *models.Booking
	db      *gorm.DB
}

func NewUpdateBookingStatusCommand(booking *models.Booking, db *gorm.DB) *UpdateBookingStatusCommand {
	return &UpdateBookingStatusCommand{
		booking: booking,
		db:      db,
	}
}

func (c *UpdateBookingStatusCommand) Execute(ctx context.Context) error {
	return c.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", c.booking.ID).
		Updates(map[string]interface{}{
			"status":           c.booking.Status,
			"rejection_reason": c.booking.RejectionReason,
			"cancelled_at":     c.booking.CancelledAt,
		}).Error
}

// MarkBookingPaidCommand flags a booking as paid.
type MarkBookingPaidCommand struct {
	bookingID uint
	status    string
	db        *gorm.DB
}

func NewMarkBookingPaidCommand(bookingID uint, status string, db *gorm.DB) *MarkBookingPaidCommand {
	return &MarkBookingPaidCommand{
		bookingID: bookingID,
		status:    status,
		db:        db,
	}
}

func (c *MarkBookingPaidCommand) Execute(ctx context.Context) error {
	return c.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", c.bookingID).
		Update("payment_status", c.status).Error
}
