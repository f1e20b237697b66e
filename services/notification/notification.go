package notification

import (
	"fmt"
	"time"

	"github.com/olahol/melody"
)

// SessionUserKey is the melody session key holding the user id.
const SessionUserKey = "userID"

// Service pushes a payload to every live session of a user.
type Service interface {
	SendToUser(userID uint, message []byte) error
}

type MelodyService struct {
	m *melody.Melody
}

func NewMelodyService(m *melody.Melody) *MelodyService {
	return &MelodyService{m: m}
}

func (s *MelodyService) SendToUser(userID uint, message []byte) error {
	if s.m == nil {
		return fmt.Errorf("melody instance is nil")
	}
	return s.m.BroadcastFilter(message, func(sess *melody.Session) bool {
		v, ok := sess.Get(SessionUserKey)
		if !ok {
			return false
		}
		id, ok := v.(uint)
		return ok && id == userID
	})
}

// Nop drops every message.
type Nop struct{}

func (Nop) SendToUser(uint, []byte) error { return nil }

// MessageBuilder renders booking notifications.
type MessageBuilder struct {
	bookingID  uint
	instrument string
	start      time.Time
	end        time.Time
	reason     string
	loc        *time.Location
}

func NewMessageBuilder(bookingID uint, instrument string) *MessageBuilder {
	return &MessageBuilder{
		bookingID:  bookingID,
		instrument: instrument,
		loc:        time.UTC,
	}
}

func (b *MessageBuilder) WithWindow(start, end time.Time) *MessageBuilder {
	b.start = start
	b.end = end
	return b
}

func (b *MessageBuilder) WithReason(reason string) *MessageBuilder {
	b.reason = reason
	return b
}

func (b *MessageBuilder) In(loc *time.Location) *MessageBuilder {
	if loc != nil {
		b.loc = loc
	}
	return b
}

func (b *MessageBuilder) window() string {
	if b.start.IsZero() {
		return ""
	}
	const layout = "02 Jan 2006 15:04"
	return fmt.Sprintf(" (%s to %s)", b.start.In(b.loc).Format(layout), b.end.In(b.loc).Format(layout))
}

// Build returns the title and body for event.
func (b *MessageBuilder) Build(event string) (string, string) {
	var title, body string
	switch event {
	case "created":
		title = "New booking request"
		body = fmt.Sprintf("Booking #%d for %s%s is waiting for your approval.", b.bookingID, b.instrument, b.window())
	case "confirmed":
		title = "Booking confirmed"
		body = fmt.Sprintf("Your booking #%d for %s%s has been confirmed.", b.bookingID, b.instrument, b.window())
	case "rejected":
		title = "Booking rejected"
		body = fmt.Sprintf("Your booking #%d for %s was rejected.", b.bookingID, b.instrument)
	case "completed":
		title = "Booking completed"
		body = fmt.Sprintf("Booking #%d for %s is complete. You can now leave a review.", b.bookingID, b.instrument)
	case "cancelled":
		title = "Booking cancelled"
		body = fmt.Sprintf("Booking #%d for %s%s has been cancelled.", b.bookingID, b.instrument, b.window())
	case "expired":
		title = "Booking expired"
		body = fmt.Sprintf("Booking #%d for %s was not confirmed before its start time and has been cancelled.", b.bookingID, b.instrument)
	case "reminder":
		title = "Upcoming booking"
		body = fmt.Sprintf("Reminder: booking #%d for %s starts soon%s.", b.bookingID, b.instrument, b.window())
	case "paid":
		title = "Payment received"
		body = fmt.Sprintf("Payment for booking #%d (%s) was received.", b.bookingID, b.instrument)
	default:
		title = "Booking update"
		body = fmt.Sprintf("Booking #%d for %s was updated.", b.bookingID, b.instrument)
	}
	if b.reason != "" {
		body += " Reason: " + b.reason
	}
	return title, body
}
