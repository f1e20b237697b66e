package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is wrapped by every rejected lifecycle change.
var ErrInvalidTransition = errors.New("invalid booking status transition")

// BookingAction is a lifecycle command.
type BookingAction string

const (
	ActionConfirm  BookingAction = "confirm"
	ActionReject   BookingAction = "reject"
	ActionComplete BookingAction = "complete"
	ActionCancel   BookingAction = "cancel"
)

// BookingState handles lifecycle commands for one status.
type BookingState interface {
	Confirm(b *Booking) error
	Reject(b *Booking, reason string) error
	Complete(b *Booking) error
	Cancel(b *Booking, at time.Time) error
}

// terminalState rejects every command.
type terminalState struct {
	status string
}

func (s terminalState) deny(action BookingAction) error {
	return fmt.Errorf("%w: cannot %s a %s booking", ErrInvalidTransition, action, s.status)
}

func (s terminalState) Confirm(*Booking) error { return s.deny(ActionConfirm) }
func (s terminalState) Reject(*Booking, string) error { return s.deny(ActionReject) }
func (s terminalState) Complete(*Booking) error { return s.deny(ActionComplete) }
func (s terminalState) Cancel(*Booking, time.Time) error { return s.deny(ActionCancel) }

// PendingState waits for the institute's decision.
type PendingState struct {
	terminalState
}

func (s *PendingState) Confirm(b *Booking) error {
	b.Status = BookingStatusConfirmed
	return nil
}

func (s *PendingState) Reject(b *Booking, reason string) error {
	b.Status = BookingStatusRejected
	b.RejectionReason = reason
	return nil
}

func (s *PendingState) Cancel(b *Booking, at time.Time) error {
	b.Status = BookingStatusCancelled
	b.CancelledAt = &at
	return nil
}

// ConfirmedState holds the slot until the session ends.
type ConfirmedState struct {
	terminalState
}

func (s *ConfirmedState) Complete(b *Booking) error {
	b.Status = BookingStatusCompleted
	return nil
}

func (s *ConfirmedState) Cancel(b *Booking, at time.Time) error {
	b.Status = BookingStatusCancelled
	b.CancelledAt = &at
	return nil
}

// GetBookingState returns the state handling a status.
func GetBookingState(status string) BookingState {
	switch status {
	case BookingStatusPending:
		return &PendingState{terminalState{status}}
	case BookingStatusConfirmed:
		return &ConfirmedState{terminalState{status}}
	default:
		return terminalState{status}
	}
}

// Apply runs action against the booking's current state.
func (b *Booking) Apply(action BookingAction, reason string, now time.Time) error {
	state := GetBookingState(b.Status)
	switch action {
	case ActionConfirm:
		return state.Confirm(b)
	case ActionReject:
		return state.Reject(b, reason)
	case ActionComplete:
		return state.Complete(b)
	case ActionCancel:
		return state.Cancel(b, now)
	}
	return fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
}
