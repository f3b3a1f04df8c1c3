package booking

import (
	"errors"
	"fmt"

	bookingModel "sim-bleepy/models/booking"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrBookingNotEnabled = errors.New("booking is not enabled for this event")
	ErrDeadlinePassed    = errors.New("the booking deadline for this event has passed")
	ErrFullyBooked       = errors.New("this event is fully booked")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrNotOwner          = errors.New("you can only manage your own bookings")
	ErrOwnerCancelOnly   = errors.New("you can only cancel your own booking")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrHardDeleteDenied  = errors.New("only an admin can permanently delete a booking")
)

// RoleNotPermittedError carries the allow-list for client display.
type RoleNotPermittedError struct {
	Allowed []string
}

func (e *RoleNotPermittedError) Error() string {
	return "your role is not permitted to book this event"
}

// DuplicateBookingError carries the existing booking so the client can show
// it instead of creating another one.
type DuplicateBookingError struct {
	ExistingID uint
	Status     bookingModel.BookingStatus
}

func (e *DuplicateBookingError) Error() string {
	return fmt.Sprintf("you already have an active booking for this event (booking %d, status %s)", e.ExistingID, e.Status)
}

// ConfirmationRequiredError names the checkbox the request left unchecked.
type ConfirmationRequiredError struct {
	Label string
}

func (e *ConfirmationRequiredError) Error() string {
	if e.Label == "" {
		return "a required confirmation checkbox was not checked"
	}
	return fmt.Sprintf("required confirmation not checked: %s", e.Label)
}

// CancellationDeadlineError names the deadline the cancellation missed.
type CancellationDeadlineError struct {
	Hours int
}

func (e *CancellationDeadlineError) Error() string {
	return fmt.Sprintf("bookings can no longer be cancelled within %d hours of the event start", e.Hours)
}
