package booking

// BookingStatus is the closed lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusWaitlist  BookingStatus = "waitlist"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusAttended  BookingStatus = "attended"
	BookingStatusNoShow    BookingStatus = "no_show"
)

func (bs BookingStatus) String() string {
	return string(bs)
}

func (bs BookingStatus) IsValid() bool {
	switch bs {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusWaitlist,
		BookingStatusCancelled, BookingStatusAttended, BookingStatusNoShow:
		return true
	default:
		return false
	}
}

// IsActive reports whether the status still occupies (or may occupy) a seat.
func (bs BookingStatus) IsActive() bool {
	return bs != BookingStatusCancelled
}

// CanBeCancelled returns true if a booking in this status may transition to
// cancelled.
func (bs BookingStatus) CanBeCancelled() bool {
	switch bs {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusWaitlist:
		return true
	default:
		return false
	}
}

// GetAllBookingStatuses returns all valid booking statuses
func GetAllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusPending,
		BookingStatusConfirmed,
		BookingStatusWaitlist,
		BookingStatusCancelled,
		BookingStatusAttended,
		BookingStatusNoShow,
	}
}
