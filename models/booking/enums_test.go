package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatus_IsValid(t *testing.T) {
	for _, status := range GetAllBookingStatuses() {
		assert.True(t, status.IsValid(), "status %s should be valid", status)
	}
	assert.False(t, BookingStatus("approved").IsValid())
	assert.False(t, BookingStatus("").IsValid())
}

func TestBookingStatus_IsActive(t *testing.T) {
	assert.True(t, BookingStatusPending.IsActive())
	assert.True(t, BookingStatusConfirmed.IsActive())
	assert.True(t, BookingStatusWaitlist.IsActive())
	assert.False(t, BookingStatusCancelled.IsActive())
}

func TestBookingStatus_CanBeCancelled(t *testing.T) {
	assert.True(t, BookingStatusPending.CanBeCancelled())
	assert.True(t, BookingStatusConfirmed.CanBeCancelled())
	assert.True(t, BookingStatusWaitlist.CanBeCancelled())
	assert.False(t, BookingStatusCancelled.CanBeCancelled())
	assert.False(t, BookingStatusAttended.CanBeCancelled())
	assert.False(t, BookingStatusNoShow.CanBeCancelled())
}

func TestBooking_IsActiveRow(t *testing.T) {
	b := Booking{Status: BookingStatusConfirmed}
	assert.True(t, b.IsActiveRow())

	b.Status = BookingStatusCancelled
	assert.False(t, b.IsActiveRow())

	deleted := time.Now()
	b = Booking{Status: BookingStatusConfirmed, DeletedAt: &deleted}
	assert.False(t, b.IsActiveRow())
}
