// Package booking holds the booking mutation rules: creation with capacity
// and waitlist assignment, cancellation with deadline enforcement, soft
// deletion, and waitlist promotion.
package booking

import (
	"errors"
	"fmt"
	"time"

	"sim-bleepy/logger"
	bookingModel "sim-bleepy/models/booking"
	eventModel "sim-bleepy/models/event"
	userModel "sim-bleepy/models/user"
	"sim-bleepy/repository"

	"gorm.io/gorm"
)

// Human-readable status messages returned alongside a created booking.
const (
	MsgBooked          = "booked"
	MsgWaitlisted      = "waitlisted"
	MsgPendingApproval = "pending approval"
)

type Service struct {
	bookings repository.BookingRepository
	events   repository.EventRepository

	clock func() time.Time
	// syncPromote makes waitlist promotion run inline instead of on a
	// goroutine; tests set it to observe the promotion result.
	syncPromote bool
}

func NewService(bookings repository.BookingRepository, events repository.EventRepository) *Service {
	return &Service{
		bookings: bookings,
		events:   events,
		clock:    time.Now,
	}
}

// CreateInput is the validated payload for a booking request.
type CreateInput struct {
	EventID       uint
	Confirmation1 bool
	Confirmation2 bool
	Notes         *string
}

// Create runs the precondition chain and inserts the booking. The whole
// chain runs inside one transaction holding a row lock on the event, so the
// duplicate check and the capacity count cannot race a concurrent request
// for the same event.
func (s *Service) Create(u *userModel.User, in CreateInput) (*bookingModel.Booking, string, error) {
	var result *bookingModel.Booking
	var message string

	err := s.bookings.InTx(func(tx *gorm.DB) error {
		ev, err := s.events.FindByIDForUpdate(tx, in.EventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		if !ev.BookingEnabled {
			return ErrBookingNotEnabled
		}

		if !ev.RoleAllowed(u.Role) {
			return &RoleNotPermittedError{Allowed: ev.AllowedRoles}
		}

		start, err := ev.SessionStart()
		if err != nil {
			return fmt.Errorf("event %d has an invalid schedule: %w", ev.ID, err)
		}
		deadline := start.Add(-time.Duration(ev.BookingDeadlineHours) * time.Hour)
		if !s.clock().Before(deadline) {
			return ErrDeadlinePassed
		}

		existing, err := s.bookings.FindActiveByUserAndEvent(tx, u.ID, ev.ID)
		if err == nil {
			return &DuplicateBookingError{ExistingID: existing.ID, Status: existing.Status}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if ev.RequireConfirmation1 && !in.Confirmation1 {
			return &ConfirmationRequiredError{Label: ev.Confirmation1Label}
		}
		if ev.RequireConfirmation2 && !in.Confirmation2 {
			return &ConfirmationRequiredError{Label: ev.Confirmation2Label}
		}

		status, err := s.decideStatus(tx, ev)
		if err != nil {
			return err
		}

		b := &bookingModel.Booking{
			UserID:        u.ID,
			EventID:       ev.ID,
			Status:        status,
			BookedAt:      s.clock(),
			Confirmation1: in.Confirmation1,
			Confirmation2: in.Confirmation2,
			Notes:         in.Notes,
		}
		if err := s.bookings.Create(tx, b); err != nil {
			return err
		}
		b.Event = *ev

		result = b
		message = statusMessage(status)
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return result, message, nil
}

// decideStatus assigns the initial booking status. Manual approval mode
// overrides capacity logic entirely.
func (s *Service) decideStatus(tx *gorm.DB, ev *eventModel.Event) (bookingModel.BookingStatus, error) {
	if ev.ApprovalMode == eventModel.ApprovalModeManual {
		return bookingModel.BookingStatusPending, nil
	}

	if ev.BookingCapacity == nil {
		return bookingModel.BookingStatusConfirmed, nil
	}

	confirmed, err := s.bookings.CountByStatus(tx, ev.ID, bookingModel.BookingStatusConfirmed)
	if err != nil {
		return "", err
	}
	if confirmed < int64(*ev.BookingCapacity) {
		return bookingModel.BookingStatusConfirmed, nil
	}
	if ev.AllowWaitlist {
		return bookingModel.BookingStatusWaitlist, nil
	}
	return "", ErrFullyBooked
}

func statusMessage(status bookingModel.BookingStatus) string {
	switch status {
	case bookingModel.BookingStatusWaitlist:
		return MsgWaitlisted
	case bookingModel.BookingStatusPending:
		return MsgPendingApproval
	default:
		return MsgBooked
	}
}

// UpdateInput is the validated payload for a booking update. Nil fields are
// untouched.
type UpdateInput struct {
	Status             *bookingModel.BookingStatus
	CancellationReason *string
	Notes              *string
	CheckedIn          *bool
}

// Update applies a booking mutation. Regular users may only cancel their own
// booking, subject to the cancellation deadline; admin-equivalent roles may
// change any field on any booking and bypass the deadline. Cancelling a
// previously confirmed booking as admin fires the waitlist promoter after
// the update commits.
func (s *Service) Update(actor *userModel.User, bookingID uint, in UpdateInput) (*bookingModel.Booking, string, error) {
	b, err := s.bookings.FindByID(bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrBookingNotFound
		}
		return nil, "", err
	}

	isAdmin := actor.IsPrivileged()
	if !isAdmin {
		if b.UserID != actor.ID {
			return nil, "", ErrNotOwner
		}
		// The only self-service mutation is cancellation.
		if in.Status == nil || *in.Status != bookingModel.BookingStatusCancelled ||
			in.Notes != nil || in.CheckedIn != nil {
			return nil, "", ErrOwnerCancelOnly
		}

		if hrs := b.Event.CancellationDeadlineHours; hrs > 0 {
			start, err := b.Event.SessionStart()
			if err != nil {
				return nil, "", fmt.Errorf("event %d has an invalid schedule: %w", b.EventID, err)
			}
			if start.Sub(s.clock()).Hours() < float64(hrs) {
				return nil, "", &CancellationDeadlineError{Hours: hrs}
			}
		}
	}

	wasConfirmed := b.Status == bookingModel.BookingStatusConfirmed
	now := s.clock()
	message := "booking updated"

	if in.Status != nil {
		if !in.Status.IsValid() {
			return nil, "", ErrInvalidStatus
		}
		b.Status = *in.Status
		if *in.Status == bookingModel.BookingStatusCancelled {
			b.CancelledAt = &now
			b.CancellationReason = in.CancellationReason
			message = "booking cancelled"
		}
	}
	if in.Notes != nil {
		b.Notes = in.Notes
	}
	if in.CheckedIn != nil {
		b.CheckedIn = *in.CheckedIn
		if *in.CheckedIn {
			b.CheckedInAt = &now
		} else {
			b.CheckedInAt = nil
		}
	}

	if err := s.bookings.Save(b); err != nil {
		return nil, "", err
	}

	// Freeing a confirmed seat hands it to the oldest waitlisted booking.
	// Promotion is fire-and-forget: the cancellation has committed, so a
	// promotion failure is logged but never fails this request.
	if isAdmin && wasConfirmed && b.Status == bookingModel.BookingStatusCancelled {
		if s.syncPromote {
			s.PromoteOldestWaitlisted(b.EventID)
		} else {
			go s.PromoteOldestWaitlisted(b.EventID)
		}
	}

	return b, message, nil
}

// PromoteOldestWaitlisted confirms the oldest waitlisted booking of the
// event, if any. It trusts that a seat is free because a confirmed booking
// was just cancelled; there is no capacity re-check and no retry.
func (s *Service) PromoteOldestWaitlisted(eventID uint) {
	b, err := s.bookings.FindOldestWaitlisted(eventID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error(fmt.Sprintf("Waitlist promotion lookup failed for event %d", eventID), err)
		}
		return
	}

	b.Status = bookingModel.BookingStatusConfirmed
	if err := s.bookings.Save(b); err != nil {
		logger.Error(fmt.Sprintf("Waitlist promotion failed for booking %d", b.ID), err)
		return
	}
	logger.Info(fmt.Sprintf("Promoted booking %d (event %d) from waitlist to confirmed", b.ID, eventID))
}

// Delete soft-deletes a booking, or hard-deletes it when an admin asks
// explicitly. Soft-deleted rows stay in the table but vanish from every
// read path.
func (s *Service) Delete(actor *userModel.User, bookingID uint, hard bool) error {
	b, err := s.bookings.FindByID(bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		return err
	}

	isAdmin := actor.IsPrivileged()
	if !isAdmin && b.UserID != actor.ID {
		return ErrNotOwner
	}

	if hard {
		if !isAdmin {
			return ErrHardDeleteDenied
		}
		return s.bookings.HardDelete(b)
	}

	now := s.clock()
	b.DeletedAt = &now
	b.DeletedBy = &actor.ID
	return s.bookings.Save(b)
}
