package booking

import (
	"testing"
	"time"

	bookingModel "sim-bleepy/models/booking"
	eventModel "sim-bleepy/models/event"
	userModel "sim-bleepy/models/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- In-memory fakes ---

type fakeEventRepo struct {
	events map[uint]*eventModel.Event
}

func (f *fakeEventRepo) FindByID(id uint) (*eventModel.Event, error) {
	ev, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ev, nil
}

func (f *fakeEventRepo) FindByIDForUpdate(tx *gorm.DB, id uint) (*eventModel.Event, error) {
	return f.FindByID(id)
}

type fakeBookingRepo struct {
	events   *fakeEventRepo
	bookings []*bookingModel.Booking
	nextID   uint
}

func (f *fakeBookingRepo) InTx(fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (f *fakeBookingRepo) FindByID(id uint) (*bookingModel.Booking, error) {
	for _, b := range f.bookings {
		if b.ID == id && b.DeletedAt == nil {
			copied := *b
			if ev, ok := f.events.events[b.EventID]; ok {
				copied.Event = *ev
			}
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBookingRepo) FindActiveByUserAndEvent(tx *gorm.DB, userID, eventID uint) (*bookingModel.Booking, error) {
	for _, b := range f.bookings {
		if b.UserID == userID && b.EventID == eventID && b.IsActiveRow() {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBookingRepo) CountByStatus(tx *gorm.DB, eventID uint, status bookingModel.BookingStatus) (int64, error) {
	var n int64
	for _, b := range f.bookings {
		if b.EventID == eventID && b.Status == status && b.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookingRepo) Create(tx *gorm.DB, b *bookingModel.Booking) error {
	f.nextID++
	b.ID = f.nextID
	f.bookings = append(f.bookings, b)
	return nil
}

func (f *fakeBookingRepo) Save(b *bookingModel.Booking) error {
	for i, existing := range f.bookings {
		if existing.ID == b.ID {
			f.bookings[i] = b
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeBookingRepo) FindOldestWaitlisted(eventID uint) (*bookingModel.Booking, error) {
	var oldest *bookingModel.Booking
	for _, b := range f.bookings {
		if b.EventID != eventID || b.Status != bookingModel.BookingStatusWaitlist || b.DeletedAt != nil {
			continue
		}
		if oldest == nil || b.BookedAt.Before(oldest.BookedAt) {
			oldest = b
		}
	}
	if oldest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return oldest, nil
}

func (f *fakeBookingRepo) HardDelete(b *bookingModel.Booking) error {
	for i, existing := range f.bookings {
		if existing.ID == b.ID {
			f.bookings = append(f.bookings[:i], f.bookings[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// --- Fixtures ---

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.Local)

func intPtr(n int) *int { return &n }

func sampleEvent() *eventModel.Event {
	return &eventModel.Event{
		ID:                   1,
		Title:                "Paediatric Sim Session",
		Date:                 time.Date(2026, 5, 10, 0, 0, 0, 0, time.Local),
		StartTime:            "09:00",
		EndTime:              "12:00",
		BookingEnabled:       true,
		BookingCapacity:      intPtr(2),
		AllowWaitlist:        true,
		BookingDeadlineHours: 1,
		ApprovalMode:         eventModel.ApprovalModeAuto,
	}
}

func sampleUser(id uint, role string) *userModel.User {
	return &userModel.User{ID: id, Name: "Test User", Role: role}
}

func newTestService(ev *eventModel.Event) (*Service, *fakeBookingRepo) {
	events := &fakeEventRepo{events: map[uint]*eventModel.Event{}}
	if ev != nil {
		events.events[ev.ID] = ev
	}
	bookings := &fakeBookingRepo{events: events}
	svc := NewService(bookings, events)
	svc.clock = func() time.Time { return testNow }
	svc.syncPromote = true
	return svc, bookings
}

// --- Create ---

func TestCreate_ConfirmedUnderCapacity(t *testing.T) {
	svc, repo := newTestService(sampleEvent())

	b, msg, err := svc.Create(sampleUser(10, "student"), CreateInput{EventID: 1})

	require.NoError(t, err)
	assert.Equal(t, bookingModel.BookingStatusConfirmed, b.Status)
	assert.Equal(t, MsgBooked, msg)
	assert.Equal(t, testNow, b.BookedAt)
	assert.Len(t, repo.bookings, 1)
}

func TestCreate_WaitlistWhenFull(t *testing.T) {
	svc, repo := newTestService(sampleEvent())

	for i := uint(1); i <= 2; i++ {
		_, _, err := svc.Create(sampleUser(i, "student"), CreateInput{EventID: 1})
		require.NoError(t, err)
	}

	b, msg, err := svc.Create(sampleUser(3, "student"), CreateInput{EventID: 1})

	require.NoError(t, err)
	assert.Equal(t, bookingModel.BookingStatusWaitlist, b.Status)
	assert.Equal(t, MsgWaitlisted, msg)
	assert.Len(t, repo.bookings, 3)
}

func TestCreate_FullyBookedWithoutWaitlist(t *testing.T) {
	ev := sampleEvent()
	ev.AllowWaitlist = false
	svc, repo := newTestService(ev)

	for i := uint(1); i <= 2; i++ {
		_, _, err := svc.Create(sampleUser(i, "student"), CreateInput{EventID: 1})
		require.NoError(t, err)
	}

	b, _, err := svc.Create(sampleUser(3, "student"), CreateInput{EventID: 1})

	assert.ErrorIs(t, err, ErrFullyBooked)
	assert.Nil(t, b)
	assert.Len(t, repo.bookings, 2, "a rejected request must not insert a row")
}

func TestCreate_UnlimitedCapacity(t *testing.T) {
	ev := sampleEvent()
	ev.BookingCapacity = nil
	svc, _ := newTestService(ev)

	for i := uint(1); i <= 5; i++ {
		b, _, err := svc.Create(sampleUser(i, "student"), CreateInput{EventID: 1})
		require.NoError(t, err)
		assert.Equal(t, bookingModel.BookingStatusConfirmed, b.Status)
	}
}

func TestCreate_ManualApprovalPending(t *testing.T) {
	ev := sampleEvent()
	ev.ApprovalMode = eventModel.ApprovalModeManual
	svc, _ := newTestService(ev)

	b, msg, err := svc.Create(sampleUser(10, "student"), CreateInput{EventID: 1})

	require.NoError(t, err)
	assert.Equal(t, bookingModel.BookingStatusPending, b.Status)
	assert.Equal(t, MsgPendingApproval, msg)
}

func TestCreate_DuplicateActiveBooking(t *testing.T) {
	svc, _ := newTestService(sampleEvent())

	first, _, err := svc.Create(sampleUser(10, "student"), CreateInput{EventID: 1})
	require.NoError(t, err)

	_, _, err = svc.Create(sampleUser(10, "student"), CreateInput{EventID: 1})

	var dup *DuplicateBookingError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, first.ID, dup.ExistingID)
	assert.Equal(t, bookingModel.BookingStatusConfirmed, dup.Status)
}

func TestCreate_CancelledBookingDoesNotBlockRebooking(t *testing.T) {
	svc, repo := newTestService(sampleEvent())

	first, _, err := svc.Create(sampleUser(10, "student"), CreateInput{EventID: 1})
	require.NoError(t, err)

	repo.bookings[0].Status = bookingModel.BookingStatusCancelled

	second, _, err := svc.Create(sampleUser(10, "student"), CreateInput{EventID: 1})

	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreate_DeadlinePassed(t *testing.T) {
	svc, _ := newTestService(sampleEvent())
	// 30 minutes before a 09:00 start with a 1 hour deadline.
	svc.clock = func() time.Time {
		return time.Date(2026, 5, 10, 8, 30, 0, 0, time.Local)
	}

	_, _, err := svc.Create(sampleUser(10, "student"), CreateInput{EventID: 1})

	assert.ErrorIs(t, err, ErrDeadlinePassed)
}

func TestCreate_BookingNotEnabled(t *testing.T) {
	ev := sampleEvent()
	ev.BookingEnabled = false
	svc, _ := newTestService(ev)

	_, _, err := svc.Create(sampleUser(10, "student"), CreateInput{EventID: 1})

	assert.ErrorIs(t, err, ErrBookingNotEnabled)
}

func TestCreate_EventNotFound(t *testing.T) {
	svc, _ := newTestService(nil)

	_, _, err := svc.Create(sampleUser(10, "student"), CreateInput{EventID: 99})

	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestCreate_RoleNotPermitted(t *testing.T) {
	ev := sampleEvent()
	ev.AllowedRoles = eventModel.RoleList{"educator", "admin"}
	svc, _ := newTestService(ev)

	_, _, err := svc.Create(sampleUser(10, "student"), CreateInput{EventID: 1})

	var roleErr *RoleNotPermittedError
	require.ErrorAs(t, err, &roleErr)
	assert.Equal(t, []string{"educator", "admin"}, roleErr.Allowed)
}

func TestCreate_MissingConfirmation(t *testing.T) {
	ev := sampleEvent()
	ev.RequireConfirmation1 = true
	ev.Confirmation1Label = "I have discussed attendance with my supervisor"
	svc, _ := newTestService(ev)

	_, _, err := svc.Create(sampleUser(10, "student"), CreateInput{EventID: 1})

	var confErr *ConfirmationRequiredError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, ev.Confirmation1Label, confErr.Label)

	b, _, err := svc.Create(sampleUser(10, "student"), CreateInput{EventID: 1, Confirmation1: true})
	require.NoError(t, err)
	assert.True(t, b.Confirmation1)
}

// --- Update ---

func seedBooking(repo *fakeBookingRepo, userID uint, status bookingModel.BookingStatus, bookedAt time.Time) *bookingModel.Booking {
	b := &bookingModel.Booking{
		UserID:   userID,
		EventID:  1,
		Status:   status,
		BookedAt: bookedAt,
	}
	_ = repo.Create(nil, b)
	return b
}

func cancelInput() UpdateInput {
	status := bookingModel.BookingStatusCancelled
	return UpdateInput{Status: &status}
}

func TestUpdate_OwnerCancels(t *testing.T) {
	svc, repo := newTestService(sampleEvent())
	b := seedBooking(repo, 10, bookingModel.BookingStatusConfirmed, testNow)

	updated, msg, err := svc.Update(sampleUser(10, "student"), b.ID, cancelInput())

	require.NoError(t, err)
	assert.Equal(t, bookingModel.BookingStatusCancelled, updated.Status)
	assert.Equal(t, "booking cancelled", msg)
	require.NotNil(t, updated.CancelledAt)
	assert.Equal(t, testNow, *updated.CancelledAt)
}

func TestUpdate_OwnerCancelInsideDeadline(t *testing.T) {
	ev := sampleEvent()
	ev.CancellationDeadlineHours = 24
	svc, repo := newTestService(ev)
	b := seedBooking(repo, 10, bookingModel.BookingStatusConfirmed, testNow)

	// 12 hours before a 09:00 start.
	svc.clock = func() time.Time {
		return time.Date(2026, 5, 9, 21, 0, 0, 0, time.Local)
	}

	_, _, err := svc.Update(sampleUser(10, "student"), b.ID, cancelInput())

	var deadlineErr *CancellationDeadlineError
	require.ErrorAs(t, err, &deadlineErr)
	assert.Equal(t, 24, deadlineErr.Hours)
}

func TestUpdate_AdminBypassesCancellationDeadline(t *testing.T) {
	ev := sampleEvent()
	ev.CancellationDeadlineHours = 24
	svc, repo := newTestService(ev)
	b := seedBooking(repo, 10, bookingModel.BookingStatusConfirmed, testNow)

	svc.clock = func() time.Time {
		return time.Date(2026, 5, 9, 21, 0, 0, 0, time.Local)
	}

	updated, _, err := svc.Update(sampleUser(1, "admin"), b.ID, cancelInput())

	require.NoError(t, err)
	assert.Equal(t, bookingModel.BookingStatusCancelled, updated.Status)
}

func TestUpdate_OwnerCannotChangeOtherFields(t *testing.T) {
	svc, repo := newTestService(sampleEvent())
	b := seedBooking(repo, 10, bookingModel.BookingStatusWaitlist, testNow)

	status := bookingModel.BookingStatusConfirmed
	_, _, err := svc.Update(sampleUser(10, "student"), b.ID, UpdateInput{Status: &status})
	assert.ErrorIs(t, err, ErrOwnerCancelOnly)

	notes := "please move me up"
	_, _, err = svc.Update(sampleUser(10, "student"), b.ID, UpdateInput{Notes: &notes})
	assert.ErrorIs(t, err, ErrOwnerCancelOnly)
}

func TestUpdate_NotOwner(t *testing.T) {
	svc, repo := newTestService(sampleEvent())
	b := seedBooking(repo, 10, bookingModel.BookingStatusConfirmed, testNow)

	_, _, err := svc.Update(sampleUser(11, "student"), b.ID, cancelInput())

	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestUpdate_InvalidStatus(t *testing.T) {
	svc, repo := newTestService(sampleEvent())
	b := seedBooking(repo, 10, bookingModel.BookingStatusConfirmed, testNow)

	status := bookingModel.BookingStatus("bogus")
	_, _, err := svc.Update(sampleUser(1, "admin"), b.ID, UpdateInput{Status: &status})

	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdate_AdminCheckIn(t *testing.T) {
	svc, repo := newTestService(sampleEvent())
	b := seedBooking(repo, 10, bookingModel.BookingStatusConfirmed, testNow)

	checkedIn := true
	updated, _, err := svc.Update(sampleUser(1, "meded_team"), b.ID, UpdateInput{CheckedIn: &checkedIn})

	require.NoError(t, err)
	assert.True(t, updated.CheckedIn)
	require.NotNil(t, updated.CheckedInAt)
}

func TestUpdate_AdminCancelPromotesOldestWaitlisted(t *testing.T) {
	svc, repo := newTestService(sampleEvent())

	a := seedBooking(repo, 1, bookingModel.BookingStatusConfirmed, testNow)
	seedBooking(repo, 2, bookingModel.BookingStatusConfirmed, testNow.Add(time.Minute))
	c := seedBooking(repo, 3, bookingModel.BookingStatusWaitlist, testNow.Add(2*time.Minute))
	seedBooking(repo, 4, bookingModel.BookingStatusWaitlist, testNow.Add(3*time.Minute))

	_, _, err := svc.Update(sampleUser(99, "admin"), a.ID, cancelInput())
	require.NoError(t, err)

	promoted, err := repo.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.BookingStatusConfirmed, promoted.Status,
		"the oldest waitlisted booking takes the freed seat")

	later, err := repo.FindByID(c.ID + 1)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.BookingStatusWaitlist, later.Status)
}

func TestUpdate_OwnerCancelDoesNotPromote(t *testing.T) {
	svc, repo := newTestService(sampleEvent())

	a := seedBooking(repo, 1, bookingModel.BookingStatusConfirmed, testNow)
	c := seedBooking(repo, 3, bookingModel.BookingStatusWaitlist, testNow.Add(time.Minute))

	_, _, err := svc.Update(sampleUser(1, "student"), a.ID, cancelInput())
	require.NoError(t, err)

	still, err := repo.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.BookingStatusWaitlist, still.Status)
}

func TestCapacityTwoScenario(t *testing.T) {
	svc, repo := newTestService(sampleEvent())

	a, _, err := svc.Create(sampleUser(1, "student"), CreateInput{EventID: 1})
	require.NoError(t, err)
	b, _, err := svc.Create(sampleUser(2, "student"), CreateInput{EventID: 1})
	require.NoError(t, err)
	c, _, err := svc.Create(sampleUser(3, "student"), CreateInput{EventID: 1})
	require.NoError(t, err)

	assert.Equal(t, bookingModel.BookingStatusConfirmed, a.Status)
	assert.Equal(t, bookingModel.BookingStatusConfirmed, b.Status)
	assert.Equal(t, bookingModel.BookingStatusWaitlist, c.Status)

	_, _, err = svc.Update(sampleUser(99, "admin"), a.ID, cancelInput())
	require.NoError(t, err)

	bAfter, err := repo.FindByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.BookingStatusConfirmed, bAfter.Status)

	cAfter, err := repo.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.BookingStatusConfirmed, cAfter.Status)

	confirmed, err := repo.CountByStatus(nil, 1, bookingModel.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, 2, confirmed, "the confirmed count holds at capacity")
}

// --- Delete ---

func TestDelete_SoftDelete(t *testing.T) {
	svc, repo := newTestService(sampleEvent())
	b := seedBooking(repo, 10, bookingModel.BookingStatusConfirmed, testNow)

	err := svc.Delete(sampleUser(10, "student"), b.ID, false)

	require.NoError(t, err)
	require.NotNil(t, repo.bookings[0].DeletedAt)
	assert.Equal(t, uint(10), *repo.bookings[0].DeletedBy)

	_, err = svc.bookings.FindByID(b.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDelete_HardDeleteRequiresAdmin(t *testing.T) {
	svc, repo := newTestService(sampleEvent())
	b := seedBooking(repo, 10, bookingModel.BookingStatusConfirmed, testNow)

	err := svc.Delete(sampleUser(10, "student"), b.ID, true)
	assert.ErrorIs(t, err, ErrHardDeleteDenied)

	err = svc.Delete(sampleUser(1, "admin"), b.ID, true)
	require.NoError(t, err)
	assert.Empty(t, repo.bookings)
}

func TestDelete_NotOwner(t *testing.T) {
	svc, repo := newTestService(sampleEvent())
	b := seedBooking(repo, 10, bookingModel.BookingStatusConfirmed, testNow)

	err := svc.Delete(sampleUser(11, "student"), b.ID, false)

	assert.ErrorIs(t, err, ErrNotOwner)
}
