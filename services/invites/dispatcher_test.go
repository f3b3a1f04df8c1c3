package invites

import (
	"errors"
	"fmt"
	"testing"
	"time"

	crontaskModel "sim-bleepy/models/crontask"
	eventModel "sim-bleepy/models/event"
	feedbackModel "sim-bleepy/models/feedback"
	userModel "sim-bleepy/models/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- In-memory fakes ---

type fakeStore struct {
	tasks     []*crontaskModel.CronTask
	events    map[uint]*eventModel.Event
	forms     map[uint]*feedbackModel.FeedbackForm
	confirmed map[uint][]uint
	scanned   map[uint][]uint
	users     map[uint]userModel.User
	nextID    uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:    map[uint]*eventModel.Event{},
		forms:     map[uint]*feedbackModel.FeedbackForm{},
		confirmed: map[uint][]uint{},
		scanned:   map[uint][]uint{},
		users:     map[uint]userModel.User{},
	}
}

func (f *fakeStore) DueTasks(taskType string, limit int, asOf time.Time) ([]crontaskModel.CronTask, error) {
	var due []crontaskModel.CronTask
	for _, t := range f.tasks {
		if t.TaskType == taskType && t.Status == crontaskModel.TaskStatusPending && !t.RunAt.After(asOf) {
			due = append(due, *t)
			if len(due) == limit {
				break
			}
		}
	}
	return due, nil
}

func (f *fakeStore) TaskByKey(key string) (*crontaskModel.CronTask, error) {
	for _, t := range f.tasks {
		if t.IdempotencyKey == key {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) CreateTask(t *crontaskModel.CronTask) error {
	if _, err := f.TaskByKey(t.IdempotencyKey); err == nil {
		return errors.New("duplicate idempotency key")
	}
	f.nextID++
	t.ID = f.nextID
	f.tasks = append(f.tasks, t)
	return nil
}

func (f *fakeStore) SaveTask(t *crontaskModel.CronTask) error {
	for i, existing := range f.tasks {
		if existing.ID == t.ID {
			f.tasks[i] = t
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeStore) CompleteTasks(ids []uint, at time.Time) error {
	for _, id := range ids {
		for _, t := range f.tasks {
			if t.ID == id {
				t.Status = crontaskModel.TaskStatusCompleted
				processedAt := at
				t.ProcessedAt = &processedAt
			}
		}
	}
	return nil
}

func (f *fakeStore) EventByID(id uint) (*eventModel.Event, error) {
	ev, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ev, nil
}

func (f *fakeStore) ActiveFeedbackForm(eventID uint) (*feedbackModel.FeedbackForm, error) {
	form, ok := f.forms[eventID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return form, nil
}

func (f *fakeStore) ConfirmedAttendeeIDs(eventID uint) ([]uint, error) {
	return f.confirmed[eventID], nil
}

func (f *fakeStore) ScannedAttendeeIDs(eventID uint) ([]uint, error) {
	return f.scanned[eventID], nil
}

func (f *fakeStore) UsersByIDs(ids []uint) ([]userModel.User, error) {
	var out []userModel.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) taskByKey(t *testing.T, key string) *crontaskModel.CronTask {
	t.Helper()
	task, err := f.TaskByKey(key)
	require.NoError(t, err, "expected audit row for key %s", key)
	return task
}

type sentMail struct {
	toEmail string
	formURL string
}

type fakeMailer struct {
	sent    []sentMail
	failFor map[string]error
}

func (m *fakeMailer) SendFeedbackInvite(toEmail, toName, eventTitle, formURL string) error {
	if err, ok := m.failFor[toEmail]; ok {
		return err
	}
	m.sent = append(m.sent, sentMail{toEmail: toEmail, formURL: formURL})
	return nil
}

type fakePusher struct {
	calls      int
	recipients int
	err        error
}

func (p *fakePusher) NotifyFeedbackRequest(eventID uint, eventTitle string, recipients int) error {
	p.calls++
	p.recipients = recipients
	return p.err
}

// --- Fixtures ---

var runTime = time.Date(2026, 5, 10, 12, 30, 0, 0, time.UTC)

func seedEvent(store *fakeStore) *eventModel.Event {
	ev := &eventModel.Event{
		ID:              1,
		Title:           "Acute Care Teaching",
		BookingEnabled:  true,
		FeedbackEnabled: true,
	}
	store.events[ev.ID] = ev
	store.forms[ev.ID] = &feedbackModel.FeedbackForm{ID: 7, EventID: ev.ID, Title: "Session feedback", Active: true}
	return ev
}

func seedTask(store *fakeStore, eventID uint) *crontaskModel.CronTask {
	task := &crontaskModel.CronTask{
		TaskType:       crontaskModel.TaskTypeFeedbackInvites,
		EventID:        eventID,
		RunAt:          runTime.Add(-time.Hour),
		Status:         crontaskModel.TaskStatusPending,
		IdempotencyKey: fmt.Sprintf("%s:%d", crontaskModel.TaskTypeFeedbackInvites, eventID),
	}
	_ = store.CreateTask(task)
	return task
}

func seedUser(store *fakeStore, id uint, email string) {
	store.users[id] = userModel.User{ID: id, Name: fmt.Sprintf("User %d", id), Email: email}
}

func newTestDispatcher(store *fakeStore, m *fakeMailer, p *fakePusher) *Dispatcher {
	var pusher Pusher
	if p != nil {
		pusher = p
	}
	d := NewDispatcher(store, m, pusher, "https://sim.example.org")
	d.clock = func() time.Time { return runTime }
	return d
}

// --- Tests ---

func TestRun_SendsInvitesToConfirmedBookers(t *testing.T) {
	store := newFakeStore()
	ev := seedEvent(store)
	task := seedTask(store, ev.ID)
	seedUser(store, 10, "a@example.org")
	seedUser(store, 11, "b@example.org")
	store.confirmed[ev.ID] = []uint{10, 11}

	mailer := &fakeMailer{}
	pusher := &fakePusher{}
	d := newTestDispatcher(store, mailer, pusher)

	res, err := d.Run()

	require.NoError(t, err)
	assert.Equal(t, 1, res.TasksProcessed)
	assert.Equal(t, 2, res.InvitesSent)
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "https://sim.example.org/feedback/7", mailer.sent[0].formURL)

	// One push covering the whole task.
	assert.Equal(t, 1, pusher.calls)
	assert.Equal(t, 2, pusher.recipients)

	// Parent task completed, one completed audit row per recipient.
	parent := store.taskByKey(t, task.IdempotencyKey)
	assert.Equal(t, crontaskModel.TaskStatusCompleted, parent.Status)
	require.NotNil(t, parent.ProcessedAt)

	for _, uid := range []string{"10", "11"} {
		audit := store.taskByKey(t, task.IdempotencyKey+"|"+uid)
		assert.Equal(t, crontaskModel.TaskStatusCompleted, audit.Status)
		require.NotNil(t, audit.UserID)
	}
}

func TestRun_SecondRunSendsNothing(t *testing.T) {
	store := newFakeStore()
	ev := seedEvent(store)
	seedTask(store, ev.ID)
	seedUser(store, 10, "a@example.org")
	store.confirmed[ev.ID] = []uint{10}

	mailer := &fakeMailer{}
	d := newTestDispatcher(store, mailer, nil)

	res, err := d.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, res.InvitesSent)

	res, err = d.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, res.TasksProcessed, "completed tasks are no longer due")
	assert.Equal(t, 0, res.InvitesSent)
	assert.Len(t, mailer.sent, 1)
}

func TestRun_ExistingAuditRowBlocksResend(t *testing.T) {
	store := newFakeStore()
	ev := seedEvent(store)
	task := seedTask(store, ev.ID)
	seedUser(store, 10, "a@example.org")
	seedUser(store, 11, "b@example.org")
	store.confirmed[ev.ID] = []uint{10, 11}

	// User 10 was reserved by an earlier run that crashed mid-send.
	uid := uint(10)
	require.NoError(t, store.CreateTask(&crontaskModel.CronTask{
		TaskType:       task.TaskType,
		EventID:        ev.ID,
		UserID:         &uid,
		RunAt:          runTime.Add(-time.Hour),
		Status:         crontaskModel.TaskStatusProcessing,
		IdempotencyKey: task.IdempotencyKey + "|10",
	}))

	mailer := &fakeMailer{}
	d := newTestDispatcher(store, mailer, nil)

	res, err := d.Run()

	require.NoError(t, err)
	assert.Equal(t, 1, res.InvitesSent, "only the unreserved recipient gets mail")
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "b@example.org", mailer.sent[0].toEmail)
}

func TestRun_QRBranchUsesScannedAttendees(t *testing.T) {
	store := newFakeStore()
	ev := seedEvent(store)
	ev.QRAttendanceEnabled = true
	seedTask(store, ev.ID)
	seedUser(store, 10, "booked@example.org")
	seedUser(store, 20, "scanned@example.org")
	store.confirmed[ev.ID] = []uint{10}
	store.scanned[ev.ID] = []uint{20}

	mailer := &fakeMailer{}
	d := newTestDispatcher(store, mailer, nil)

	res, err := d.Run()

	require.NoError(t, err)
	assert.Equal(t, 1, res.InvitesSent)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "scanned@example.org", mailer.sent[0].toEmail)
}

func TestRun_FeedbackDisabledCompletesWithoutSending(t *testing.T) {
	store := newFakeStore()
	ev := seedEvent(store)
	ev.FeedbackEnabled = false
	task := seedTask(store, ev.ID)
	seedUser(store, 10, "a@example.org")
	store.confirmed[ev.ID] = []uint{10}

	mailer := &fakeMailer{}
	d := newTestDispatcher(store, mailer, nil)

	res, err := d.Run()

	require.NoError(t, err)
	assert.Equal(t, 1, res.TasksProcessed)
	assert.Equal(t, 0, res.InvitesSent)
	assert.Empty(t, mailer.sent)
	parent := store.taskByKey(t, task.IdempotencyKey)
	assert.Equal(t, crontaskModel.TaskStatusCompleted, parent.Status)
}

func TestRun_NoActiveFormIsANoOp(t *testing.T) {
	store := newFakeStore()
	ev := seedEvent(store)
	delete(store.forms, ev.ID)
	task := seedTask(store, ev.ID)
	seedUser(store, 10, "a@example.org")
	store.confirmed[ev.ID] = []uint{10}

	mailer := &fakeMailer{}
	d := newTestDispatcher(store, mailer, nil)

	res, err := d.Run()

	require.NoError(t, err)
	assert.Equal(t, 0, res.InvitesSent)
	parent := store.taskByKey(t, task.IdempotencyKey)
	assert.Equal(t, crontaskModel.TaskStatusCompleted, parent.Status)
}

func TestRun_MissingEventMarksTaskFailed(t *testing.T) {
	store := newFakeStore()
	task := seedTask(store, 42) // no such event

	mailer := &fakeMailer{}
	d := newTestDispatcher(store, mailer, nil)

	res, err := d.Run()

	require.NoError(t, err)
	assert.Equal(t, 1, res.TasksProcessed)
	assert.Equal(t, 0, res.InvitesSent)

	parent := store.taskByKey(t, task.IdempotencyKey)
	assert.Equal(t, crontaskModel.TaskStatusFailed, parent.Status)
	require.NotNil(t, parent.ErrorMessage)
	assert.Contains(t, *parent.ErrorMessage, "no longer exists")
	require.NotNil(t, parent.ProcessedAt)
}

func TestRun_MailFailureRecordsFailedAuditAndContinues(t *testing.T) {
	store := newFakeStore()
	ev := seedEvent(store)
	task := seedTask(store, ev.ID)
	seedUser(store, 10, "broken@example.org")
	seedUser(store, 11, "fine@example.org")
	store.confirmed[ev.ID] = []uint{10, 11}

	mailer := &fakeMailer{failFor: map[string]error{
		"broken@example.org": errors.New("smtp relay refused"),
	}}
	d := newTestDispatcher(store, mailer, nil)

	res, err := d.Run()

	require.NoError(t, err)
	assert.Equal(t, 1, res.InvitesSent)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "fine@example.org", mailer.sent[0].toEmail)

	failed := store.taskByKey(t, task.IdempotencyKey+"|10")
	assert.Equal(t, crontaskModel.TaskStatusFailed, failed.Status)
	require.NotNil(t, failed.ErrorMessage)
	assert.Contains(t, *failed.ErrorMessage, "smtp relay refused")

	ok := store.taskByKey(t, task.IdempotencyKey+"|11")
	assert.Equal(t, crontaskModel.TaskStatusCompleted, ok.Status)

	// The parent task still completes; the failed recipient is recorded,
	// not retried.
	parent := store.taskByKey(t, task.IdempotencyKey)
	assert.Equal(t, crontaskModel.TaskStatusCompleted, parent.Status)
}

func TestRun_TaskNotDueYet(t *testing.T) {
	store := newFakeStore()
	ev := seedEvent(store)
	task := seedTask(store, ev.ID)
	task.RunAt = runTime.Add(time.Hour)
	seedUser(store, 10, "a@example.org")
	store.confirmed[ev.ID] = []uint{10}

	mailer := &fakeMailer{}
	d := newTestDispatcher(store, mailer, nil)

	res, err := d.Run()

	require.NoError(t, err)
	assert.Equal(t, 0, res.TasksProcessed)
	assert.Empty(t, mailer.sent)
}
