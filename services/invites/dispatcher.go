// Package invites implements the batch job that emails feedback-form links
// to eligible attendees once an event's session has ended, exactly once per
// recipient.
package invites

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"sim-bleepy/logger"
	crontaskModel "sim-bleepy/models/crontask"
	eventModel "sim-bleepy/models/event"
	feedbackModel "sim-bleepy/models/feedback"
	userModel "sim-bleepy/models/user"

	"gorm.io/gorm"
)

// BatchSize bounds the work of one invocation so a run stays inside the
// platform's request budget; remaining tasks are picked up next time.
const BatchSize = 25

// Store is the data access the dispatcher needs (satisfied by
// repository.InviteStore).
type Store interface {
	DueTasks(taskType string, limit int, asOf time.Time) ([]crontaskModel.CronTask, error)
	TaskByKey(key string) (*crontaskModel.CronTask, error)
	CreateTask(t *crontaskModel.CronTask) error
	SaveTask(t *crontaskModel.CronTask) error
	CompleteTasks(ids []uint, at time.Time) error

	EventByID(id uint) (*eventModel.Event, error)
	ActiveFeedbackForm(eventID uint) (*feedbackModel.FeedbackForm, error)
	ConfirmedAttendeeIDs(eventID uint) ([]uint, error)
	ScannedAttendeeIDs(eventID uint) ([]uint, error)
	UsersByIDs(ids []uint) ([]userModel.User, error)
}

// Mailer sends the feedback-invite email (satisfied by mailer.Client).
type Mailer interface {
	SendFeedbackInvite(toEmail, toName, eventTitle, formURL string) error
}

// Pusher sends the one per-task push notification (satisfied by
// push.Client). A nil Pusher skips notifications.
type Pusher interface {
	NotifyFeedbackRequest(eventID uint, eventTitle string, recipients int) error
}

type Dispatcher struct {
	store  Store
	mailer Mailer
	pusher Pusher

	baseURL string
	clock   func() time.Time
}

func NewDispatcher(store Store, m Mailer, p Pusher, baseURL string) *Dispatcher {
	return &Dispatcher{
		store:   store,
		mailer:  m,
		pusher:  p,
		baseURL: baseURL,
		clock:   time.Now,
	}
}

// Result summarizes one batch run.
type Result struct {
	TasksProcessed int `json:"tasksProcessed"`
	InvitesSent    int `json:"invitesSent"`
}

// Run processes one batch of due feedback-invite tasks. A failure inside one
// task marks that task failed and moves on; one bad task cannot block the
// batch.
func (d *Dispatcher) Run() (Result, error) {
	now := d.clock()

	tasks, err := d.store.DueTasks(crontaskModel.TaskTypeFeedbackInvites, BatchSize, now)
	if err != nil {
		return Result{}, fmt.Errorf("loading due tasks: %w", err)
	}

	var res Result
	var doneIDs []uint

	for i := range tasks {
		task := &tasks[i]

		sent, err := d.processTask(task, now)
		res.TasksProcessed++
		if err != nil {
			logger.Error(fmt.Sprintf("Feedback-invite task %d failed", task.ID), err)
			msg := err.Error()
			task.Status = crontaskModel.TaskStatusFailed
			task.ErrorMessage = &msg
			task.ProcessedAt = &now
			if saveErr := d.store.SaveTask(task); saveErr != nil {
				logger.Error(fmt.Sprintf("Could not mark task %d failed", task.ID), saveErr)
			}
			continue
		}

		res.InvitesSent += sent
		doneIDs = append(doneIDs, task.ID)
	}

	if err := d.store.CompleteTasks(doneIDs, now); err != nil {
		return res, fmt.Errorf("completing batch: %w", err)
	}
	return res, nil
}

// processTask sends invites for one task and returns how many emails went
// out. A nil error with zero sends covers the no-op branches (feedback
// disabled, no active form, nobody eligible).
func (d *Dispatcher) processTask(task *crontaskModel.CronTask, now time.Time) (int, error) {
	ev, err := d.store.EventByID(task.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("event %d no longer exists", task.EventID)
		}
		return 0, err
	}

	// The event's workflow no longer wants a deferred email.
	if !ev.BookingEnabled || !ev.FeedbackEnabled {
		return 0, nil
	}

	form, err := d.store.ActiveFeedbackForm(ev.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil // nothing to send
		}
		return 0, err
	}

	ids, err := d.recipientIDs(ev)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	users, err := d.store.UsersByIDs(ids)
	if err != nil {
		return 0, err
	}

	// One push for the whole task, not per user. Push failure never blocks
	// the email loop.
	if d.pusher != nil {
		if err := d.pusher.NotifyFeedbackRequest(ev.ID, ev.Title, len(users)); err != nil {
			logger.Error(fmt.Sprintf("Push notification failed for event %d", ev.ID), err)
		}
	}

	formURL := fmt.Sprintf("%s/feedback/%d", d.baseURL, form.ID)
	sent := 0

	for i := range users {
		u := &users[i]
		key := task.IdempotencyKey + "|" + strconv.FormatUint(uint64(u.ID), 10)

		// An existing audit row means this recipient was already handled
		// (sent, failed, or reserved by a crashed run). Never resend.
		if _, err := d.store.TaskByKey(key); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return sent, err
		}

		// Reserve before sending: the audit row goes in as processing and
		// is flipped afterwards, so a crash between send and record cannot
		// cause a duplicate on retry.
		uid := u.ID
		audit := &crontaskModel.CronTask{
			TaskType:       task.TaskType,
			EventID:        ev.ID,
			UserID:         &uid,
			RunAt:          now,
			Status:         crontaskModel.TaskStatusProcessing,
			IdempotencyKey: key,
		}
		if err := d.store.CreateTask(audit); err != nil {
			// Most likely a unique-key collision with a concurrent run.
			logger.Error(fmt.Sprintf("Could not reserve invite for user %d", u.ID), err)
			continue
		}

		if err := d.mailer.SendFeedbackInvite(u.Email, u.Name, ev.Title, formURL); err != nil {
			// Record the failure so this recipient is never retried
			// forever; the loop continues with the next recipient.
			logger.Error(fmt.Sprintf("Feedback invite to user %d failed", u.ID), err)
			msg := err.Error()
			audit.Status = crontaskModel.TaskStatusFailed
			audit.ErrorMessage = &msg
			audit.ProcessedAt = &now
			if saveErr := d.store.SaveTask(audit); saveErr != nil {
				logger.Error(fmt.Sprintf("Could not mark invite audit %d failed", audit.ID), saveErr)
			}
			continue
		}

		audit.Status = crontaskModel.TaskStatusCompleted
		audit.ProcessedAt = &now
		if err := d.store.SaveTask(audit); err != nil {
			logger.Error(fmt.Sprintf("Could not mark invite audit %d completed", audit.ID), err)
		}
		sent++
	}

	return sent, nil
}

// recipientIDs picks the eligibility branch: QR-tracked events invite
// everyone who scanned in, everything else invites confirmed bookers.
func (d *Dispatcher) recipientIDs(ev *eventModel.Event) ([]uint, error) {
	if ev.QRAttendanceEnabled {
		return d.store.ScannedAttendeeIDs(ev.ID)
	}
	return d.store.ConfirmedAttendeeIDs(ev.ID)
}
