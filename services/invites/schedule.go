package invites

import (
	"errors"
	"fmt"

	crontaskModel "sim-bleepy/models/crontask"
	eventModel "sim-bleepy/models/event"

	"gorm.io/gorm"
)

// ScheduleForEvent creates the event's post-session feedback-invite task,
// due at session end. Safe to call repeatedly: the event-level idempotency
// key keeps it to one task per event. Events without booking or feedback
// enabled are skipped (the dispatcher would no-op them anyway).
func ScheduleForEvent(db *gorm.DB, ev *eventModel.Event) error {
	if !ev.BookingEnabled || !ev.FeedbackEnabled {
		return nil
	}

	key := fmt.Sprintf("%s:%d", crontaskModel.TaskTypeFeedbackInvites, ev.ID)

	var existing crontaskModel.CronTask
	err := db.Where("idempotency_key = ?", key).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	runAt, err := ev.SessionEnd()
	if err != nil {
		return fmt.Errorf("event %d has an invalid schedule: %w", ev.ID, err)
	}

	return db.Create(&crontaskModel.CronTask{
		TaskType:       crontaskModel.TaskTypeFeedbackInvites,
		EventID:        ev.ID,
		RunAt:          runAt,
		Status:         crontaskModel.TaskStatusPending,
		IdempotencyKey: key,
	}).Error
}
