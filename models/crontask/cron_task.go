package crontask

import (
	"time"
)

// Task types
const (
	TaskTypeFeedbackInvites = "feedback_invites"
)

// TaskStatus is the lifecycle state of one unit of deferred work.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

func (ts TaskStatus) String() string {
	return string(ts)
}

func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// CronTask is one unit of deferred work. Event-level tasks carry a nil
// UserID; per-recipient audit rows reference the recipient and reuse the
// parent key suffixed with the user id, so the unique index doubles as the
// duplicate-send guard.
type CronTask struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskType string `gorm:"type:varchar(50);not null;index" json:"task_type"`

	EventID uint  `gorm:"not null;index" json:"event_id"`
	UserID  *uint `gorm:"index" json:"user_id,omitempty"`

	RunAt  time.Time  `gorm:"not null;index" json:"run_at"`
	Status TaskStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`

	IdempotencyKey string     `gorm:"type:varchar(255);not null;unique" json:"idempotency_key"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	ErrorMessage   *string    `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
