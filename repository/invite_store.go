package repository

import (
	"time"

	crontaskModel "sim-bleepy/models/crontask"
	eventModel "sim-bleepy/models/event"
	feedbackModel "sim-bleepy/models/feedback"
	userModel "sim-bleepy/models/user"

	"gorm.io/gorm"
)

// InviteStore is the data access surface of the feedback-invite dispatcher
// (it satisfies invites.Store).
type InviteStore struct {
	db *gorm.DB
}

func NewInviteStore(db *gorm.DB) *InviteStore {
	return &InviteStore{db: db}
}

func (s *InviteStore) DueTasks(taskType string, limit int, asOf time.Time) ([]crontaskModel.CronTask, error) {
	var tasks []crontaskModel.CronTask
	err := s.db.
		Where("task_type = ? AND status = ? AND run_at <= ?", taskType, crontaskModel.TaskStatusPending, asOf).
		Order("run_at ASC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

func (s *InviteStore) TaskByKey(key string) (*crontaskModel.CronTask, error) {
	var t crontaskModel.CronTask
	if err := s.db.Where("idempotency_key = ?", key).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *InviteStore) CreateTask(t *crontaskModel.CronTask) error {
	return s.db.Create(t).Error
}

func (s *InviteStore) SaveTask(t *crontaskModel.CronTask) error {
	return s.db.Save(t).Error
}

func (s *InviteStore) CompleteTasks(ids []uint, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.Model(&crontaskModel.CronTask{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":       crontaskModel.TaskStatusCompleted,
			"processed_at": at,
		}).Error
}

func (s *InviteStore) EventByID(id uint) (*eventModel.Event, error) {
	var ev eventModel.Event
	if err := s.db.Where("deleted_at IS NULL").First(&ev, id).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

// ActiveFeedbackForm returns the most recently created active form for the
// event.
func (s *InviteStore) ActiveFeedbackForm(eventID uint) (*feedbackModel.FeedbackForm, error) {
	var form feedbackModel.FeedbackForm
	err := s.db.
		Where("event_id = ? AND active = ?", eventID, true).
		Order("created_at DESC").
		First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// ConfirmedAttendeeIDs returns distinct users holding a confirmed, active
// booking for the event.
func (s *InviteStore) ConfirmedAttendeeIDs(eventID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Table("event_bookings").
		Where("event_id = ? AND status = ? AND deleted_at IS NULL", eventID, "confirmed").
		Distinct("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

// ScannedAttendeeIDs returns distinct users with at least one successful
// scan against any of the event's QR codes.
func (s *InviteStore) ScannedAttendeeIDs(eventID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Table("qr_code_scans").
		Joins("JOIN event_qr_codes ON event_qr_codes.id = qr_code_scans.qr_code_id").
		Where("event_qr_codes.event_id = ? AND qr_code_scans.success = ?", eventID, true).
		Distinct("qr_code_scans.user_id").
		Pluck("qr_code_scans.user_id", &ids).Error
	return ids, err
}

func (s *InviteStore) UsersByIDs(ids []uint) ([]userModel.User, error) {
	var users []userModel.User
	err := s.db.Where("id IN ? AND deleted_at IS NULL", ids).Find(&users).Error
	return users, err
}
