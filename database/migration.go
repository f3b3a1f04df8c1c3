package database

import (
	certificateModel "sim-bleepy/models/certificate"
	bookingModel "sim-bleepy/models/booking"
	crontaskModel "sim-bleepy/models/crontask"
	eventModel "sim-bleepy/models/event"
	feedbackModel "sim-bleepy/models/feedback"
	logModel "sim-bleepy/models/log"
	qrcodeModel "sim-bleepy/models/qrcode"
	quizModel "sim-bleepy/models/quiz"
	simModel "sim-bleepy/models/sim"
	userModel "sim-bleepy/models/user"
)

// autoMigrate runs auto migration for all models in dependency stages so
// foreign keys always find their target tables.
func autoMigrate() error {
	// Stage 1: Core foundation models
	stage1 := []interface{}{
		&userModel.User{},
		&logModel.Log{},
	}

	// Stage 2: Models referencing users
	stage2 := []interface{}{
		&eventModel.Event{},
		&quizModel.Quiz{},
		&quizModel.QuizQuestion{},
		&simModel.SimScenario{},
	}

	// Stage 3: Models referencing events
	stage3 := []interface{}{
		&bookingModel.Booking{},
		&crontaskModel.CronTask{},
		&feedbackModel.FeedbackForm{},
		&feedbackModel.FeedbackResponse{},
		&qrcodeModel.EventQRCode{},
		&qrcodeModel.QRCodeScan{},
		&quizModel.QuizAttempt{},
		&simModel.SimAttempt{},
	}

	// Stage 4: Models referencing bookings
	stage4 := []interface{}{
		&certificateModel.Certificate{},
	}

	for _, stage := range [][]interface{}{stage1, stage2, stage3, stage4} {
		if err := DB.AutoMigrate(stage...); err != nil {
			return err
		}
	}
	return nil
}

// createIndexes adds the indexes AutoMigrate cannot express. The partial
// unique index is the backstop for the one-active-booking-per-user-per-event
// invariant: concurrent create requests that slip past the in-transaction
// duplicate check collide here instead of double-booking.
func createIndexes() error {
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_booking_per_user_event
			ON event_bookings (user_id, event_id)
			WHERE status <> 'cancelled' AND deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_event_bookings_event_status
			ON event_bookings (event_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_cron_tasks_due
			ON cron_tasks (task_type, status, run_at)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_forms_event_active
			ON feedback_forms (event_id, active, created_at DESC)`,
	}

	for _, stmt := range statements {
		if err := DB.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
