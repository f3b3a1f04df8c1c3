package feedback

import (
	"time"

	"sim-bleepy/models/event"
	"sim-bleepy/models/user"
)

// FeedbackForm is a questionnaire attached to an event. The single form with
// the most recent CreatedAt and Active=true is the one invites link to.
type FeedbackForm struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	EventID uint        `gorm:"not null;index" json:"event_id"`
	Event   event.Event `gorm:"foreignKey:EventID" json:"event"`

	Title  string `gorm:"type:varchar(255);not null" json:"title"`
	Active bool   `gorm:"default:true;index" json:"active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// FeedbackResponse is one submitted answer set, stored as raw JSON.
type FeedbackResponse struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	FormID uint         `gorm:"not null;index" json:"form_id"`
	Form   FeedbackForm `gorm:"foreignKey:FormID" json:"form"`

	UserID uint      `gorm:"not null;index" json:"user_id"`
	User   user.User `gorm:"foreignKey:UserID" json:"user"`

	Answers string `gorm:"type:jsonb;not null" json:"answers"`

	SubmittedAt time.Time `gorm:"autoCreateTime" json:"submitted_at"`
}
