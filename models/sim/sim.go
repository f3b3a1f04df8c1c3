package sim

import (
	"time"

	"sim-bleepy/models/user"
)

// SimScenario is a clinical-simulation practice case: a patient brief the
// student responds to in free text.
type SimScenario struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string `gorm:"type:varchar(255);not null" json:"title"`
	Brief     string `gorm:"type:text;not null" json:"brief"`
	Published bool   `gorm:"default:false;index" json:"published"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Attempt statuses
const (
	AttemptStatusProcessing = "processing"
	AttemptStatusCompleted  = "completed"
	AttemptStatusFailed     = "failed"
)

// SimAttempt is one submitted answer. Scoring runs asynchronously; Status
// moves processing -> completed/failed and Feedback holds the scorer's JSON.
type SimAttempt struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	ScenarioID uint        `gorm:"not null;index" json:"scenario_id"`
	Scenario   SimScenario `gorm:"foreignKey:ScenarioID" json:"scenario"`

	UserID uint      `gorm:"not null;index" json:"user_id"`
	User   user.User `gorm:"foreignKey:UserID" json:"user"`

	Answer string `gorm:"type:text;not null" json:"answer"`

	Status   string  `gorm:"type:varchar(20);not null;default:processing" json:"status"`
	Score    *int    `json:"score,omitempty"`
	Feedback *string `gorm:"type:jsonb" json:"feedback,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
