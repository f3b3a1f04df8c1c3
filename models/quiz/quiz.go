package quiz

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"sim-bleepy/models/user"
)

// Quiz is a published set of multiple-choice questions.
type Quiz struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Published   bool   `gorm:"default:false;index" json:"published"`

	Questions []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// QuizQuestion holds one MCQ. CorrectIndex never leaves the server.
type QuizQuestion struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID uint `gorm:"not null;index" json:"quiz_id"`

	Prompt       string     `gorm:"type:text;not null" json:"prompt"`
	Options      OptionList `gorm:"type:json;not null" json:"options"`
	CorrectIndex int        `gorm:"not null" json:"-"`
	Position     int        `gorm:"default:0" json:"position"`
}

// QuizAttempt is one auto-scored submission.
type QuizAttempt struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID uint `gorm:"not null;index" json:"quiz_id"`

	UserID uint      `gorm:"not null;index" json:"user_id"`
	User   user.User `gorm:"foreignKey:UserID" json:"user"`

	Score int `gorm:"not null" json:"score"`
	Total int `gorm:"not null" json:"total"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// OptionList stores answer options in a JSON column.
type OptionList []string

// Scan implements the Scanner interface for database deserialization
func (ol *OptionList) Scan(value interface{}) error {
	if value == nil {
		*ol = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, ol)
}

// Value implements the driver Valuer interface for database serialization
func (ol OptionList) Value() (driver.Value, error) {
	if ol == nil {
		return nil, nil
	}
	return json.Marshal(ol)
}
