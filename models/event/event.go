package event

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"sim-bleepy/models/user"

	"github.com/jinzhu/now"
)

// Event is a scheduled teaching session that users can book onto.
type Event struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `gorm:"type:varchar(255)" json:"location"`

	OrganizerID uint      `gorm:"not null;index" json:"organizer_id"`
	Organizer   user.User `gorm:"foreignKey:OrganizerID" json:"organizer"`

	Date      time.Time `gorm:"type:date;not null;index" json:"date"`
	StartTime string    `gorm:"type:varchar(5);not null" json:"start_time"` // "HH:MM"
	EndTime   string    `gorm:"type:varchar(5);not null" json:"end_time"`   // "HH:MM"

	BookingEnabled            bool         `gorm:"default:false" json:"booking_enabled"`
	BookingCapacity           *int         `json:"booking_capacity,omitempty"` // nil = unlimited
	AllowWaitlist             bool         `gorm:"default:false" json:"allow_waitlist"`
	BookingDeadlineHours      int          `gorm:"default:0" json:"booking_deadline_hours"`
	CancellationDeadlineHours int          `gorm:"default:0" json:"cancellation_deadline_hours"`
	AllowedRoles              RoleList     `gorm:"type:json" json:"allowed_roles"` // empty = everyone
	ApprovalMode              ApprovalMode `gorm:"type:varchar(10);not null;default:auto" json:"approval_mode"`

	FeedbackEnabled     bool `gorm:"default:false" json:"feedback_enabled"`
	QRAttendanceEnabled bool `gorm:"default:false" json:"qr_attendance_enabled"`

	RequireConfirmation1 bool   `gorm:"default:false" json:"require_confirmation_1"`
	Confirmation1Label   string `gorm:"type:varchar(500)" json:"confirmation_1_label,omitempty"`
	RequireConfirmation2 bool   `gorm:"default:false" json:"require_confirmation_2"`
	Confirmation2Label   string `gorm:"type:varchar(500)" json:"confirmation_2_label,omitempty"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// SessionStart combines Date and StartTime into a concrete timestamp.
func (e *Event) SessionStart() (time.Time, error) {
	return now.Parse(e.Date.Format("2006-01-02") + " " + e.StartTime)
}

// SessionEnd combines Date and EndTime into a concrete timestamp.
func (e *Event) SessionEnd() (time.Time, error) {
	return now.Parse(e.Date.Format("2006-01-02") + " " + e.EndTime)
}

// RoleAllowed reports whether the role may book this event. An empty
// allow-list means the event is open to everyone.
func (e *Event) RoleAllowed(role string) bool {
	if len(e.AllowedRoles) == 0 {
		return true
	}
	for _, r := range e.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleList is a custom type to store a role allow-list in a JSON column.
type RoleList []string

// Scan implements the Scanner interface for database deserialization
func (rl *RoleList) Scan(value interface{}) error {
	if value == nil {
		*rl = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, rl)
}

// Value implements the driver Valuer interface for database serialization
func (rl RoleList) Value() (driver.Value, error) {
	if rl == nil {
		return nil, nil
	}
	return json.Marshal(rl)
}
