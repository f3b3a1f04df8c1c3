package certificate

import (
	"time"

	"sim-bleepy/models/booking"
	"sim-bleepy/models/event"
	"sim-bleepy/models/user"
)

// Certificate is an attendance certificate issued against an attended
// booking. Code is the public verification handle.
type Certificate struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	BookingID uint            `gorm:"not null;unique" json:"booking_id"`
	Booking   booking.Booking `gorm:"foreignKey:BookingID" json:"booking"`

	UserID uint      `gorm:"not null;index" json:"user_id"`
	User   user.User `gorm:"foreignKey:UserID" json:"user"`

	EventID uint        `gorm:"not null;index" json:"event_id"`
	Event   event.Event `gorm:"foreignKey:EventID" json:"event"`

	Code     string `gorm:"type:varchar(64);not null;unique" json:"code"`
	IssuedBy uint   `gorm:"not null" json:"issued_by"`

	IssuedAt  time.Time `gorm:"autoCreateTime" json:"issued_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}
