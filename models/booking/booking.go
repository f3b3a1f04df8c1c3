package booking

import (
	"time"

	"sim-bleepy/models/event"
	"sim-bleepy/models/user"

	"gorm.io/gorm"
)

// Booking links one user to one event. At most one active booking may exist
// per (user, event) pair; a partial unique index in the migration backs this
// up at the database level.
type Booking struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	UserID uint      `gorm:"not null;index" json:"user_id"`
	User   user.User `gorm:"foreignKey:UserID" json:"user"`

	EventID uint        `gorm:"not null;index" json:"event_id"`
	Event   event.Event `gorm:"foreignKey:EventID" json:"event"`

	Status   BookingStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	BookedAt time.Time     `gorm:"not null" json:"booked_at"`

	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason *string    `gorm:"type:text" json:"cancellation_reason,omitempty"`

	CheckedIn   bool       `gorm:"default:false" json:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`

	Confirmation1 bool    `gorm:"default:false" json:"confirmation_1"`
	Confirmation2 bool    `gorm:"default:false" json:"confirmation_2"`
	Notes         *string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"` // Soft delete field
	DeletedBy *uint      `json:"deleted_by,omitempty"`
}

func (Booking) TableName() string {
	return "event_bookings"
}

// IsActiveRow reports whether this booking still counts: not cancelled and
// not soft-deleted. Every read path filters on the same predicate.
func (b *Booking) IsActiveRow() bool {
	return b.DeletedAt == nil && b.Status != BookingStatusCancelled
}

// ActiveScope applies the active-booking predicate to a query.
func ActiveScope(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL AND status <> ?", BookingStatusCancelled)
}
