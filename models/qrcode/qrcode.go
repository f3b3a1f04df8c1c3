package qrcode

import (
	"time"

	"sim-bleepy/models/event"
	"sim-bleepy/models/user"
)

// EventQRCode is a scannable token posted in the room for attendance
// tracking. An event may have several codes (one per door, per session half).
type EventQRCode struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	EventID uint        `gorm:"not null;index" json:"event_id"`
	Event   event.Event `gorm:"foreignKey:EventID" json:"event"`

	Token  string `gorm:"type:varchar(64);not null;unique" json:"token"`
	Label  string `gorm:"type:varchar(255)" json:"label"`
	Active bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (EventQRCode) TableName() string {
	return "event_qr_codes"
}

// QRCodeScan records one scan attempt against a code. Successful scans feed
// the feedback-invite recipient set for QR-tracked events.
type QRCodeScan struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	QRCodeID uint        `gorm:"not null;index" json:"qr_code_id"`
	QRCode   EventQRCode `gorm:"foreignKey:QRCodeID" json:"qr_code"`

	UserID uint      `gorm:"not null;index" json:"user_id"`
	User   user.User `gorm:"foreignKey:UserID" json:"user"`

	Success   bool      `gorm:"default:false" json:"success"`
	ScannedAt time.Time `gorm:"autoCreateTime" json:"scanned_at"`
}

func (QRCodeScan) TableName() string {
	return "qr_code_scans"
}
