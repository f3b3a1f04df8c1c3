package user

import (
	"time"

	"sim-bleepy/constants"
)

// User is a platform account. Role decides whether the account is a regular
// user (student) or admin-equivalent (educator, admin, meded_team, ctf).
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Email        string `gorm:"type:varchar(255);not null;unique" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Role         string `gorm:"type:varchar(50);not null;default:student;index" json:"role"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// IsPrivileged reports whether the user holds an admin-equivalent role.
func (u *User) IsPrivileged() bool {
	return constants.IsPrivileged(u.Role)
}
