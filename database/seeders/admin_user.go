package seeders

import (
	"errors"
	"os"

	"sim-bleepy/constants"
	"sim-bleepy/logger"
	userModel "sim-bleepy/models/user"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdminUser creates the bootstrap admin account if it does not exist.
// Controlled by SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD; a missing email
// skips seeding entirely.
func SeedAdminUser(db *gorm.DB) error {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	if email == "" {
		return nil
	}

	var existing userModel.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		return errors.New("SEED_ADMIN_PASSWORD is required when SEED_ADMIN_EMAIL is set")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := userModel.User{
		Name:         "Platform Admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         constants.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Success("Seeded bootstrap admin user " + email)
	return nil
}
