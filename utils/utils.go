package utils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"sim-bleepy/database"
	"sim-bleepy/models/user"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

var validate = validator.New()

// ValidateStruct runs the validator over the request DTO tags.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// GetEnv returns the env var or a default.
func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func GetEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	default:
		return false
	}
}

func GetEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// GetUserByID loads a user row, distinguishing "not found" for callers.
func GetUserByID(id uint) (*user.User, error) {
	var u user.User
	err := database.DB.Where("deleted_at IS NULL").First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CurrentUser resolves the authenticated user from the JWT claims the auth
// middleware stored in locals.
func CurrentUser(c *fiber.Ctx) (*user.User, error) {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid user claims")
	}

	uid, ok := claims["uid"].(float64)
	if !ok || uid <= 0 {
		return nil, errors.New("user id not found in token")
	}

	return GetUserByID(uint(uid))
}

// GenerateToken issues a signed session token for the user.
func GenerateToken(u *user.User) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}

	lifetime := time.Duration(GetEnvInt("JWT_TTL_HOURS", 24)) * time.Hour
	claims := jwt.MapClaims{
		"uid":   u.ID,
		"email": u.Email,
		"role":  u.Role,
		"exp":   time.Now().Add(lifetime).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// HoursUntil returns the (possibly negative) number of hours from `from` to
// `t`, as a float so sub-hour remainders still count against deadlines.
func HoursUntil(t, from time.Time) float64 {
	return t.Sub(from).Hours()
}

// FormatHours renders an hour count for user-facing deadline messages.
func FormatHours(h int) string {
	if h == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", h)
}
