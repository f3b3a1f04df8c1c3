package auth

import (
	"errors"
	"time"

	"sim-bleepy/constants"
	"sim-bleepy/logger"
	userModel "sim-bleepy/models/user"
	"sim-bleepy/types"
	authTypes "sim-bleepy/types/auth"
	"sim-bleepy/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthController handles registration and session management.
type AuthController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

func NewAuthController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *AuthController {
	return &AuthController{
		DB:     db,
		Logger: asyncLogger,
	}
}

// Register creates a new account. Self-registration is limited to the
// student and educator roles; admin-equivalent roles are seeded or promoted
// by an existing admin.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req authTypes.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	role := req.Role
	if role == "" {
		role = constants.RoleStudent
	}
	if role != constants.RoleStudent && role != constants.RoleEducator {
		return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "This role cannot be self-registered",
		})
	}

	var existing userModel.User
	err := ac.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "An account with this email already exists",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Database error while checking existing user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Could not create account",
		})
	}

	u := userModel.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := ac.DB.Create(&u).Error; err != nil {
		logger.Error("Failed to create user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Could not create account",
		})
	}

	token, err := utils.GenerateToken(&u)
	if err != nil {
		logger.Error("Failed to issue token", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Could not issue session token",
		})
	}

	ac.setSessionCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Account created",
		Token:   token,
		Data:    u,
	})
}

// Login verifies credentials and issues a session token.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req authTypes.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	var u userModel.User
	err := ac.DB.Where("email = ? AND deleted_at IS NULL", req.Email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}
	if err != nil {
		logger.Error("Database error during login", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	token, err := utils.GenerateToken(&u)
	if err != nil {
		logger.Error("Failed to issue token", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Could not issue session token",
		})
	}

	ac.setSessionCookie(c, token)
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Logged in",
		Token:   token,
		Data:    u,
	})
}

// Profile returns the authenticated user's account.
func (ac *AuthController) Profile(c *fiber.Ctx) error {
	u, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
		})
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    u,
	})
}

// LogOut clears the session cookie.
func (ac *AuthController) LogOut(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "access",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Logged out",
	})
}

func (ac *AuthController) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access",
		Value:    token,
		Expires:  time.Now().Add(time.Duration(utils.GetEnvInt("JWT_TTL_HOURS", 24)) * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}
