package certificate

import (
	"errors"

	"sim-bleepy/logger"
	bookingModel "sim-bleepy/models/booking"
	certificateModel "sim-bleepy/models/certificate"
	"sim-bleepy/types"
	"sim-bleepy/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CertificateController issues and verifies attendance certificates.
type CertificateController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

func NewCertificateController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *CertificateController {
	return &CertificateController{
		DB:     db,
		Logger: asyncLogger,
	}
}

type issueRequest struct {
	BookingID uint `json:"booking_id" validate:"required"`
}

// Issue creates a certificate for an attended booking.
func (cc *CertificateController) Issue(c *fiber.Ctx) error {
	var req issueRequest
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

	issuer, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	var b bookingModel.Booking
	err = cc.DB.Preload("Event").Where("deleted_at IS NULL").First(&b, req.BookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Booking not found",
		})
	}
	if err != nil {
		logger.Error("Failed to load booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if b.Status != bookingModel.BookingStatusAttended && !b.CheckedIn {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Certificates can only be issued for attended bookings",
		})
	}

	var existing certificateModel.Certificate
	err = cc.DB.Where("booking_id = ?", b.ID).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "A certificate already exists for this booking",
			Data:    existing,
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Database error while checking existing certificate", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	cert := certificateModel.Certificate{
		BookingID: b.ID,
		UserID:    b.UserID,
		EventID:   b.EventID,
		Code:      uuid.NewString(),
		IssuedBy:  issuer.ID,
	}
	if err := cc.DB.Create(&cert).Error; err != nil {
		logger.Error("Failed to create certificate", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Could not create certificate",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Certificate issued",
		Data:    cert,
	})
}

// Mine lists the caller's certificates with their events.
func (cc *CertificateController) Mine(c *fiber.Ctx) error {
	u, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	var certs []certificateModel.Certificate
	err = cc.DB.Preload("Event").
		Where("user_id = ? AND revoked_at IS NULL", u.ID).
		Order("issued_at DESC").
		Find(&certs).Error
	if err != nil {
		logger.Error("Failed to load certificates", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    certs,
	})
}

// Verify is the public endpoint behind the code printed on a certificate.
func (cc *CertificateController) Verify(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Certificate not found",
		})
	}

	var cert certificateModel.Certificate
	err := cc.DB.Preload("Event").Preload("User").
		Where("code = ? AND revoked_at IS NULL", code).
		First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Certificate not found",
		})
	}
	if err != nil {
		logger.Error("Failed to load certificate", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Certificate is valid",
		Data: fiber.Map{
			"holder":    cert.User.Name,
			"event":     cert.Event.Title,
			"issued_at": cert.IssuedAt,
			"code":      cert.Code,
		},
	})
}
