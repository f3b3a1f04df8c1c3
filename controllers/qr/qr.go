package qr

import (
	"errors"
	"time"

	"sim-bleepy/logger"
	bookingModel "sim-bleepy/models/booking"
	eventModel "sim-bleepy/models/event"
	qrcodeModel "sim-bleepy/models/qrcode"
	"sim-bleepy/types"
	qrTypes "sim-bleepy/types/qr"
	"sim-bleepy/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QRController issues attendance QR codes and records scans.
type QRController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

func NewQRController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *QRController {
	return &QRController{
		DB:     db,
		Logger: asyncLogger,
	}
}

// StoreCode issues a new QR code token for an event.
func (qc *QRController) StoreCode(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("id")
	if err != nil || eventID <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Event not found",
		})
	}

	// The body is optional; the label defaults to empty.
	var req qrTypes.CodeCreateRequest
	_ = c.BodyParser(&req)
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	var ev eventModel.Event
	err = qc.DB.Where("deleted_at IS NULL").First(&ev, eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Event not found",
		})
	}
	if err != nil {
		logger.Error("Failed to load event", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if !ev.QRAttendanceEnabled {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "QR attendance is not enabled for this event",
		})
	}

	code := qrcodeModel.EventQRCode{
		EventID: ev.ID,
		Token:   uuid.NewString(),
		Label:   req.Label,
		Active:  true,
	}
	if err := qc.DB.Create(&code).Error; err != nil {
		logger.Error("Failed to create QR code", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Could not create QR code",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "QR code created",
		Data:    code,
	})
}

// Scan checks the caller in against a QR token: records the scan and, when
// the caller holds an active booking for the event, marks it checked in.
func (qc *QRController) Scan(c *fiber.Ctx) error {
	var req qrTypes.ScanRequest
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

	u, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	var code qrcodeModel.EventQRCode
	err = qc.DB.Where("token = ? AND active = ?", req.Token, true).First(&code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "QR code not recognized",
		})
	}
	if err != nil {
		logger.Error("Failed to load QR code", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	scan := qrcodeModel.QRCodeScan{
		QRCodeID: code.ID,
		UserID:   u.ID,
		Success:  true,
	}
	if err := qc.DB.Create(&scan).Error; err != nil {
		logger.Error("Failed to record scan", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Could not record scan",
		})
	}

	// Check in the caller's booking if they hold one. A QR-tracked event
	// may admit walk-ins, so a missing booking is not an error.
	var b bookingModel.Booking
	err = bookingModel.ActiveScope(qc.DB).
		Where("user_id = ? AND event_id = ?", u.ID, code.EventID).
		First(&b).Error
	if err == nil && !b.CheckedIn {
		now := time.Now()
		b.CheckedIn = true
		b.CheckedInAt = &now
		if err := qc.DB.Save(&b).Error; err != nil {
			logger.Error("Failed to check in booking", err)
		}
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Checked in",
		Data:    scan,
	})
}
