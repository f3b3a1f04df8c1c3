package booking

import (
	"errors"
	"time"

	"sim-bleepy/logger"
	bookingModel "sim-bleepy/models/booking"
	"sim-bleepy/repository"
	bookingService "sim-bleepy/services/booking"
	"sim-bleepy/types"
	bookingTypes "sim-bleepy/types/booking"
	"sim-bleepy/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BookingController handles booking-related HTTP requests
type BookingController struct {
	DB      *gorm.DB
	Logger  *logger.AsyncLogger
	Service *bookingService.Service
}

// NewBookingController creates a new booking controller
func NewBookingController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *BookingController {
	return &BookingController{
		DB:     db,
		Logger: asyncLogger,
		Service: bookingService.NewService(
			repository.NewBookingRepository(db),
			repository.NewEventRepository(db),
		),
	}
}

// Index lists the caller's active bookings with their event details.
func (bc *BookingController) Index(c *fiber.Ctx) error {
	u, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	var bookings []bookingModel.Booking
	err = bookingModel.ActiveScope(bc.DB).
		Preload("Event").
		Where("user_id = ?", u.ID).
		Order("booked_at DESC").
		Find(&bookings).Error
	if err != nil {
		logger.Error("Failed to load bookings for user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// Store creates a new booking for the caller.
func (bc *BookingController) Store(c *fiber.Ctx) error {
	var req bookingTypes.BookingCreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	u, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	b, message, err := bc.Service.Create(u, bookingService.CreateInput{
		EventID:       req.EventID,
		Confirmation1: req.Confirmation1,
		Confirmation2: req.Confirmation2,
		Notes:         req.Notes,
	})
	if err != nil {
		return bc.serviceError(c, err)
	}

	bc.audit(c, fiber.StatusCreated, &u.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"booking": b,
		"message": message,
	})
}

// Show returns one booking; only its owner or an admin-equivalent role may
// view it.
func (bc *BookingController) Show(c *fiber.Ctx) error {
	u, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	var b bookingModel.Booking
	err = bc.DB.Preload("Event").Preload("User").
		Where("deleted_at IS NULL").
		First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if err != nil {
		logger.Error("Failed to load booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	if b.UserID != u.ID && !u.IsPrivileged() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only view your own bookings"})
	}

	return c.JSON(fiber.Map{"booking": b})
}

// Update cancels or edits a booking. Owners can only cancel; everything else
// needs an admin-equivalent role.
func (bc *BookingController) Update(c *fiber.Ctx) error {
	var req bookingTypes.BookingUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	u, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	in := bookingService.UpdateInput{
		CancellationReason: req.CancellationReason,
		Notes:              req.Notes,
		CheckedIn:          req.CheckedIn,
	}
	if req.Status != nil {
		status := bookingModel.BookingStatus(*req.Status)
		in.Status = &status
	}

	b, message, err := bc.Service.Update(u, uint(id), in)
	if err != nil {
		return bc.serviceError(c, err)
	}

	bc.audit(c, fiber.StatusOK, &u.ID)
	return c.JSON(fiber.Map{
		"booking": b,
		"message": message,
	})
}

// Destroy soft-deletes a booking; admins may hard-delete with ?hard=true.
func (bc *BookingController) Destroy(c *fiber.Ctx) error {
	u, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	hard := c.Query("hard") == "true"
	if err := bc.Service.Delete(u, uint(id), hard); err != nil {
		return bc.serviceError(c, err)
	}

	message := "booking deleted"
	if hard {
		message = "booking permanently deleted"
	}

	bc.audit(c, fiber.StatusOK, &u.ID)
	return c.JSON(fiber.Map{"message": message})
}

// serviceError maps service failures onto the 400/403/404/500 taxonomy,
// attaching structured detail where the client can use it.
func (bc *BookingController) serviceError(c *fiber.Ctx, err error) error {
	var roleErr *bookingService.RoleNotPermittedError
	if errors.As(err, &roleErr) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":        roleErr.Error(),
			"allowedRoles": roleErr.Allowed,
		})
	}

	var dupErr *bookingService.DuplicateBookingError
	if errors.As(err, &dupErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":             dupErr.Error(),
			"existingBookingId": dupErr.ExistingID,
			"existingStatus":    dupErr.Status,
		})
	}

	var confErr *bookingService.ConfirmationRequiredError
	if errors.As(err, &confErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": confErr.Error()})
	}

	var deadlineErr *bookingService.CancellationDeadlineError
	if errors.As(err, &deadlineErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": deadlineErr.Error()})
	}

	switch {
	case errors.Is(err, bookingService.ErrEventNotFound),
		errors.Is(err, bookingService.ErrBookingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, bookingService.ErrNotOwner),
		errors.Is(err, bookingService.ErrOwnerCancelOnly),
		errors.Is(err, bookingService.ErrHardDeleteDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, bookingService.ErrBookingNotEnabled),
		errors.Is(err, bookingService.ErrDeadlinePassed),
		errors.Is(err, bookingService.ErrFullyBooked),
		errors.Is(err, bookingService.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	logger.Error("Booking operation failed", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// audit queues a request audit entry; the async logger persists it off the
// request path.
func (bc *BookingController) audit(c *fiber.Ctx, status int, userID *uint) {
	if bc.Logger == nil {
		return
	}
	bc.Logger.Log(types.LogEntry{
		Method:      c.Method(),
		URL:         c.OriginalURL(),
		RequestBody: string(c.Body()),
		StatusCode:  status,
		UserID:      userID,
		CreatedAt:   time.Now(),
	})
}
