package event

import (
	"errors"
	"time"

	"sim-bleepy/logger"
	eventModel "sim-bleepy/models/event"
	"sim-bleepy/services/invites"
	"sim-bleepy/types"
	eventTypes "sim-bleepy/types/event"
	"sim-bleepy/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// EventController handles event management. Mutations are limited to
// admin-equivalent roles at the routing layer.
type EventController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

func NewEventController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *EventController {
	return &EventController{
		DB:     db,
		Logger: asyncLogger,
	}
}

// Index lists events, soonest first.
func (ec *EventController) Index(c *fiber.Ctx) error {
	var events []eventModel.Event
	err := ec.DB.Where("deleted_at IS NULL").
		Order("date ASC, start_time ASC").
		Find(&events).Error
	if err != nil {
		logger.Error("Failed to load events", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    events,
	})
}

// Show returns one event with its organizer.
func (ec *EventController) Show(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Event not found",
		})
	}

	var ev eventModel.Event
	err = ec.DB.Preload("Organizer").Where("deleted_at IS NULL").First(&ev, id).Error
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

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    ev,
	})
}

// Store creates an event and, when its workflow calls for one, schedules
// the post-session feedback-invite task.
func (ec *EventController) Store(c *fiber.Ctx) error {
	var req eventTypes.EventCreateRequest
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

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid event date",
		})
	}

	approvalMode := eventModel.ApprovalModeAuto
	if req.ApprovalMode != "" {
		approvalMode = eventModel.ApprovalMode(req.ApprovalMode)
	}

	ev := eventModel.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		OrganizerID: u.ID,
		Date:        date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,

		BookingEnabled:            req.BookingEnabled,
		BookingCapacity:           req.BookingCapacity,
		AllowWaitlist:             req.AllowWaitlist,
		BookingDeadlineHours:      req.BookingDeadlineHours,
		CancellationDeadlineHours: req.CancellationDeadlineHours,
		AllowedRoles:              eventModel.RoleList(req.AllowedRoles),
		ApprovalMode:              approvalMode,

		FeedbackEnabled:     req.FeedbackEnabled,
		QRAttendanceEnabled: req.QRAttendanceEnabled,

		RequireConfirmation1: req.RequireConfirmation1,
		Confirmation1Label:   req.Confirmation1Label,
		RequireConfirmation2: req.RequireConfirmation2,
		Confirmation2Label:   req.Confirmation2Label,
	}

	if err := ec.DB.Create(&ev).Error; err != nil {
		logger.Error("Failed to create event", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Could not create event",
		})
	}

	if err := invites.ScheduleForEvent(ec.DB, &ev); err != nil {
		// The event exists; a failed schedule only delays invites until the
		// next settings update reschedules it.
		logger.Error("Failed to schedule feedback-invite task", err)
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Event created",
		Data:    ev,
	})
}

// Update applies booking-settings changes and reschedules the post-session
// task if feedback has just been enabled.
func (ec *EventController) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Event not found",
		})
	}

	var req eventTypes.EventUpdateRequest
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

	var ev eventModel.Event
	err = ec.DB.Where("deleted_at IS NULL").First(&ev, id).Error
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

	applyEventUpdate(&ev, &req)

	if err := ec.DB.Save(&ev).Error; err != nil {
		logger.Error("Failed to update event", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Could not update event",
		})
	}

	if err := invites.ScheduleForEvent(ec.DB, &ev); err != nil {
		logger.Error("Failed to schedule feedback-invite task", err)
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Event updated",
		Data:    ev,
	})
}

func applyEventUpdate(ev *eventModel.Event, req *eventTypes.EventUpdateRequest) {
	if req.Title != nil {
		ev.Title = *req.Title
	}
	if req.Description != nil {
		ev.Description = *req.Description
	}
	if req.Location != nil {
		ev.Location = *req.Location
	}
	if req.Date != nil {
		if date, err := time.Parse("2006-01-02", *req.Date); err == nil {
			ev.Date = date
		}
	}
	if req.StartTime != nil {
		ev.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		ev.EndTime = *req.EndTime
	}
	if req.BookingEnabled != nil {
		ev.BookingEnabled = *req.BookingEnabled
	}
	if req.BookingCapacity != nil {
		ev.BookingCapacity = req.BookingCapacity
	}
	if req.AllowWaitlist != nil {
		ev.AllowWaitlist = *req.AllowWaitlist
	}
	if req.BookingDeadlineHours != nil {
		ev.BookingDeadlineHours = *req.BookingDeadlineHours
	}
	if req.CancellationDeadlineHours != nil {
		ev.CancellationDeadlineHours = *req.CancellationDeadlineHours
	}
	if req.AllowedRoles != nil {
		ev.AllowedRoles = eventModel.RoleList(*req.AllowedRoles)
	}
	if req.ApprovalMode != nil {
		ev.ApprovalMode = eventModel.ApprovalMode(*req.ApprovalMode)
	}
	if req.FeedbackEnabled != nil {
		ev.FeedbackEnabled = *req.FeedbackEnabled
	}
	if req.QRAttendanceEnabled != nil {
		ev.QRAttendanceEnabled = *req.QRAttendanceEnabled
	}
	if req.RequireConfirmation1 != nil {
		ev.RequireConfirmation1 = *req.RequireConfirmation1
	}
	if req.Confirmation1Label != nil {
		ev.Confirmation1Label = *req.Confirmation1Label
	}
	if req.RequireConfirmation2 != nil {
		ev.RequireConfirmation2 = *req.RequireConfirmation2
	}
	if req.Confirmation2Label != nil {
		ev.Confirmation2Label = *req.Confirmation2Label
	}
}
