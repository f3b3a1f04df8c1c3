package feedback

import (
	"errors"

	"sim-bleepy/logger"
	eventModel "sim-bleepy/models/event"
	feedbackModel "sim-bleepy/models/feedback"
	"sim-bleepy/types"
	feedbackTypes "sim-bleepy/types/feedback"
	"sim-bleepy/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FeedbackController manages feedback forms and their responses.
type FeedbackController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

func NewFeedbackController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *FeedbackController {
	return &FeedbackController{
		DB:     db,
		Logger: asyncLogger,
	}
}

// StoreForm creates a feedback form for an event. The newest active form is
// the one invite emails link to.
func (fc *FeedbackController) StoreForm(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("id")
	if err != nil || eventID <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Event not found",
		})
	}

	var req feedbackTypes.FormCreateRequest
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
	err = fc.DB.Where("deleted_at IS NULL").First(&ev, eventID).Error
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

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	form := feedbackModel.FeedbackForm{
		EventID: ev.ID,
		Title:   req.Title,
		Active:  active,
	}
	if err := fc.DB.Create(&form).Error; err != nil {
		logger.Error("Failed to create feedback form", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Could not create feedback form",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Feedback form created",
		Data:    form,
	})
}

// SubmitResponse records the caller's answers to a form, once per user.
func (fc *FeedbackController) SubmitResponse(c *fiber.Ctx) error {
	formID, err := c.ParamsInt("formId")
	if err != nil || formID <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Feedback form not found",
		})
	}

	var req feedbackTypes.ResponseSubmitRequest
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

	var form feedbackModel.FeedbackForm
	err = fc.DB.Where("active = ?", true).First(&form, formID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Feedback form not found",
		})
	}
	if err != nil {
		logger.Error("Failed to load feedback form", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var existing feedbackModel.FeedbackResponse
	err = fc.DB.Where("form_id = ? AND user_id = ?", form.ID, u.ID).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "You have already submitted feedback for this form",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Database error while checking existing response", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	response := feedbackModel.FeedbackResponse{
		FormID:  form.ID,
		UserID:  u.ID,
		Answers: req.Answers,
	}
	if err := fc.DB.Create(&response).Error; err != nil {
		logger.Error("Failed to store feedback response", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Could not store feedback response",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Feedback submitted",
		Data:    response,
	})
}
