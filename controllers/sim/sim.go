package sim

import (
	"encoding/json"
	"errors"

	"sim-bleepy/logger"
	simModel "sim-bleepy/models/sim"
	"sim-bleepy/services/simfeedback"
	"sim-bleepy/types"
	simTypes "sim-bleepy/types/sim"
	"sim-bleepy/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SimController serves clinical-simulation practice scenarios and scores
// attempts asynchronously.
type SimController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
	Scorer *simfeedback.Service
}

func NewSimController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *SimController {
	return &SimController{
		DB:     db,
		Logger: asyncLogger,
		Scorer: simfeedback.NewService(),
	}
}

// Scenarios lists published practice cases.
func (sc *SimController) Scenarios(c *fiber.Ctx) error {
	var scenarios []simModel.SimScenario
	err := sc.DB.Where("published = ?", true).Order("created_at DESC").Find(&scenarios).Error
	if err != nil {
		logger.Error("Failed to load scenarios", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    scenarios,
	})
}

// Attempt stores the student's answer and kicks off asynchronous scoring.
// The attempt comes back in processing state; the client polls ShowAttempt.
func (sc *SimController) Attempt(c *fiber.Ctx) error {
	scenarioID, err := c.ParamsInt("id")
	if err != nil || scenarioID <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Scenario not found",
		})
	}

	var req simTypes.AttemptRequest
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

	var scenario simModel.SimScenario
	err = sc.DB.Where("published = ?", true).First(&scenario, scenarioID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Scenario not found",
		})
	}
	if err != nil {
		logger.Error("Failed to load scenario", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	attempt := simModel.SimAttempt{
		ScenarioID: scenario.ID,
		UserID:     u.ID,
		Answer:     req.Answer,
		Status:     simModel.AttemptStatusProcessing,
	}
	if err := sc.DB.Create(&attempt).Error; err != nil {
		logger.Error("Failed to store sim attempt", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Could not store attempt",
		})
	}

	sc.Scorer.ScoreAsync(attempt.ID, &scenario, req.Answer, sc.saveScore)

	return c.Status(fiber.StatusAccepted).JSON(types.ApiResponse{
		Status:  fiber.StatusAccepted,
		Message: "Attempt submitted; feedback is being generated",
		Data:    attempt,
	})
}

// ShowAttempt returns one attempt; only its owner or an admin-equivalent
// role may view it.
func (sc *SimController) ShowAttempt(c *fiber.Ctx) error {
	u, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	id, err := c.ParamsInt("attemptId")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Attempt not found",
		})
	}

	var attempt simModel.SimAttempt
	err = sc.DB.Preload("Scenario").First(&attempt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Attempt not found",
		})
	}
	if err != nil {
		logger.Error("Failed to load attempt", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if attempt.UserID != u.ID && !u.IsPrivileged() {
		return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "You can only view your own attempts",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    attempt,
	})
}

// saveScore persists the async scoring outcome for an attempt.
func (sc *SimController) saveScore(attemptID uint, res *simfeedback.ScoreResult, scoreErr error) {
	var attempt simModel.SimAttempt
	if err := sc.DB.First(&attempt, attemptID).Error; err != nil {
		logger.Error("Could not load attempt to save score", err)
		return
	}

	if scoreErr != nil {
		attempt.Status = simModel.AttemptStatusFailed
	} else {
		feedbackJSON, err := json.Marshal(res)
		if err != nil {
			logger.Error("Could not serialize feedback", err)
			attempt.Status = simModel.AttemptStatusFailed
		} else {
			feedback := string(feedbackJSON)
			attempt.Status = simModel.AttemptStatusCompleted
			attempt.Score = &res.Score
			attempt.Feedback = &feedback
		}
	}

	if err := sc.DB.Save(&attempt).Error; err != nil {
		logger.Error("Could not save attempt score", err)
	}
}
