package quiz

import (
	"errors"

	"sim-bleepy/logger"
	quizModel "sim-bleepy/models/quiz"
	"sim-bleepy/types"
	quizTypes "sim-bleepy/types/quiz"
	"sim-bleepy/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// QuizController serves published quizzes and scores attempts.
type QuizController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

func NewQuizController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *QuizController {
	return &QuizController{
		DB:     db,
		Logger: asyncLogger,
	}
}

// Index lists published quizzes without their questions.
func (qc *QuizController) Index(c *fiber.Ctx) error {
	var quizzes []quizModel.Quiz
	err := qc.DB.Where("published = ?", true).Order("created_at DESC").Find(&quizzes).Error
	if err != nil {
		logger.Error("Failed to load quizzes", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    quizzes,
	})
}

// Show returns one quiz with its questions. Correct answers never serialize.
func (qc *QuizController) Show(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Quiz not found",
		})
	}

	var quiz quizModel.Quiz
	err = qc.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("published = ?", true).First(&quiz, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Quiz not found",
		})
	}
	if err != nil {
		logger.Error("Failed to load quiz", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    quiz,
	})
}

// Attempt scores a submission against the quiz's answer key.
func (qc *QuizController) Attempt(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Quiz not found",
		})
	}

	var req quizTypes.AttemptRequest
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

	var questions []quizModel.QuizQuestion
	err = qc.DB.Where("quiz_id = ?", id).Order("position ASC").Find(&questions).Error
	if err != nil {
		logger.Error("Failed to load quiz questions", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}
	if len(questions) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Quiz not found",
		})
	}
	if len(req.Answers) != len(questions) {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Answer count does not match question count",
		})
	}

	score := 0
	for i, q := range questions {
		if req.Answers[i] == q.CorrectIndex {
			score++
		}
	}

	attempt := quizModel.QuizAttempt{
		QuizID: uint(id),
		UserID: u.ID,
		Score:  score,
		Total:  len(questions),
	}
	if err := qc.DB.Create(&attempt).Error; err != nil {
		logger.Error("Failed to store quiz attempt", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Could not store attempt",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Attempt scored",
		Data:    attempt,
	})
}
