package jobs

import (
	"os"
	"time"

	"sim-bleepy/httpServices/mailer"
	"sim-bleepy/httpServices/push"
	"sim-bleepy/logger"
	"sim-bleepy/repository"
	"sim-bleepy/services/invites"
	"sim-bleepy/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// JobsController exposes batch jobs to the external scheduler.
type JobsController struct {
	DB         *gorm.DB
	Dispatcher *invites.Dispatcher
}

func NewJobsController(db *gorm.DB) *JobsController {
	return &JobsController{
		DB: db,
		Dispatcher: invites.NewDispatcher(
			repository.NewInviteStore(db),
			mailer.NewClient(os.Getenv("MAILER_BASE_URL"), os.Getenv("MAILER_API_KEY")),
			push.NewClient(os.Getenv("PUSH_BASE_URL"), os.Getenv("PUSH_API_KEY")),
			utils.GetEnv("FRONTEND_URL", ""),
		),
	}
}

// RunFeedbackInvites runs one batch of the feedback-invite dispatcher.
// Mounted for both POST and GET so simple cron pingers can trigger it.
func (jc *JobsController) RunFeedbackInvites(c *fiber.Ctx) error {
	res, err := jc.Dispatcher.Run()
	if err != nil {
		logger.Error("Feedback-invite batch failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"invitesSent":    res.InvitesSent,
		"tasksProcessed": res.TasksProcessed,
		"now":            time.Now().UTC().Format(time.RFC3339),
	})
}
