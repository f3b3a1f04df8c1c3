// Package scheduler optionally runs the feedback-invite dispatcher on an
// in-process cron. The primary trigger stays the external scheduler hitting
// /api/jobs/feedback-invites; this is for deployments without one.
package scheduler

import (
	"fmt"
	"os"

	"sim-bleepy/httpServices/mailer"
	"sim-bleepy/httpServices/push"
	"sim-bleepy/logger"
	"sim-bleepy/repository"
	"sim-bleepy/services/invites"
	"sim-bleepy/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StartInviteCron registers the dispatcher on a cron schedule when
// INVITE_CRON_ENABLED is set. Call from main.go after the DB is up.
func StartInviteCron(db *gorm.DB) {
	if !utils.GetEnvBool("INVITE_CRON_ENABLED", false) {
		return
	}

	schedule := utils.GetEnv("INVITE_CRON_SCHEDULE", "*/5 * * * *")
	dispatcher := invites.NewDispatcher(
		repository.NewInviteStore(db),
		mailer.NewClient(os.Getenv("MAILER_BASE_URL"), os.Getenv("MAILER_API_KEY")),
		push.NewClient(os.Getenv("PUSH_BASE_URL"), os.Getenv("PUSH_API_KEY")),
		utils.GetEnv("FRONTEND_URL", ""),
	)

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		res, err := dispatcher.Run()
		if err != nil {
			logger.Error("Scheduled feedback-invite run failed", err)
			return
		}
		if res.TasksProcessed > 0 {
			logger.Info(fmt.Sprintf("Feedback-invite cron: %d tasks processed, %d invites sent",
				res.TasksProcessed, res.InvitesSent))
		}
	})
	if err != nil {
		logger.Error("Could not register invite cron schedule "+schedule, err)
		return
	}

	c.Start()
	logger.Success("Feedback-invite cron started with schedule " + schedule)
}
