package routes

import (
	"sim-bleepy/controllers/auth"
	"sim-bleepy/controllers/booking"
	"sim-bleepy/controllers/certificate"
	"sim-bleepy/controllers/event"
	"sim-bleepy/controllers/feedback"
	"sim-bleepy/controllers/jobs"
	"sim-bleepy/controllers/qr"
	"sim-bleepy/controllers/quiz"
	"sim-bleepy/controllers/sim"
	"sim-bleepy/logger"
	"sim-bleepy/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	asyncLogger := logger.NewAsyncLogger(db)
	authController := auth.NewAuthController(db, asyncLogger)
	eventController := event.NewEventController(db, asyncLogger)
	bookingController := booking.NewBookingController(db, asyncLogger)
	feedbackController := feedback.NewFeedbackController(db, asyncLogger)
	qrController := qr.NewQRController(db, asyncLogger)
	quizController := quiz.NewQuizController(db, asyncLogger)
	certificateController := certificate.NewCertificateController(db, asyncLogger)
	simController := sim.NewSimController(db, asyncLogger)
	jobsController := jobs.NewJobsController(db)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")
	api.Post("/register", authController.Register)
	api.Post("/login", authController.Login)
	api.Get("/certificates/verify/:code", certificateController.Verify)

	/*=============================================================================
	| Session Routes
	===============================================================================*/
	authGroup := api.Group("/auth").Use(middleware.RequireAuth())
	authGroup.Get("/profile", authController.Profile)
	authGroup.Post("/logout", authController.LogOut)

	/*=============================================================================
	| Event Routes
	===============================================================================*/
	eventGroup := api.Group("/events")
	eventGroup.Get("/", middleware.RequireAuth(), eventController.Index)
	eventGroup.Get("/:id", middleware.RequireAuth(), eventController.Show)
	eventGroup.Post("/", middleware.RequirePrivileged(), eventController.Store)
	eventGroup.Put("/:id", middleware.RequirePrivileged(), eventController.Update)

	eventGroup.Post("/:id/feedback-forms", middleware.RequirePrivileged(), feedbackController.StoreForm)
	eventGroup.Post("/:id/qr-codes", middleware.RequirePrivileged(), qrController.StoreCode)

	/*=============================================================================
	| Booking Routes
	===============================================================================*/
	bookingGroup := api.Group("/bookings").Use(middleware.RequireAuth())
	bookingGroup.Get("/", bookingController.Index)
	bookingGroup.Post("/", bookingController.Store)
	bookingGroup.Get("/:id", bookingController.Show)
	bookingGroup.Put("/:id", bookingController.Update)
	bookingGroup.Delete("/:id", bookingController.Destroy)

	/*=============================================================================
	| Attendance & Feedback Routes
	===============================================================================*/
	api.Post("/qr/scan", middleware.RequireAuth(), qrController.Scan)
	api.Post("/feedback-forms/:formId/responses", middleware.RequireAuth(), feedbackController.SubmitResponse)

	/*=============================================================================
	| Quiz Routes
	===============================================================================*/
	quizGroup := api.Group("/quizzes").Use(middleware.RequireAuth())
	quizGroup.Get("/", quizController.Index)
	quizGroup.Get("/:id", quizController.Show)
	quizGroup.Post("/:id/attempts", quizController.Attempt)

	/*=============================================================================
	| Certificate Routes
	===============================================================================*/
	api.Post("/certificates", middleware.RequirePrivileged(), certificateController.Issue)
	api.Get("/certificates/mine", middleware.RequireAuth(), certificateController.Mine)

	/*=============================================================================
	| Clinical Sim Routes
	===============================================================================*/
	simGroup := api.Group("/sim").Use(middleware.RequireAuth())
	simGroup.Get("/scenarios", simController.Scenarios)
	simGroup.Post("/scenarios/:id/attempts", simController.Attempt)
	simGroup.Get("/attempts/:attemptId", simController.ShowAttempt)

	/*=============================================================================
	| Job Routes
	===============================================================================*/
	jobGroup := api.Group("/jobs").Use(middleware.RequirePrivileged())
	jobGroup.Post("/feedback-invites", jobsController.RunFeedbackInvites)
	jobGroup.Get("/feedback-invites", jobsController.RunFeedbackInvites)
}
