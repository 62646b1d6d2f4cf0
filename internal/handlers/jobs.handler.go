package handlers

import (
	"errors"

	"chartintel/internal/app"
	"chartintel/internal/handlers/middleware"
	"chartintel/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type JobsHandler struct {
	Handler
	scheduler *services.SchedulerService
}

func NewJobsHandler(app app.App, router fiber.Router) *JobsHandler {
	log := logger.New("handlers").File("jobs_handler")
	return &JobsHandler{
		scheduler: app.Services.Scheduler,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *JobsHandler) Register() {
	jobs := h.router.Group("/jobs", h.middleware.RequireAdminToken())
	jobs.Get("/", h.listJobs)
	jobs.Post("/:name/trigger", h.triggerJob)
}

func (h *JobsHandler) listJobs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"running": h.scheduler.IsRunning(),
		"jobs":    h.scheduler.Status(),
	})
}

// triggerJob starts the job in the background and answers 202 straight away.
func (h *JobsHandler) triggerJob(c *fiber.Ctx) error {
	log := h.log.Function("triggerJob")

	name := c.Params("name")
	if err := h.scheduler.TriggerJobByName(c.UserContext(), name); err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job not found",
				"job":   name,
			})
		}

		log.Er("failed to trigger job", err, "job", name)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to trigger job",
		})
	}

	log.Info("Job triggered", "job", name, "traceID", middleware.GetTraceID(c))
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Job triggered",
		"job":     name,
	})
}
