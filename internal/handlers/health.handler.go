package handlers

import (
	"chartintel/config"
	"chartintel/internal/services"

	"github.com/gofiber/fiber/v2"
)

func HealthHandler(router fiber.Router, config config.Config, scheduler *services.SchedulerService) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"version":   config.GeneralVersion,
			"service":   "chartintel_pipeline",
			"scheduler": scheduler.IsRunning(),
		})
	})
}
