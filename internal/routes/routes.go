package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/IncDrops/breakup/internal/handlers"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, gen *handlers.GenerateHandler, health *handlers.HealthHandler) {
	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Breakup Backend!",
			"version": health.Version,
			"endpoints": fiber.Map{
				"health":           "/health",
				"create_session":   "POST /api/sessions",
				"complete_session": "POST /api/sessions/:id/complete",
				"generate_free":    "POST /api/generate",
			},
		})
	})

	app.Get("/health", health.Check)

	api := app.Group("/api")

	sessions := api.Group("/sessions")
	sessions.Post("/", gen.CreateSession)
	sessions.Post("/:id/complete", gen.CompleteSession)

	api.Post("/generate", gen.GenerateDirect)
}
