package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// NewApp builds the fiber application. Token issuing, registration and the
// health endpoints are public; everything else requires a bearer token.
func NewApp(handlers *APIHandlers) *fiber.App {
	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())
	app.Get("/health", handlers.HealthCheck)

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Fluxo API")
	})

	app.Post("/auth/token", handlers.CreateToken)
	app.Post("/users", handlers.RegisterUser)
	app.Get("/users/me", handlers.CurrentUser, handlers.RequireAuth)

	w := app.Group("/workflows", handlers.RequireAuth)
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Put("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/run", handlers.RunWorkflow)
	w.Get("/:id/executions", handlers.GetWorkflowExecutions)

	e := app.Group("/executions", handlers.RequireAuth)
	e.Get("/", handlers.GetExecutions)
	e.Get("/:id", handlers.GetExecution)

	app.Get("/node-kinds", handlers.GetNodeKinds, handlers.RequireAuth)

	return app
}
