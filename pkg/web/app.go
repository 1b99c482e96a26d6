package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	json "github.com/goccy/go-json"
)

// NewApp builds the fiber application serving the API routes.
func NewApp(handlers *APIHandlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:     "classflow-api",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})

	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Classflow API")
	})

	Routes(app, handlers)

	return app
}

// Routes mounts the API handlers on router.
func Routes(router fiber.Router, handlers *APIHandlers) {
	w := router.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/execute", handlers.ExecuteWorkflow)

	e := router.Group("/executions")
	e.Get("/", handlers.GetExecutions)
	e.Get("/:id", handlers.GetExecution)
	e.Post("/:id/cancel", handlers.CancelExecution)

	router.Post("/events/:name", handlers.TriggerEvent)
	router.Get("/node-types", handlers.GetNodeTypes)
	router.Get("/health", handlers.HealthCheck)
}
