package server

import (
	"context"
	"time"

	"github.com/frontand-tech/frontand/internal/controllers"
	"github.com/frontand-tech/frontand/internal/version"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type HTTPServerDependencies struct {
	ConnectionController   *controllers.ConnectionController
	MonetizationController *controllers.MonetizationController
	WorkflowController     *controllers.WorkflowController
}

func NewHTTPServer(ctx context.Context, deps HTTPServerDependencies) *fiber.App {
	router := fiber.New(fiber.Config{
		AppName: "frontand-api",
	})

	// Add basic middleware
	router.Use(cors.New())
	router.Use(logger.New())

	// Health check endpoint (no authentication required)
	router.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   "frontand-api",
			"version":   version.GetVersion(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	router.Get("/services", deps.ConnectionController.ListServices)
	router.Get("/oauth/callback", deps.ConnectionController.OAuthCallback)

	connections := router.Group("/connections")

	connections.Post("/authorize", deps.ConnectionController.Authorize)
	connections.Get("/authorize/:state/result", deps.ConnectionController.AwaitResult)
	connections.Post("/authorize/:state/cancel", deps.ConnectionController.Cancel)
	connections.Post("/callback", deps.ConnectionController.Callback)
	connections.Get("/", deps.ConnectionController.ListConnections)
	connections.Get("/service/:serviceID", deps.ConnectionController.ListConnectionsByService)
	connections.Get("/:connectionID", deps.ConnectionController.GetConnection)
	connections.Delete("/:connectionID", deps.ConnectionController.Disconnect)
	connections.Post("/:connectionID/refresh", deps.ConnectionController.Refresh)
	connections.Get("/:connectionID/expired", deps.ConnectionController.IsExpired)

	workflows := router.Group("/workflows/:workflowID")

	workflows.Put("/pricing", deps.MonetizationController.ConfigurePricing)
	workflows.Get("/pricing", deps.MonetizationController.GetPricing)
	workflows.Get("/cost", deps.MonetizationController.CalculateCost)
	workflows.Post("/executions", deps.MonetizationController.ExecuteWorkflow)
	workflows.Get("/analytics", deps.MonetizationController.GetAnalytics)
	workflows.Post("/run", deps.WorkflowController.Run)

	creators := router.Group("/creators/:creatorID")

	creators.Get("/earnings", deps.MonetizationController.GetCreatorEarnings)
	creators.Get("/earnings/total", deps.MonetizationController.GetCreatorTotals)
	creators.Post("/payouts", deps.MonetizationController.RequestPayout)

	router.Get("/payouts/:payoutID", deps.MonetizationController.GetPayout)

	return router
}
