package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/frontand-tech/frontand/internal/initialization"
	"github.com/frontand-tech/frontand/internal/server"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the platform API server",
		Long:  `Start the HTTP API: OAuth connections, monetization and workflow runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	return cmd
}

func runServe() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	config, err := initialization.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	deps, err := initialization.BuildDependencies(ctx, config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build dependencies")
	}

	app := server.NewHTTPServer(ctx, server.HTTPServerDependencies{
		ConnectionController:   deps.ConnectionController,
		MonetizationController: deps.MonetizationController,
		WorkflowController:     deps.WorkflowController,
	})

	log.Info().Msgf("Starting API server on %s", config.HTTPAddress)

	if err := app.Listen(config.HTTPAddress, fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
	}); err != nil {
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}

	log.Info().Msg("API server stopped")
	return nil
}
