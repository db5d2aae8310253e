package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/outcry/config"
	"example.com/outcry/internal/api"
	"example.com/outcry/internal/telemetry"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	// Serve command flags
	disableNewRelic bool
	serverPort      int
	gracefulTimeout time.Duration
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Starts the back office API server.

The server respects the configuration in config.yaml or specified via the --config flag.
It will gracefully shut down on receiving SIGINT or SIGTERM signals.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&disableNewRelic, "disable-newrelic", false, "Disable New Relic monitoring")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "Server port (overrides config file)")
	serveCmd.Flags().DurationVar(&gracefulTimeout, "graceful-timeout", 0, "Graceful shutdown timeout (overrides config file)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if serverPort > 0 {
		cfg.Server.Port = serverPort
	}
	if gracefulTimeout > 0 {
		cfg.Server.GracefulTimeout = gracefulTimeout
	}
	if disableNewRelic {
		cfg.NewRelic.Enabled = false
	}

	log.Info().
		Int("port", cfg.Server.Port).
		Bool("newrelic_enabled", cfg.NewRelic.Enabled).
		Msg("Initializing service components...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comps, err := buildComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer comps.Close()

	nrApp, err := telemetry.InitNewRelic(cfg.NewRelic, cfg.App)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize New Relic")
	}
	if nrApp != nil {
		defer nrApp.Shutdown(5 * time.Second)
	}

	server := api.NewServer(*cfg, comps.service, comps.metrics, nrApp, log.Logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting server...")
		return server.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down HTTP server...")
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server error")
		return err
	}

	log.Info().Msg("Server shutdown complete")
	return nil
}
