package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/nexusd/internal/config"
	nexushttp "github.com/fyrsmithlabs/nexusd/internal/http"
	"github.com/fyrsmithlabs/nexusd/internal/logging"
	"github.com/fyrsmithlabs/nexusd/internal/services"
	"github.com/fyrsmithlabs/nexusd/internal/telemetry"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the nexusd daemon",
	Long: `Start the nexusd HTTP server with full service initialization.

Configuration is loaded from ~/.config/nexusd/config.yaml and overridden
by environment variables (SERVER_HTTP_PORT, RATELIMIT_USER_LIMIT, etc.).

Examples:
  # Start with defaults
  nexusd serve

  # Start with an explicit config file
  nexusd serve --config ~/.config/nexusd/config.yaml

  # Override via environment
  SERVER_HTTP_PORT=9280 nexusd serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to config file")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return run(ctx)
}

// run starts the daemon and blocks until the context is cancelled:
//  1. Loads and validates configuration
//  2. Initializes logger and telemetry
//  3. Bootstraps the service registry (agents, safety, router)
//  4. Starts the HTTP server and the maintenance sweep
//  5. Performs graceful shutdown on context cancellation
func run(ctx context.Context) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.NewLogger(logging.NewDefaultConfig(), nil)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	logger.Info(ctx, "starting nexusd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("service", cfg.Observability.ServiceName),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout.Duration()),
	)

	tel, err := telemetry.New(ctx, telemetryConfig(cfg), logger.Underlying())
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	svcs, err := services.Bootstrap(cfg, logger, tel)
	if err != nil {
		return fmt.Errorf("bootstrapping services: %w", err)
	}

	logger.Info(ctx, "services initialized",
		zap.Strings("agents", svcs.Agents().IDs()),
		zap.Bool("telemetry", tel.IsEnabled()),
	)

	srv, err := nexushttp.NewServer(svcs, logger.Underlying(), &nexushttp.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	// Expired rate-limit windows and confirmation tokens are swept
	// periodically; everything else expires passively at lookup.
	go services.Maintain(ctx, svcs, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "http shutdown failed", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "telemetry shutdown failed", zap.Error(err))
	}

	logger.Info(shutdownCtx, "shutdown complete")
	return nil
}

// telemetryConfig maps the daemon's observability section onto the
// telemetry package defaults.
func telemetryConfig(cfg *config.Config) *telemetry.Config {
	tcfg := telemetry.NewDefaultConfig()
	tcfg.Enabled = cfg.Observability.EnableTelemetry
	if cfg.Observability.ServiceName != "" {
		tcfg.ServiceName = cfg.Observability.ServiceName
	}
	if cfg.Observability.Endpoint != "" {
		tcfg.Endpoint = cfg.Observability.Endpoint
	}
	tcfg.ServiceVersion = version
	return tcfg
}
