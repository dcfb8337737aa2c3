// cmd/fireaid/serve.go
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

	"fireaid/internal/arcgis"
	"fireaid/internal/common/config"
	"fireaid/internal/common/database"
	"fireaid/internal/common/observability"
	"fireaid/internal/server"
	"fireaid/internal/terms"
	"fireaid/internal/toolclient"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	zapLog, log := newLogger(cfg, "")
	defer zapLog.Sync()

	zapLog.Info("Starting dashboard...")

	obs := observability.New(cfg.App.Name+"-dashboard", log)
	defer obs.Shutdown()

	ctx := cmd.Context()
	deps := server.Deps{Ready: map[string]server.Pinger{}}

	// --- Redis response cache (optional) ---
	var cache arcgis.Cache
	if rdb := database.NewRedis(cfg.Database.Redis); rdb != nil {
		err := retryWithBackoff(func() error {
			return rdb.Ping(ctx)
		}, 3, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("redis unavailable, feature query cache disabled", zap.Error(err))
			_ = rdb.Close()
		} else {
			defer rdb.Close()
			cache = rdb
			deps.Ready["redis"] = rdb
			zapLog.Info("Redis connected successfully")
		}
	}

	deps.Incidents = arcgis.NewClient(cfg.ArcGIS, cache, log)
	deps.Tools = toolclient.NewClient(cfg.MCP, log)

	// --- PostgreSQL terminology library (optional) ---
	if cfg.Database.Postgres.Enabled() {
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return fmt.Errorf("postgres failed after retries: %w", err)
		}
		defer pg.Close()

		store := terms.NewStore(pg.DB)
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("terms schema: %w", err)
		}
		deps.Terms = store
		deps.Ready["postgres"] = pg
		zapLog.Info("PostgreSQL connected successfully")
	}

	srv := server.New(cfg, deps, log)
	return runUntilSignal(srv.Start, srv.Shutdown, config.GetDuration(cfg.Server.ShutdownTimeout), zapLog)
}

// runUntilSignal runs start until it fails or SIGINT/SIGTERM arrives, then
// calls shutdown with the given grace period.
func runUntilSignal(start func() error, shutdown func(context.Context) error, grace time.Duration, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("Stopped")
	return nil
}
