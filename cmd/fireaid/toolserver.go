// cmd/fireaid/toolserver.go
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
	"fireaid/internal/common/logger"
	"fireaid/internal/common/observability"
	"fireaid/internal/firepoints"
	"fireaid/internal/toolserver"
)

var toolServerCmd = &cobra.Command{
	Use:   "toolserver",
	Short: "Run the tool backend over HTTP",
	RunE:  runToolServer,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the backend tools over MCP stdio",
	RunE:  runMCP,
}

func runToolServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	zapLog, log := newLogger(cfg, "")
	defer zapLog.Sync()

	zapLog.Info("Starting tool server...")

	obs := observability.New(cfg.App.Name+"-toolserver", log)
	defer obs.Shutdown()

	registry, closeFn, err := buildRegistry(cmd.Context(), cfg, obs, zapLog, log)
	if err != nil {
		return err
	}
	defer closeFn()

	srv := toolserver.NewServer(cfg.ToolServer, registry, log)
	return runUntilSignal(srv.Start, srv.Shutdown, config.GetDuration(cfg.Server.ShutdownTimeout), zapLog)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	zapLog, log := newLogger(cfg, "stderr")
	defer zapLog.Sync()

	obs := observability.New(cfg.App.Name+"-mcp", log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, closeFn, err := buildRegistry(ctx, cfg, obs, zapLog, log)
	if err != nil {
		return err
	}
	defer closeFn()

	srv := toolserver.NewMCPServer(cfg.ToolServer.MCPName, cfg.App.Version, registry)
	zapLog.Info("MCP stdio server ready", zap.Int("tools", len(registry.Tools())))
	return toolserver.ServeStdio(ctx, srv, os.Stdin, os.Stdout)
}

// buildRegistry connects Mongo and wires every tool. The returned func
// releases the connection.
func buildRegistry(ctx context.Context, cfg *config.Config, obs *observability.Observability, zapLog *zap.Logger, log logger.Logger) (*toolserver.Registry, func(), error) {
	mongoClient, err := connectMongo(ctx, cfg, zapLog)
	if err != nil {
		return nil, nil, err
	}

	store := firepoints.NewStore(mongoClient.Collection(), config.GetDuration(cfg.ToolServer.ReadTimeout))
	source := arcgis.NewClient(cfg.ArcGIS, nil, log)
	registry := toolserver.NewRegistry(store, source, obs, log)

	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Close(ctx); err != nil {
			zapLog.Warn("mongo disconnect failed", zap.Error(err))
		}
	}
	return registry, closeFn, nil
}

func connectMongo(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (*database.MongoClient, error) {
	var client *database.MongoClient
	err := retryWithBackoff(func() error {
		var err error
		if client == nil {
			client, err = database.NewMongo(cfg.Database.Mongo)
			if err != nil {
				return err
			}
		}
		return client.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "MongoDB connection")
	if err != nil {
		return nil, fmt.Errorf("mongo failed after retries: %w", err)
	}
	zapLog.Info("MongoDB connected successfully", zap.String("namespace", client.Namespace()))
	return client, nil
}
