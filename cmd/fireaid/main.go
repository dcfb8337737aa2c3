// cmd/fireaid/main.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fireaid/internal/common/config"
	"fireaid/internal/common/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "fireaid",
	Short:         "FireAID wildfire dashboard API, tool backend and data importer",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: configs/config.yaml)")
	rootCmd.AddCommand(serveCmd, toolServerCmd, mcpCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// newLogger builds the process logger. output overrides the configured
// destination; the MCP stdio transport needs stdout for itself.
func newLogger(cfg *config.Config, output string) (*zap.Logger, logger.Logger) {
	if output == "" {
		output = cfg.Logging.Output
	}
	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, output).
		With(zap.String("app", cfg.App.Name), zap.String("environment", cfg.App.Environment))
	return zapLog, logger.NewZapAdapter(zapLog)
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
