// cmd/fireaid/import.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fireaid/internal/importer"
)

var importFlags struct {
	csvPath   string
	batchSize int
	keep      bool
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the AK fire location points CSV into MongoDB",
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFlags.csvPath, "csv", "", "CSV file to import (overrides importer.csv_path)")
	importCmd.Flags().IntVar(&importFlags.batchSize, "batch-size", 0, "documents per insert (overrides importer.batch_size)")
	importCmd.Flags().BoolVar(&importFlags.keep, "keep", false, "append instead of dropping the collection first")
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	zapLog, log := newLogger(cfg, "")
	defer zapLog.Sync()

	if importFlags.csvPath != "" {
		cfg.Importer.CSVPath = importFlags.csvPath
	}
	if importFlags.batchSize > 0 {
		cfg.Importer.BatchSize = importFlags.batchSize
	}
	if importFlags.keep {
		cfg.Importer.DropFirst = false
	}

	ctx := cmd.Context()
	mongoClient, err := connectMongo(ctx, cfg, zapLog)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Close(ctx)
	}()

	result, err := importer.New(cfg.Importer, importer.NewMongoTarget(mongoClient.Collection()), log).Run(ctx)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	zapLog.Info("Import finished",
		zap.String("namespace", mongoClient.Namespace()),
		zap.Int("parsed", result.Parsed),
		zap.Int("skipped", result.Skipped),
		zap.Int("inserted", result.Inserted),
		zap.Int64("count", result.Count),
		zap.String("badRows", result.BadRowsPath),
	)
	return nil
}
