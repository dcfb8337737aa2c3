// Package importer loads the AK fire location points CSV into Mongo as raw strings.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"fireaid/internal/common/config"
	"fireaid/internal/common/logger"
	"fireaid/internal/common/metrics"
)

const (
	DefaultBatchSize = 2000
	BadRowsFile      = "bad_rows.log"

	FieldIngestedAt = "_ingested_at"
	FieldSourceFile = "_source_file"
)

var (
	ErrCSVNotFound  = errors.New("CSV_NOT_FOUND")
	ErrEmptyCSV     = errors.New("CSV_EMPTY")
	ErrTargetFailed = errors.New("TARGET_FAILED")
)

// Target is the collection the importer writes to.
type Target interface {
	Drop(ctx context.Context) error
	InsertMany(ctx context.Context, docs []interface{}) error
	Count(ctx context.Context) (int64, error)
}

type Result struct {
	Parsed      int    `json:"parsed"`
	Skipped     int    `json:"skipped"`
	Inserted    int    `json:"inserted"`
	Count       int64  `json:"count"`
	BadRowsPath string `json:"badRowsPath,omitempty"`
}

type Importer struct {
	cfg    config.ImporterConfig
	target Target
	logger logger.Logger
	now    func() time.Time
}

func New(cfg config.ImporterConfig, target Target, log logger.Logger) *Importer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Importer{
		cfg:    cfg,
		target: target,
		logger: log.WithFields(map[string]interface{}{"component": "importer"}),
		now:    time.Now,
	}
}

// Run reads the configured CSV, replaces the collection when DropFirst is set,
// inserts the good rows in batches and logs malformed rows to LogDir.
func (im *Importer) Run(ctx context.Context) (*Result, error) {
	data, err := os.ReadFile(im.cfg.CSVPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCSVNotFound, im.cfg.CSVPath)
		}
		return nil, err
	}

	if im.cfg.DropFirst {
		im.logger.Info("dropping collection", nil)
		if err := im.target.Drop(ctx); err != nil {
			return nil, fmt.Errorf("%w: drop: %v", ErrTargetFailed, err)
		}
	}

	ingestedAt := im.now().UTC().Format(time.RFC3339)
	source := filepath.Base(im.cfg.CSVPath)

	im.logger.Info("reading csv", map[string]interface{}{"path": im.cfg.CSVPath})
	docs, bad, err := Parse(data, ingestedAt, source)
	if err != nil {
		return nil, err
	}

	result := &Result{Parsed: len(docs), Skipped: len(bad)}
	im.logger.Info("parsed csv", map[string]interface{}{"good": result.Parsed, "bad": result.Skipped})

	for start := 0; start < len(docs); start += im.cfg.BatchSize {
		end := start + im.cfg.BatchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := im.target.InsertMany(ctx, docs[start:end]); err != nil {
			metrics.ImportedRecords.WithLabelValues(metrics.OutcomeError).Add(float64(end - start))
			return result, fmt.Errorf("%w: insert: %v", ErrTargetFailed, err)
		}
		result.Inserted += end - start
		metrics.ImportedRecords.WithLabelValues(metrics.OutcomeSuccess).Add(float64(end - start))
		im.logger.Info("inserted batch", map[string]interface{}{
			"inserted": result.Inserted,
			"total":    len(docs),
		})
	}

	if len(bad) > 0 {
		path, err := im.writeBadRows(bad, ingestedAt)
		if err != nil {
			return result, err
		}
		result.BadRowsPath = path
		im.logger.Warn("bad rows saved", map[string]interface{}{"path": path, "rows": len(bad)})
	}

	count, err := im.target.Count(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: count: %v", ErrTargetFailed, err)
	}
	result.Count = count
	return result, nil
}

func (im *Importer) writeBadRows(rows []string, ingestedAt string) (string, error) {
	dir := im.cfg.LogDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# Rows skipped due to malformed CSV quoting/format\n")
	fmt.Fprintf(&buf, "# source=%s\n", im.cfg.CSVPath)
	fmt.Fprintf(&buf, "# time_utc=%s\n\n", ingestedAt)
	for _, line := range rows {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	path := filepath.Join(dir, BadRowsFile)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write bad rows: %w", err)
	}
	return path, nil
}

// Parse converts CSV bytes to documents in header order with every value kept
// as a string. Rows that fail to parse or carry more fields than the header are
// returned verbatim in bad; short rows are padded with empty strings.
func Parse(data []byte, ingestedAt, source string) ([]interface{}, []string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyCSV
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	docs := []interface{}{}
	var bad []string
	for {
		offset := r.InputOffset()
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(record) > len(header) {
			var perr *csv.ParseError
			if err != nil && !errors.As(err, &perr) {
				return nil, nil, err
			}
			bad = append(bad, rawLine(data, offset, r.InputOffset()))
			continue
		}

		doc := make(bson.D, 0, len(header)+2)
		for i, name := range header {
			value := ""
			if i < len(record) {
				value = record[i]
			}
			doc = append(doc, bson.E{Key: name, Value: value})
		}
		doc = append(doc,
			bson.E{Key: FieldIngestedAt, Value: ingestedAt},
			bson.E{Key: FieldSourceFile, Value: source},
		)
		docs = append(docs, doc)
	}
	return docs, bad, nil
}

func rawLine(data []byte, from, to int64) string {
	if to > int64(len(data)) {
		to = int64(len(data))
	}
	if from >= to {
		return ""
	}
	return strings.TrimRight(string(data[from:to]), "\r\n")
}
