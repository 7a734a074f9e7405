package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"influencerdash/internal/config"
	"influencerdash/pkg/contracts/domain"
)

// CSVWriter writes dataset tables into the data directory
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes a CSV file, truncating any existing file
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Debug("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	if err := writeCSV(file, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteTables writes the four dataset files into the data directory.
// Existing files are overwritten.
func (w *CSVWriter) WriteTables(tables *domain.Tables) error {
	for _, e := range domain.Entities {
		err := w.WriteCSV(e.FileName(), WriteOptions{
			Headers: e.Columns(),
			Records: EntityRecords(tables, e),
		})
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", e.FileName(), err)
		}
		slog.Info("Dataset file written",
			slog.String("entity", string(e)),
			slog.String("path", w.resolvePath(e.FileName())),
			slog.Int("rows", tables.Len(e)))
	}
	return nil
}

// EncodeEntity streams one table as CSV, header first
func EncodeEntity(out io.Writer, tables *domain.Tables, e domain.Entity) error {
	return writeCSV(out, WriteOptions{
		Headers: e.Columns(),
		Records: EntityRecords(tables, e),
	})
}

func writeCSV(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// resolvePath resolves relative paths against the data directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return filepath.Join(w.paths.DataDir, filePath)
}
