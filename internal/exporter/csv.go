package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"fiscaldash/internal/forecast"
	"fiscaldash/internal/ledger"
)

// SemicolonDelimiter is the canonical-table delimiter; Brazilian Excel
// locales treat the comma as a decimal separator.
const SemicolonDelimiter = ';'

// CommaDelimiter is the default forecast export delimiter.
const CommaDelimiter = ','

const dateLayout = "2006-01-02"

// utf8BOM helps Excel recognize UTF-8 content.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter exports tables and forecasts.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteTableTo serializes the full canonical table with all record fields.
func (w *CSVWriter) WriteTableTo(dst io.Writer, table ledger.Table, delimiter rune) error {
	if _, err := dst.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(dst)
	cw.Comma = delimiter
	defer cw.Flush()

	if err := cw.Write([]string{"specification", "month_year", "year", "value"}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, r := range table {
		row := []string{
			r.Specification,
			r.MonthYear.Format(dateLayout),
			formatInt(int64(r.Year)),
			formatFloat(r.Value),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteForecastTo serializes projected months as
// date, predicted_value, lower_bound, upper_bound.
func (w *CSVWriter) WriteForecastTo(dst io.Writer, points []forecast.Point, delimiter rune) error {
	if _, err := dst.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(dst)
	cw.Comma = delimiter
	defer cw.Flush()

	if err := cw.Write([]string{"date", "predicted_value", "lower_bound", "upper_bound"}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, p := range points {
		row := []string{
			p.Date.Format(dateLayout),
			formatFloat(p.Value),
			formatFloat(p.Lower),
			formatFloat(p.Upper),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTable writes the canonical table to a file, creating parent
// directories as needed.
func (w *CSVWriter) WriteTable(path string, table ledger.Table, delimiter rune) error {
	w.logger.Info("writing canonical table CSV",
		slog.String("path", path),
		slog.Int("records", len(table)))
	return w.writeFile(path, func(f io.Writer) error {
		return w.WriteTableTo(f, table, delimiter)
	})
}

// WriteForecast writes projected months to a file.
func (w *CSVWriter) WriteForecast(path string, points []forecast.Point, delimiter rune) error {
	w.logger.Info("writing forecast CSV",
		slog.String("path", path),
		slog.Int("months", len(points)))
	return w.writeFile(path, func(f io.Writer) error {
		return w.WriteForecastTo(f, points, delimiter)
	})
}

func (w *CSVWriter) writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()
	return write(f)
}
