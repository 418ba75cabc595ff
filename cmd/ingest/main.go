// Command ingest normalizes a directory of revenue workbooks into the
// canonical long-format CSV.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"fiscaldash/internal/exporter"
	"fiscaldash/internal/ledger"
)

func main() {
	inDir := flag.String("in", "data/rcl", "directory containing <prefix>-<YYYY> workbooks")
	outFile := flag.String("out", "data/reports/revenue.csv", "output CSV path")
	prefix := flag.String("prefix", "RCL", "source filename prefix")
	ext := flag.String("ext", ".xlsx", "source filename extension")
	modeName := flag.String("mode", "punctuated", "numeric parsing mode: punctuated or hinted")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	mode, ok := ledger.ParseMode(*modeName)
	if !ok {
		logger.Error("unknown parse mode", slog.String("mode", *modeName))
		os.Exit(2)
	}

	table, err := ledger.NewLoader(*prefix, *ext, mode, logger).Load(*inDir)
	if err != nil {
		logger.Error("load failed", "error", err)
		os.Exit(1)
	}

	if err := exporter.NewCSVWriter(logger).WriteTable(*outFile, table, exporter.SemicolonDelimiter); err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	minYear, maxYear, _ := table.YearRange()
	logger.Info("ingestion complete",
		slog.String("output", filepath.Clean(*outFile)),
		slog.Int("records", len(table)),
		slog.Int("specifications", len(table.Specifications())),
		slog.Int("first_year", minYear),
		slog.Int("last_year", maxYear))
}
