// Command forecast fits the seasonal model on one specification's revenue
// series and writes the projected months as CSV.
package main

import (
	"flag"
	"log/slog"
	"os"

	"fiscaldash/internal/exporter"
	"fiscaldash/internal/forecast"
	"fiscaldash/internal/ledger"
)

func main() {
	inDir := flag.String("in", "data/rcl", "directory containing revenue workbooks")
	prefix := flag.String("prefix", "RCL", "source filename prefix")
	ext := flag.String("ext", ".xlsx", "source filename extension")
	modeName := flag.String("mode", "punctuated", "numeric parsing mode: punctuated or hinted")
	spec := flag.String("spec", ledger.CurrentRevenueLabel, "specification to forecast")
	horizon := flag.Int("horizon", 36, "forecast horizon in months")
	transformName := flag.String("transform", "log", "value transform: log or linear")
	splitName := flag.String("split", "trailing-year", "holdout split: trailing-year or half")
	outFile := flag.String("out", "data/reports/forecast.csv", "output CSV path")
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

	cfg := forecast.DefaultConfig()
	cfg.HorizonMonths = *horizon
	if cfg.Transform, ok = forecast.ParseTransform(*transformName); !ok {
		logger.Error("unknown transform", slog.String("transform", *transformName))
		os.Exit(2)
	}
	if cfg.SplitPolicy, ok = forecast.ParseSplitPolicy(*splitName); !ok {
		logger.Error("unknown split policy", slog.String("split", *splitName))
		os.Exit(2)
	}

	var series []forecast.Observation
	for _, p := range table.FilterSpecification(*spec).Series() {
		series = append(series, forecast.Observation{Date: p.Date, Value: p.Value})
	}

	result, err := forecast.Forecast(series, cfg)
	if err != nil {
		logger.Error("forecast failed", "error", err)
		os.Exit(1)
	}

	if err := exporter.NewCSVWriter(logger).WriteForecast(*outFile, result.Forecast, exporter.CommaDelimiter); err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	logger.Info("forecast complete",
		slog.String("specification", *spec),
		slog.Int("projected_months", len(result.Forecast)),
		slog.Int("train_months", result.TrainMonths),
		slog.Int("test_months", result.TestMonths))
	if m := result.Metrics; m != nil {
		logger.Info("holdout validation",
			slog.Float64("mae", m.MAE),
			slog.Float64("rmse", m.RMSE),
			slog.Float64("mape_percent", m.MAPE),
			slog.Float64("bias", m.Bias))
	}
}
