package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fiscaldash/internal/config"
	"fiscaldash/internal/forecast"
	"fiscaldash/internal/ledger"
)

// ForecastRequest carries the per-call model settings. Zero/empty fields
// fall back to the configured defaults.
type ForecastRequest struct {
	Specification string
	HorizonMonths int
	Transform     string
	SplitPolicy   string
}

// ForecastService runs the forecast pipeline on one specification's series.
type ForecastService struct {
	data     *DataService
	defaults config.ForecastConfig
	logger   *slog.Logger
}

// NewForecastService builds the service around the shared data service.
func NewForecastService(data *DataService, defaults config.ForecastConfig, logger *slog.Logger) *ForecastService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForecastService{
		data:     data,
		defaults: defaults,
		logger:   logger.With(slog.String("component", "forecast_service")),
	}
}

// Forecast validates the request, pulls the specification's series from the
// canonical table and runs the engine.
func (s *ForecastService) Forecast(ctx context.Context, req ForecastRequest) (*forecast.Result, error) {
	if !ledger.IsForecastable(req.Specification) {
		return nil, fmt.Errorf("%w: %s", ErrNotForecastable, req.Specification)
	}

	records, err := s.data.Specification(ctx, req.Specification)
	if err != nil {
		return nil, err
	}

	cfg, err := s.buildConfig(req)
	if err != nil {
		return nil, err
	}

	series := make([]forecast.Observation, len(records))
	for i, p := range records.Series() {
		series[i] = forecast.Observation{Date: p.Date, Value: p.Value}
	}

	start := time.Now()
	result, err := forecast.Forecast(series, cfg)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "forecast completed",
		slog.String("specification", req.Specification),
		slog.Int("horizon_months", cfg.HorizonMonths),
		slog.String("transform", cfg.Transform.String()),
		slog.String("split_policy", cfg.SplitPolicy.String()),
		slog.Int("train_months", result.TrainMonths),
		slog.Int("test_months", result.TestMonths),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

func (s *ForecastService) buildConfig(req ForecastRequest) (forecast.Config, error) {
	cfg := forecast.Config{
		HorizonMonths:   s.defaults.HorizonMonths,
		SeasonalityMode: s.defaults.SeasonalityMode,
		IntervalWidth:   s.defaults.IntervalWidth,
		FourierOrder:    s.defaults.FourierOrder,
	}

	transform := req.Transform
	if transform == "" {
		transform = s.defaults.Transform
	}
	t, ok := forecast.ParseTransform(transform)
	if !ok {
		return cfg, fmt.Errorf("unknown transform: %s", transform)
	}
	cfg.Transform = t

	policy := req.SplitPolicy
	if policy == "" {
		policy = s.defaults.SplitPolicy
	}
	p, ok := forecast.ParseSplitPolicy(policy)
	if !ok {
		return cfg, fmt.Errorf("unknown split policy: %s", policy)
	}
	cfg.SplitPolicy = p

	if req.HorizonMonths > 0 {
		cfg.HorizonMonths = req.HorizonMonths
	}
	return cfg, cfg.Validate()
}
