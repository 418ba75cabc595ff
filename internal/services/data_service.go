package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"fiscaldash/internal/config"
	"fiscaldash/internal/ledger"
)

// DataService serves the canonical revenue table and the payroll ledger.
//
// Loads are memoized per (directory, newest mtime, file count): appending
// the next annual file or re-exporting an existing one invalidates the
// cached table, anything else reuses it.
type DataService struct {
	loader      *ledger.Loader
	revenueDir  string
	filePrefix  string
	fileExt     string
	payrollFile string
	logger      *slog.Logger

	mu       sync.Mutex
	cached   ledger.Table
	cacheKey cacheKey
}

type cacheKey struct {
	dir     string
	newest  time.Time
	matches int
}

// NewDataService builds the service from data configuration.
func NewDataService(cfg config.DataConfig, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	mode, ok := ledger.ParseMode(cfg.ParseMode)
	if !ok {
		logger.Warn("unknown parse mode, falling back to punctuated",
			slog.String("parse_mode", cfg.ParseMode))
	}
	return &DataService{
		loader:      ledger.NewLoader(cfg.FilePrefix, cfg.FileExt, mode, logger),
		revenueDir:  cfg.RevenueDir,
		filePrefix:  cfg.FilePrefix,
		fileExt:     cfg.FileExt,
		payrollFile: cfg.PayrollFile,
		logger:      logger.With(slog.String("component", "data_service")),
	}
}

// Revenue returns the canonical revenue table, re-reading the directory
// only when its contents changed.
func (s *DataService) Revenue(ctx context.Context) (ledger.Table, error) {
	key, err := s.currentKey()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && key == s.cacheKey {
		s.logger.DebugContext(ctx, "serving cached revenue table",
			slog.Int("records", len(s.cached)))
		return s.cached, nil
	}

	table, err := s.loader.Load(s.revenueDir)
	if err != nil {
		return nil, err
	}
	s.cached = table
	s.cacheKey = key

	s.logger.InfoContext(ctx, "revenue table reloaded",
		slog.String("dir", s.revenueDir),
		slog.Int("records", len(table)))
	return table, nil
}

// Specifications returns the distinct specification labels, sorted.
func (s *DataService) Specifications(ctx context.Context) ([]string, error) {
	table, err := s.Revenue(ctx)
	if err != nil {
		return nil, err
	}
	return table.Specifications(), nil
}

// Specification returns records for one label, or ErrUnknownSpecification.
func (s *DataService) Specification(ctx context.Context, spec string) (ledger.Table, error) {
	table, err := s.Revenue(ctx)
	if err != nil {
		return nil, err
	}
	filtered := table.FilterSpecification(spec)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSpecification, spec)
	}
	return filtered, nil
}

// Payroll returns the payroll ledger. Not memoized; the file is small and
// rarely requested.
func (s *DataService) Payroll(ctx context.Context) (ledger.PayrollTable, error) {
	return ledger.LoadPayroll(s.payrollFile, s.logger)
}

// currentKey stats the directory so cache hits survive only while nothing
// changed. Only files the loader would pick up participate; unrelated churn
// in the directory keeps the cache warm. Stat failures defer to Load for
// its richer error.
func (s *DataService) currentKey() (cacheKey, error) {
	key := cacheKey{dir: s.revenueDir}
	entries, err := os.ReadDir(s.revenueDir)
	if err != nil {
		return key, nil
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, s.filePrefix+"-") || !strings.HasSuffix(name, s.fileExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		key.matches++
		if info.ModTime().After(key.newest) {
			key.newest = info.ModTime()
		}
	}
	return key, nil
}
