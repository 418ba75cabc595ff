// Package config loads application configuration from an optional YAML file
// overlaid with FISCAL_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
	Forecast ForecastConfig `yaml:"forecast" envconfig:"FORECAST"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig throttles the API as a whole; the forecast endpoint is
// CPU-bound and the data endpoints can trigger full directory re-reads.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// DataConfig locates the source ledgers and output directory.
type DataConfig struct {
	RevenueDir  string `yaml:"revenue_dir" envconfig:"REVENUE_DIR" default:"data/rcl"`
	FilePrefix  string `yaml:"file_prefix" envconfig:"FILE_PREFIX" default:"RCL"`
	FileExt     string `yaml:"file_ext" envconfig:"FILE_EXT" default:".xlsx"`
	ParseMode   string `yaml:"parse_mode" envconfig:"PARSE_MODE" default:"punctuated"`
	PayrollFile string `yaml:"payroll_file" envconfig:"PAYROLL_FILE" default:"data/folha/Folha_Geral.xlsx"`
	ReportsDir  string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"data/reports"`
}

// ForecastConfig carries the default model settings; requests may override
// horizon, transform and split policy per call.
type ForecastConfig struct {
	HorizonMonths   int     `yaml:"horizon_months" envconfig:"HORIZON_MONTHS" default:"36"`
	Transform       string  `yaml:"transform" envconfig:"TRANSFORM" default:"log"`
	SplitPolicy     string  `yaml:"split_policy" envconfig:"SPLIT_POLICY" default:"trailing-year"`
	SeasonalityMode string  `yaml:"seasonality_mode" envconfig:"SEASONALITY_MODE" default:"multiplicative"`
	IntervalWidth   float64 `yaml:"interval_width" envconfig:"INTERVAL_WIDTH" default:"0.95"`
	FourierOrder    int     `yaml:"fourier_order" envconfig:"FOURIER_ORDER" default:"3"`
}

// Load reads the optional config file, then overlays environment variables.
// Environment takes precedence; struct tag defaults fill the rest.
func Load() (*Config, error) {
	return LoadFrom(configFilePath())
}

// LoadFrom loads configuration with an explicit file path. Environment
// variables and tag defaults come first; keys present in the file override
// them. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("FISCAL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func configFilePath() string {
	if p := os.Getenv("FISCAL_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}
	switch c.Data.ParseMode {
	case "punctuated", "hinted":
	default:
		return fmt.Errorf("invalid parse mode: %s", c.Data.ParseMode)
	}
	if c.Forecast.HorizonMonths < 1 {
		return fmt.Errorf("invalid forecast horizon: %d", c.Forecast.HorizonMonths)
	}
	if c.Forecast.IntervalWidth <= 0 || c.Forecast.IntervalWidth >= 1 {
		return fmt.Errorf("invalid interval width: %g", c.Forecast.IntervalWidth)
	}
	return nil
}
