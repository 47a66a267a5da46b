package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"coviddash/internal/view"
)

// DefaultDashboardNote is shown under the dashboard when DASHBOARD_NOTE is unset.
const DefaultDashboardNote = "Data source: [disease.sh](https://disease.sh) historical worldwide totals. " +
	"Counts are cumulative and reported by date of publication."

// Config holds all configuration for the dashboard service
type Config struct {
	// Server configuration
	Port string `env:"PORT,default=8080"`

	// Upstream API
	DiseaseAPIURL string        `env:"DISEASE_API_URL,default=https://disease.sh/v3/covid-19/historical/all"`
	FetchTimeout  time.Duration `env:"FETCH_TIMEOUT,default=0s"`
	FetchRetries  int           `env:"FETCH_RETRIES,default=0"`

	// Dashboard defaults
	DefaultLookbackDays int           `env:"DEFAULT_LOOKBACK_DAYS,default=30"`
	DefaultPageSize     int           `env:"DEFAULT_PAGE_SIZE,default=10"`
	LoadingDelay        time.Duration `env:"LOADING_DELAY,default=1s"`
	DashboardNote       string        `env:"DASHBOARD_NOTE"`

	// Local testing configuration
	MockupMode bool          `env:"MOCKUP_MODE,default=false"`
	MockDelay  time.Duration `env:"MOCK_DELAY,default=0s"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=auto"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if cfg.DashboardNote == "" {
		cfg.DashboardNote = DefaultDashboardNote
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the enumerated dashboard defaults.
func (c *Config) Validate() error {
	if !view.ValidLookbackDays(c.DefaultLookbackDays) {
		return fmt.Errorf("DEFAULT_LOOKBACK_DAYS must be one of %v, got %d", view.LookbackOptions, c.DefaultLookbackDays)
	}
	if !view.ValidPageSize(c.DefaultPageSize) {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be one of %v, got %d", view.PageSizeOptions, c.DefaultPageSize)
	}
	if c.LoadingDelay < 0 {
		return fmt.Errorf("LOADING_DELAY must not be negative, got %s", c.LoadingDelay)
	}
	if c.MockDelay < 0 {
		return fmt.Errorf("MOCK_DELAY must not be negative, got %s", c.MockDelay)
	}
	if c.FetchRetries < 0 {
		return fmt.Errorf("FETCH_RETRIES must not be negative, got %d", c.FetchRetries)
	}
	return nil
}

// DefaultParameters returns the view parameters a visitor starts with.
func (c *Config) DefaultParameters() view.Parameters {
	p := view.DefaultParameters()
	p.LookbackDays = c.DefaultLookbackDays
	p.PageSize = c.DefaultPageSize
	return p
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
