// Package config defines all configuration structures for the fairwheel
// service.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/fairwheel/fairwheel/internal/infrastructure/database/postgres"
	"github.com/fairwheel/fairwheel/internal/infrastructure/database/redis"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MarketConfig holds corpus and analysis tunables.
type MarketConfig struct {
	// CorpusTTL is how long a generated market corpus stays fresh before
	// being rebuilt. Zero means the built-in default of 30 minutes.
	CorpusTTL time.Duration `mapstructure:"corpus_ttl"`

	// ReferenceYear anchors vehicle-age calculations. Zero means "use the
	// current calendar year", which is the right choice everywhere outside
	// of tests.
	ReferenceYear int `mapstructure:"reference_year"`
}

// ExternalConfig holds settings for the optional external listings source.
type ExternalConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Namespace            string `mapstructure:"namespace"`
	EnableProcessMetrics bool   `mapstructure:"enable_process_metrics"`
	EnableGoMetrics      bool   `mapstructure:"enable_go_metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the whole service.  Every
// infrastructure component and application service reads its settings from
// the relevant sub-struct.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Market   MarketConfig      `mapstructure:"market"`
	External ExternalConfig    `mapstructure:"external"`
	Postgres postgres.Config   `mapstructure:"postgres"`
	Redis    redis.Config      `mapstructure:"redis"`
	Log      logging.LogConfig `mapstructure:"log"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Market
	if c.Market.CorpusTTL < 0 {
		return fmt.Errorf("config: market.corpus_ttl must be ≥ 0, got %s", c.Market.CorpusTTL)
	}
	if c.Market.ReferenceYear != 0 && c.Market.ReferenceYear < 1990 {
		return fmt.Errorf("config: market.reference_year %d is before 1990", c.Market.ReferenceYear)
	}

	// External
	if c.External.Enabled {
		if c.External.BaseURL == "" {
			return fmt.Errorf("config: external.base_url is required when external.enabled is true")
		}
		u, err := url.Parse(c.External.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("config: external.base_url %q is not a valid http(s) URL", c.External.BaseURL)
		}
	}

	// Postgres
	if c.Postgres.Enabled {
		if c.Postgres.Host == "" {
			return fmt.Errorf("config: postgres.host is required when postgres.enabled is true")
		}
		if c.Postgres.Port < 1 || c.Postgres.Port > 65535 {
			return fmt.Errorf("config: postgres.port %d is out of range [1, 65535]", c.Postgres.Port)
		}
		if c.Postgres.Username == "" {
			return fmt.Errorf("config: postgres.username is required when postgres.enabled is true")
		}
		if c.Postgres.Database == "" {
			return fmt.Errorf("config: postgres.database is required when postgres.enabled is true")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis.enabled is true")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics.enabled is true")
	}

	return nil
}
