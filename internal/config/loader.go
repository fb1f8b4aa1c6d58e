// Package config provides configuration loading, defaults, and validation
// for the fairwheel service.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all service settings.
const envPrefix = "FAIRWHEEL"

// newViper builds a pre-configured Viper instance with the service's standard
// settings: YAML file type, FAIRWHEEL_ env prefix, automatic env binding, and
// a key replacer that maps "." → "_" so that nested keys like "redis.addr"
// resolve to "FAIRWHEEL_REDIS_ADDR".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerKeys(v)
	return v
}

// registerKeys seeds viper with every known configuration key so that
// environment-only values survive Unmarshal.  Viper resolves env vars per
// key, and a key it has never seen in a file or default is invisible to it.
func registerKeys(v *viper.Viper) {
	for _, key := range []string{
		"server.port", "server.mode", "server.read_timeout",
		"server.write_timeout", "server.max_body_size", "server.shutdown_timeout",
		"market.corpus_ttl", "market.reference_year",
		"external.enabled", "external.base_url", "external.timeout",
		"postgres.enabled", "postgres.host", "postgres.port",
		"postgres.database", "postgres.username", "postgres.password",
		"postgres.ssl_mode", "postgres.max_conns",
		"redis.enabled", "redis.addr", "redis.username", "redis.password",
		"redis.db", "redis.pool_size", "redis.dial_timeout",
		"redis.read_timeout", "redis.write_timeout",
		"log.level", "log.format", "log.output_paths", "log.error_output_paths",
		"metrics.enabled", "metrics.namespace",
		"metrics.enable_process_metrics", "metrics.enable_go_metrics",
	} {
		v.SetDefault(key, nil)
	}
}

// Load reads the YAML file at configPath, merges any FAIRWHEEL_* environment
// variable overrides, applies service defaults for unset fields, and
// validates the result.  It returns a fully-populated *Config or a
// descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from FAIRWHEEL_* environment
// variables, with no config file required.  This is the preferred loading
// strategy for containerised (12-factor) deployments.
//
// Environment variable naming convention:
//
//	FAIRWHEEL_<SECTION>_<FIELD>   e.g.  FAIRWHEEL_SERVER_PORT, FAIRWHEEL_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	v := newViper()
	// No config file — rely solely on env vars and defaults.
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  It is intended for
// hot-reloading non-critical settings such as log level; callers are
// responsible for applying only the safe subset of changes at runtime.
//
// Watch is non-blocking; it starts a background goroutine managed by viper.
// If the changed file fails to parse or validate, onChange is NOT called.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read — errors are ignored here; callers should call Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			// A bad edit should not push the application into a broken state.
			return
		}
		onChange(cfg)
	})
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// It is intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
