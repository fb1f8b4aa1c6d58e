package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fairwheel/fairwheel/internal/config"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultServerMode, cfg.Server.Mode)
	assert.Equal(t, config.DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)
	assert.Equal(t, config.DefaultCorpusTTL, cfg.Market.CorpusTTL)
	assert.Zero(t, cfg.Market.ReferenceYear)
	assert.Equal(t, config.DefaultExternalTimeout, cfg.External.Timeout)
	assert.Equal(t, config.DefaultPostgresPort, cfg.Postgres.Port)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.Equal(t, config.DefaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, config.DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, []string{"stdout"}, cfg.Log.OutputPaths)
	assert.Equal(t, config.DefaultMetricsNamespace, cfg.Metrics.Namespace)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Port = 9090
	cfg.Server.Mode = "debug"
	cfg.Market.CorpusTTL = 5 * time.Minute
	cfg.Market.ReferenceYear = 2024
	cfg.Redis.Addr = "redis.internal:6380"
	cfg.Log.Level = "debug"
	cfg.Log.Format = "console"

	config.ApplyDefaults(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 5*time.Minute, cfg.Market.CorpusTTL)
	assert.Equal(t, 2024, cfg.Market.ReferenceYear)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestApplyDefaults_NilConfig(t *testing.T) {
	assert.NotPanics(t, func() { config.ApplyDefaults(nil) })
}
