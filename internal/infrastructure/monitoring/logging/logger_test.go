package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestNewLoggerJSON(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLoggerConsole(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLoggerDefaults(t *testing.T) {
	l, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "make", Value: "Toyota"}, String("make", "Toyota"))
	assert.Equal(t, Field{Key: "count", Value: 42}, Int("count", 42))
	assert.Equal(t, Field{Key: "price", Value: 120000.0}, Float64("price", 120000.0))
	assert.Equal(t, Field{Key: "synthetic", Value: true}, Bool("synthetic", true))
	assert.Equal(t, Field{Key: "ttl", Value: time.Minute}, Duration("ttl", time.Minute))
}

func TestErrField(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
	assert.Equal(t, "boom", Err(errors.New("boom")).Value)
}

func TestLoggerEmitsFields(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	l.Info("analysis complete",
		String("make", "BMW"),
		Int("comparables", 17),
		Float64("median", 250000),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "analysis complete", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "BMW", fields["make"])
	assert.Equal(t, int64(17), fields["comparables"])
	assert.Equal(t, 250000.0, fields["median"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	l, logs := newObservedLogger(zapcore.WarnLevel)

	l.Debug("dropped")
	l.Info("dropped too")
	l.Warn("kept")

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestWithAddsFields(t *testing.T) {
	l, logs := newObservedLogger(zapcore.InfoLevel)

	child := l.With(String("component", "corpus"))
	child.Info("refreshed")
	l.Info("plain")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "corpus", entries[0].ContextMap()["component"])
	assert.NotContains(t, entries[1].ContextMap(), "component")
}

func TestNamed(t *testing.T) {
	l, logs := newObservedLogger(zapcore.InfoLevel)

	l.Named("http").Named("middleware").Info("hit")

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "http.middleware", logs.All()[0].LoggerName)
}

func TestNopLoggerMethodsAreSafe(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	assert.NotNil(t, l.With(String("k", "v")))
	assert.NotNil(t, l.Named("x"))
}

func TestDefaultLogger(t *testing.T) {
	assert.NotNil(t, Default())

	l, _ := newObservedLogger(zapcore.InfoLevel)
	SetDefault(l)
	assert.Equal(t, l, Default())

	SetDefault(nil)
	assert.Equal(t, l, Default())

	SetDefault(NewNopLogger())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}
