package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGlobalLogger(t *testing.T) {
	require.NotNil(t, Logger)
	assert.NotNil(t, Logger.logger)

	// Should be safe to use before InitLogger
	Logger.Info("test message")
}

func TestInitLogger(t *testing.T) {
	err := InitLogger()
	require.NoError(t, err)
	assert.NotNil(t, Logger)
	assert.NotNil(t, Logger.logger)
}

func TestInitLogger_WithLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	err := InitLogger()
	require.NoError(t, err)
	assert.True(t, Logger.Unwrap().Core().Enabled(zap.DebugLevel))
}

func TestInitLogger_WithInvalidLogLevel(t *testing.T) {
	// Invalid level falls back to the production default
	t.Setenv("LOG_LEVEL", "invalid")

	err := InitLogger()
	require.NoError(t, err)
	assert.False(t, Logger.Unwrap().Core().Enabled(zap.DebugLevel))
}

func TestSafeLogger_NilLogger(t *testing.T) {
	logger := &SafeLogger{logger: nil}

	logger.Info("test")
	logger.Warn("test")
	logger.Debug("test")
	logger.Error("test")
	assert.NoError(t, logger.Sync())
}

func TestSafeLogger_NilSafeLogger(t *testing.T) {
	var logger *SafeLogger

	logger.Info("test")
	logger.Warn("test")
	logger.Debug("test")
	logger.Error("test")
	assert.Nil(t, logger.With(zap.String("key", "value")))
	assert.NotNil(t, logger.Unwrap())
}

func TestSafeLogger_With(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := NewSafeLogger(zap.New(core))

	logger.With(zap.String("tenant_id", "escola-1")).Info("person created")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "person created", entry.Message)
	assert.Equal(t, "escola-1", entry.ContextMap()["tenant_id"])
}

func TestSafeLogger_Unwrap(t *testing.T) {
	zapLogger := zap.NewNop()
	logger := &SafeLogger{logger: zapLogger}

	assert.Equal(t, zapLogger, logger.Unwrap())
	assert.NotNil(t, (&SafeLogger{}).Unwrap())
}
