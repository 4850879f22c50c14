package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_NilIsNop(t *testing.T) {
	logger := New(nil)
	require.NotNil(t, logger.Underlying())
	logger.Info("goes nowhere")
	assert.False(t, logger.Enabled(ErrorLevel))
}

func TestLogger_LevelMethods(t *testing.T) {
	core, observed := observer.New(zapTraceLevel)
	logger := New(zap.New(core))

	tests := []struct {
		name    string
		logFunc func()
		level   zapcore.Level
		message string
	}{
		{
			name:    "trace",
			logFunc: func() { logger.Trace("trace message", zap.String("key", "val")) },
			level:   zapTraceLevel,
			message: "trace message",
		},
		{
			name:    "debug",
			logFunc: func() { logger.Debug("debug message", zap.String("key", "val")) },
			level:   zapcore.DebugLevel,
			message: "debug message",
		},
		{
			name:    "info",
			logFunc: func() { logger.Info("info message", zap.String("key", "val")) },
			level:   zapcore.InfoLevel,
			message: "info message",
		},
		{
			name:    "warn",
			logFunc: func() { logger.Warn("warn message", zap.String("key", "val")) },
			level:   zapcore.WarnLevel,
			message: "warn message",
		},
		{
			name:    "error",
			logFunc: func() { logger.Error("error message", zap.String("key", "val")) },
			level:   zapcore.ErrorLevel,
			message: "error message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observed.TakeAll() // Clear previous logs
			tt.logFunc()

			logs := observed.All()
			require.Len(t, logs, 1)
			assert.Equal(t, tt.level, logs[0].Level)
			assert.Equal(t, tt.message, logs[0].Message)
		})
	}
}

func TestLogger_LogOffWritesNothing(t *testing.T) {
	core, observed := observer.New(zapTraceLevel)
	logger := New(zap.New(core))

	logger.Log(OffLevel, "never")

	assert.Zero(t, observed.Len())
}

func TestLogger_NamedSetsTarget(t *testing.T) {
	core, observed := observer.New(zapTraceLevel)
	logger := New(zap.New(core))

	logger.Named("storage").Info("flat")
	logger.Named("storage").Named("wal").Info("nested")

	logs := observed.All()
	require.Len(t, logs, 2)
	assert.Equal(t, "storage", logs[0].LoggerName)
	assert.Equal(t, "storage.wal", logs[1].LoggerName)
}

func TestLogger_With(t *testing.T) {
	core, observed := observer.New(zapTraceLevel)
	logger := New(zap.New(core))

	logger.With(zap.String("component", "grpc")).Info("child log")

	logs := observed.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "grpc", logs[0].ContextMap()["component"])
}

func TestLogger_Enabled(t *testing.T) {
	core, _ := observer.New(zapcore.WarnLevel)
	logger := New(zap.New(core))

	assert.False(t, logger.Enabled(InfoLevel))
	assert.True(t, logger.Enabled(WarnLevel))
	assert.False(t, logger.Enabled(OffLevel))
}

func TestContext_WithLogger(t *testing.T) {
	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)

	FromContext(ctx).Named("api").Info("from context")

	tl.AssertLogged(t, InfoLevel, "api", "from context")
}

func TestContext_FromContextFallsBackToGlobal(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.Same(t, zap.L(), logger.Underlying())
}
