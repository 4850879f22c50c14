// internal/logging/logger.go
package logging

import (
	"go.uber.org/zap"
)

// Logger wraps Zap with the Trace level and target-aware child loggers.
type Logger struct {
	zap *zap.Logger
}

// New wraps z. A nil z yields a no-op logger.
func New(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{zap: z}
}

// Log writes msg at lvl. OffLevel writes nothing.
func (l *Logger) Log(lvl Level, msg string, fields ...zap.Field) {
	zl, ok := lvl.ZapLevel()
	if !ok {
		return
	}
	l.zap.Log(zl, msg, fields...)
}

func (l *Logger) Trace(msg string, fields ...zap.Field) {
	l.Log(TraceLevel, msg, fields...)
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, fields...)
}

// Child logger creation

// Named appends name to the logger's name, dot separated. The full name
// is the target routes match exactly: L().Named("storage") logs with
// target "storage", L().Named("storage").Named("wal") with "storage.wal".
func (l *Logger) Named(name string) *Logger {
	return &Logger{zap: l.zap.Named(name)}
}

func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.zap.With(fields...)}
}

// Enabled reports whether any sink could accept an event at lvl.
func (l *Logger) Enabled(lvl Level) bool {
	zl, ok := lvl.ZapLevel()
	return ok && l.zap.Core().Enabled(zl)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	err := l.zap.Sync()
	// Ignore sync errors on stdout/stderr (common on Linux)
	if err != nil && isStdoutSyncError(err) {
		return nil
	}
	return err
}

// Underlying returns the underlying zap.Logger.
// Useful when integrating with libraries that require a *zap.Logger.
func (l *Logger) Underlying() *zap.Logger {
	return l.zap
}
