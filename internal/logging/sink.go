// internal/logging/sink.go
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option customizes sink acquisition.
type Option func(*options)

type options struct {
	stdout  zapcore.WriteSyncer
	metrics *Metrics
	now     func() time.Time
	zapOpts []zap.Option
}

func newOptions(opts []Option) *options {
	o := &options{
		stdout: os.Stdout,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithStdout replaces standard output as the console destination.
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		o.stdout = zapcore.AddSync(w)
	}
}

// WithMetrics records sink activity in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock replaces the clock file sinks use for day rollover.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithZapOptions passes options to the dispatcher's zap.Logger.
func WithZapOptions(opts ...zap.Option) Option {
	return func(o *options) {
		o.zapOpts = append(o.zapOpts, opts...)
	}
}

// sink owns the pipe and the destination behind one route.
type sink struct {
	name string
	pipe *pipe
	dest io.Closer
}

// release flushes and joins the pipe worker, then closes the destination.
func (s *sink) release() error {
	err := s.pipe.Close()
	if s.dest != nil {
		err = multierr.Append(err, s.dest.Close())
	}
	if err != nil {
		return fmt.Errorf("release %s: %w", s.name, err)
	}
	return nil
}

func newSinkCore(route *Route, dest zapcore.WriteSyncer, format string, cfg PipeConfig, m *Metrics) (zapcore.Core, *pipe) {
	p := newPipe(route.Appender, dest, cfg, m)
	core := zapcore.NewCore(newEncoder(format), p, zapTraceLevel)
	return newRouteCore(core, route), p
}

func acquireFile(route *Route, fa *FileAppenderConfig, c *Config, o *options) (zapcore.Core, *sink, error) {
	rf, err := newRotatingFile(fa, o.now, o.metrics)
	if err != nil {
		return nil, nil, &SinkError{Appender: route.Appender, Err: err}
	}
	core, p := newSinkCore(route, rf, c.Format, c.Pipe, o.metrics)
	return core, &sink{name: route.Appender, pipe: p, dest: rf}, nil
}

func acquireConsole(route *Route, c *Config, o *options) (zapcore.Core, *sink) {
	core, p := newSinkCore(route, stdoutSyncer{o.stdout}, c.Format, c.Pipe, o.metrics)
	return core, &sink{name: route.Appender, pipe: p}
}

// newEncoder creates JSON or console encoder.
func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = encodeLevel

	if format == FormatConsole {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}

// stdoutSyncer ignores the errors syncing a terminal or pipe returns.
type stdoutSyncer struct {
	zapcore.WriteSyncer
}

func (s stdoutSyncer) Sync() error {
	err := s.WriteSyncer.Sync()
	if err != nil && isStdoutSyncError(err) {
		return nil
	}
	return err
}

// isStdoutSyncError checks if error is harmless stdout/stderr sync error.
// On Linux, syncing stdout/stderr returns EINVAL or ENOTTY which are safe to ignore.
func isStdoutSyncError(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EINVAL || errno == syscall.ENOTTY
	}
	return false
}
