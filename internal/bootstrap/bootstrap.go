// Package bootstrap brings a beaver process up: it loads the layered
// configuration, installs the logging dispatcher exactly once and keeps
// the logging Guard alive until Close.
//
// Usage:
//
//	b := bootstrap.New(bootstrap.WithConfigDir("./etc"))
//	if err := b.Initialize(); err != nil {
//	    return err
//	}
//	defer b.Close()
//
//	logging.L().Named("api").Info("ready")
package bootstrap

import (
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/beaver/internal/config"
	"github.com/fyrsmithlabs/beaver/internal/logging"
)

// Target is the target of the events Bootstrap logs about itself.
const Target = "bootstrap"

// ErrConfigNotLoaded is returned by InitializeLogging before InitializeConfig.
var ErrConfigNotLoaded = errors.New("bootstrap: configuration not loaded")

// Option configures a Bootstrap.
type Option func(*Bootstrap)

// WithConfigDir sets the directory config.yaml or config.toml is read from.
func WithConfigDir(dir string) Option {
	return func(b *Bootstrap) {
		b.configOpts.Dir = dir
	}
}

// WithEnvPrefix sets the prefix of environment overrides.
func WithEnvPrefix(prefix string) Option {
	return func(b *Bootstrap) {
		b.configOpts.EnvPrefix = prefix
	}
}

// WithEnvSeparator sets the separator of environment overrides.
func WithEnvSeparator(sep string) Option {
	return func(b *Bootstrap) {
		b.configOpts.EnvSeparator = sep
	}
}

// WithLogging switches logging installation on or off. It is on by default.
func WithLogging(enabled bool) Option {
	return func(b *Bootstrap) {
		b.initLogging = enabled
	}
}

// WithLoggingOptions passes options through to logging.Initialize.
func WithLoggingOptions(opts ...logging.Option) Option {
	return func(b *Bootstrap) {
		b.loggingOpts = append(b.loggingOpts, opts...)
	}
}

// WithMetricsRegisterer registers the sink metrics with reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(b *Bootstrap) {
		b.registerer = reg
	}
}

// Bootstrap owns the process configuration and the logging Guard.
type Bootstrap struct {
	configOpts  config.Options
	initLogging bool
	loggingOpts []logging.Option
	registerer  prometheus.Registerer

	mu         sync.Mutex
	cfg        *config.Config
	loggingCfg *logging.Config
	metrics    *logging.Metrics
	guard      *logging.Guard
}

// New creates a Bootstrap. Nothing is loaded until Initialize.
func New(opts ...Option) *Bootstrap {
	b := &Bootstrap{initLogging: true}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Initialize loads the configuration, then installs logging.
func (b *Bootstrap) Initialize() error {
	if err := b.InitializeConfig(); err != nil {
		return err
	}
	return b.InitializeLogging()
}

// InitializeConfig loads the configuration file and environment overrides.
func (b *Bootstrap) InitializeConfig() error {
	cfg, err := config.Load(b.configOpts)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	b.mu.Lock()
	b.cfg = cfg
	b.mu.Unlock()
	return nil
}

// InitializeLogging reads the logging section and installs the dispatcher.
// It does nothing when logging was switched off with WithLogging(false).
func (b *Bootstrap) InitializeLogging() error {
	if !b.initLogging {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cfg == nil {
		return ErrConfigNotLoaded
	}

	loggingCfg, err := logging.Load(b.cfg)
	if err != nil {
		return fmt.Errorf("failed to load logging configuration: %w", err)
	}

	opts := b.loggingOpts
	if b.registerer != nil {
		m, err := logging.NewMetrics(b.registerer)
		if err != nil {
			return fmt.Errorf("failed to register sink metrics: %w", err)
		}
		b.metrics = m
		opts = append(opts, logging.WithMetrics(m))
	}

	guard, err := logging.Initialize(loggingCfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	b.loggingCfg = loggingCfg
	b.guard = guard

	logger := guard.Logger().Named(Target)
	if file := b.cfg.File(); file != "" {
		logger.Info("logging initialized",
			zap.String("config", file),
			zap.Int("file_appenders", len(loggingCfg.FileAppenders)),
			zap.Bool("console", loggingCfg.ConsoleAppender != nil && loggingCfg.ConsoleAppender.Enable))
	} else {
		logger.Warn("no configuration file found, using environment only")
	}
	return nil
}

// Config returns the loaded configuration, or nil before InitializeConfig.
func (b *Bootstrap) Config() *config.Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg
}

// LoggingConfig returns the validated logging section, or nil when logging
// was not installed.
func (b *Bootstrap) LoggingConfig() *logging.Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loggingCfg
}

// Metrics returns the sink metrics, or nil without WithMetricsRegisterer.
func (b *Bootstrap) Metrics() *logging.Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.metrics
}

// Close releases the logging Guard, flushing every sink. It is safe to
// call when logging was never installed, and more than once.
func (b *Bootstrap) Close() error {
	b.mu.Lock()
	guard := b.guard
	b.guard = nil
	b.mu.Unlock()

	if guard == nil {
		return nil
	}
	return guard.Close()
}
