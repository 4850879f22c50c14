// internal/logging/install.go
package logging

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// State is a step of the one-shot initialization.
type State int32

const (
	StateUnconfigured State = iota
	StateConfigLoaded
	StateValidated
	StateRoutesCompiled
	StateSinksAcquired
	StateInstalled
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigLoaded:
		return "config-loaded"
	case StateValidated:
		return "validated"
	case StateRoutesCompiled:
		return "routes-compiled"
	case StateSinksAcquired:
		return "sinks-acquired"
	case StateInstalled:
		return "installed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// slot is the process-wide dispatcher cell. It can be claimed once.
var slot struct {
	mu    sync.Mutex
	state State
}

// CurrentState reports how far initialization got.
func CurrentState() State {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.state
}

// Initialize validates cfg, compiles a route per enabled appender, opens
// the sinks and installs the resulting dispatcher as the zap global
// logger. It succeeds at most once per process; later calls return
// ErrAlreadyInstalled. A failed pass stops in the state it reached and
// releases the sinks it had opened.
//
// The returned Guard must stay open for as long as the process logs.
func Initialize(cfg *Config, opts ...Option) (*Guard, error) {
	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.state == StateInstalled {
		return nil, ErrAlreadyInstalled
	}
	slot.state = StateUnconfigured

	g, err := build(cfg, newOptions(opts), func(s State) { slot.state = s })
	if err != nil {
		return nil, err
	}

	g.restore = zap.ReplaceGlobals(g.logger)
	slot.state = StateInstalled
	return g, nil
}

// L returns the installed dispatcher, or a no-op logger before Initialize.
func L() *Logger {
	return New(zap.L())
}

type compiled struct {
	route *Route
	file  *FileAppenderConfig
}

// build runs every step up to sink acquisition, reporting each state it
// reaches through advance.
func build(cfg *Config, o *options, advance func(State)) (*Guard, error) {
	if cfg == nil {
		return nil, &ConfigError{Section: Section, Err: errors.New("nil config")}
	}
	cfg.applyDefaults()
	advance(StateConfigLoaded)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	advance(StateValidated)

	routes, err := compileAll(cfg)
	if err != nil {
		return nil, err
	}
	advance(StateRoutesCompiled)

	cores := make([]zapcore.Core, 0, len(routes))
	sinks := make([]*sink, 0, len(routes))
	for _, c := range routes {
		if c.file == nil {
			core, s := acquireConsole(c.route, cfg, o)
			cores, sinks = append(cores, core), append(sinks, s)
			continue
		}
		core, s, err := acquireFile(c.route, c.file, cfg, o)
		if err != nil {
			_ = releaseAll(sinks)
			return nil, err
		}
		cores, sinks = append(cores, core), append(sinks, s)
	}
	advance(StateSinksAcquired)

	return &Guard{
		logger: zap.New(zapcore.NewTee(cores...), o.zapOpts...),
		sinks:  sinks,
	}, nil
}

func compileAll(cfg *Config) ([]compiled, error) {
	var out []compiled
	for i := range cfg.FileAppenders {
		fa := &cfg.FileAppenders[i]
		route, err := Compile(fa.label(), fa.AppenderConfig, &cfg.AllLogger)
		if err != nil {
			return nil, err
		}
		if route != nil {
			out = append(out, compiled{route: route, file: fa})
		}
	}
	if cfg.ConsoleAppender != nil {
		route, err := Compile(consoleLabel, cfg.ConsoleAppender.AppenderConfig, &cfg.AllLogger)
		if err != nil {
			return nil, err
		}
		if route != nil {
			out = append(out, compiled{route: route})
		}
	}
	return out, nil
}

// Routes compiles the route of every enabled appender, file appenders
// first, without opening any sink. cfg should already be validated.
func (c *Config) Routes() ([]*Route, error) {
	all, err := compileAll(c)
	if err != nil {
		return nil, err
	}
	routes := make([]*Route, 0, len(all))
	for _, r := range all {
		routes = append(routes, r.route)
	}
	return routes, nil
}
