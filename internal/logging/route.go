// internal/logging/route.go
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// TargetFilter admits events from one target at or above Level.
type TargetFilter struct {
	Target string
	Level  Level
}

// Route is the compiled admission rule of one enabled appender.
//
// An event passes when its level clears WriteThreshold and either its
// target equals a configured target whose level it clears, or it matches
// no configured target and clears Default. Default is OffLevel when the
// appender does not subscribe to the default logger.
type Route struct {
	Appender       string
	WriteThreshold Level
	Targets        []TargetFilter
	Default        Level
}

// Compile resolves the appender's logger names against the registry.
// A disabled appender yields a nil Route and no error.
//
// Names are deduplicated. When several descriptors land on the same
// target the most permissive level wins.
func Compile(label string, a AppenderConfig, r *Registry) (*Route, error) {
	if !a.Enable {
		return nil, nil
	}
	if a.WriteLevel >= OffLevel {
		return nil, &InvalidThresholdError{Appender: label}
	}

	route := &Route{
		Appender:       label,
		WriteThreshold: a.WriteLevel,
		Default:        OffLevel,
	}
	seen := make(map[string]struct{}, len(a.LoggerNames))
	for _, name := range a.LoggerNames {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		descriptors := r.Lookup(name)
		if len(descriptors) == 0 {
			return nil, &UnknownLoggerError{Name: name, Appender: label}
		}
		for _, d := range descriptors {
			route.add(d)
		}
	}
	return route, nil
}

func (r *Route) add(d LoggerConfig) {
	if d.Target == "" {
		if d.Level < r.Default {
			r.Default = d.Level
		}
		return
	}
	for i := range r.Targets {
		if r.Targets[i].Target == d.Target {
			if d.Level < r.Targets[i].Level {
				r.Targets[i].Level = d.Level
			}
			return
		}
	}
	r.Targets = append(r.Targets, TargetFilter{Target: d.Target, Level: d.Level})
}

// Admit reports whether an event from target at lvl is written through r.
func (r *Route) Admit(target string, lvl Level) bool {
	if !r.WriteThreshold.Enabled(lvl) {
		return false
	}
	for _, t := range r.Targets {
		if t.Target == target {
			return t.Level.Enabled(lvl)
		}
	}
	return r.Default.Enabled(lvl)
}

// MinLevel is the lowest level any event could be admitted at.
func (r *Route) MinLevel() Level {
	floor := r.Default
	for _, t := range r.Targets {
		if t.Level < floor {
			floor = t.Level
		}
	}
	if r.WriteThreshold > floor {
		floor = r.WriteThreshold
	}
	return floor
}

func (r *Route) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s write_level=%s", r.Appender, r.WriteThreshold)
	for _, t := range r.Targets {
		fmt.Fprintf(&b, " %s>=%s", t.Target, t.Level)
	}
	fmt.Fprintf(&b, " default>=%s", r.Default)
	return b.String()
}

// routeCore gates a sink core by a Route. The zap logger name of an
// entry is its target.
type routeCore struct {
	zapcore.Core
	route *Route
	floor Level
}

func newRouteCore(core zapcore.Core, route *Route) *routeCore {
	return &routeCore{Core: core, route: route, floor: route.MinLevel()}
}

func (c *routeCore) Enabled(lvl zapcore.Level) bool {
	return c.floor.Enabled(levelFromZap(lvl))
}

func (c *routeCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.route.Admit(e.LoggerName, levelFromZap(e.Level)) {
		return ce
	}
	return ce.AddCore(e, c)
}

// With creates a child core that keeps the route.
func (c *routeCore) With(fields []zapcore.Field) zapcore.Core {
	return &routeCore{
		Core:  c.Core.With(fields),
		route: c.route,
		floor: c.floor,
	}
}
