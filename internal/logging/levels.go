// internal/logging/levels.go
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level is the severity used both as an event severity and as a sink
// threshold. Values mirror zapcore so that the zero value is InfoLevel.
type Level int8

const (
	// TraceLevel sits below Debug for ultra-verbose logging.
	TraceLevel Level = iota - 2
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	// OffLevel is only meaningful as a threshold: it admits nothing.
	OffLevel
)

// zapTraceLevel is the zapcore value events at TraceLevel are emitted with.
const zapTraceLevel = zapcore.Level(-2)

var levelNames = map[Level]string{
	TraceLevel: "trace",
	DebugLevel: "debug",
	InfoLevel:  "info",
	WarnLevel:  "warn",
	ErrorLevel: "error",
	OffLevel:   "off",
}

// ParseLevel parses one of trace, debug, info, warn, error or off,
// ignoring case.
func ParseLevel(s string) (Level, error) {
	for l, name := range levelNames {
		if strings.EqualFold(s, name) {
			return l, nil
		}
	}
	return InfoLevel, fmt.Errorf("%w: %q (want trace, debug, info, warn, error or off)", ErrInvalidLevel, s)
}

// String returns the lower-case level name.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int8(l))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Enabled reports whether an event at lvl passes l used as a threshold.
// OffLevel never admits and is never admitted.
func (l Level) Enabled(lvl Level) bool {
	if l >= OffLevel || lvl >= OffLevel {
		return false
	}
	return lvl >= l
}

// ZapLevel returns the zapcore level for l. The second result is false
// for OffLevel, which has no active rank.
func (l Level) ZapLevel() (zapcore.Level, bool) {
	switch l {
	case TraceLevel:
		return zapTraceLevel, true
	case DebugLevel:
		return zapcore.DebugLevel, true
	case InfoLevel:
		return zapcore.InfoLevel, true
	case WarnLevel:
		return zapcore.WarnLevel, true
	case ErrorLevel:
		return zapcore.ErrorLevel, true
	}
	return zapcore.InvalidLevel, false
}

// levelFromZap folds zapcore levels onto Level. DPanic, Panic and Fatal
// route as errors.
func levelFromZap(lvl zapcore.Level) Level {
	switch {
	case lvl <= zapTraceLevel:
		return TraceLevel
	case lvl == zapcore.DebugLevel:
		return DebugLevel
	case lvl == zapcore.InfoLevel:
		return InfoLevel
	case lvl == zapcore.WarnLevel:
		return WarnLevel
	}
	return ErrorLevel
}

// encodeLevel writes trace for the custom level, which zapcore would
// otherwise render as Level(-2).
func encodeLevel(lvl zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if lvl == zapTraceLevel {
		enc.AppendString("trace")
		return
	}
	zapcore.LowercaseLevelEncoder(lvl, enc)
}
