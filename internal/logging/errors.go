// internal/logging/errors.go
package logging

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLevel is returned for a level name outside the six known ones.
	ErrInvalidLevel = errors.New("invalid level")

	// ErrSectionMissing is returned when the configuration has no logging section.
	ErrSectionMissing = errors.New("section not found")

	// ErrAlreadyInstalled is returned by Initialize once the global
	// dispatcher has been claimed.
	ErrAlreadyInstalled = errors.New("logging: dispatcher already installed")

	// ErrGuardReleased is returned by a second Guard.Close.
	ErrGuardReleased = errors.New("logging: guard already released")

	errPipeClosed = errors.New("logging: sink pipe closed")
)

// ConfigError reports a logging section that could not be read or that
// carries an invalid value. No I/O has happened when it is returned.
type ConfigError struct {
	Section string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("logging config %q: %v", e.Section, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DuplicateLoggerError reports a logger declared twice with identical
// name, target and level.
type DuplicateLoggerError struct {
	Logger LoggerConfig
}

func (e *DuplicateLoggerError) Error() string {
	return fmt.Sprintf("duplicate logger %s", e.Logger)
}

// UnknownLoggerError reports an appender subscribing to a logger name
// that is not declared.
type UnknownLoggerError struct {
	Name     string
	Appender string
}

func (e *UnknownLoggerError) Error() string {
	return fmt.Sprintf("wrong logger name %q in appender %s", e.Name, e.Appender)
}

// DuplicatePathError reports two file appenders writing the same file.
type DuplicatePathError struct {
	Path string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("duplicate log file path %q", e.Path)
}

// InvalidThresholdError reports an enabled appender whose write level is off.
type InvalidThresholdError struct {
	Appender string
}

func (e *InvalidThresholdError) Error() string {
	return fmt.Sprintf("appender %s is enabled with write_level off", e.Appender)
}

// SinkError reports a failure to create the resources behind a sink.
// The underlying I/O error is preserved.
type SinkError struct {
	Appender string
	Err      error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink %s: %v", e.Appender, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }
