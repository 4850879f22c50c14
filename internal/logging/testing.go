// internal/logging/testing.go
package logging

import (
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger wraps Logger with test observation capabilities.
type TestLogger struct {
	*Logger
	observed *observer.ObservedLogs
}

// NewTestLogger creates a logger for testing with full observation.
func NewTestLogger() *TestLogger {
	core, observed := observer.New(zapTraceLevel)
	return &TestLogger{
		Logger:   New(zap.New(core)),
		observed: observed,
	}
}

// NewRouteTestLogger observes only the events route admits.
func NewRouteTestLogger(route *Route) *TestLogger {
	core, observed := observer.New(zapTraceLevel)
	return &TestLogger{
		Logger:   New(zap.New(newRouteCore(core, route))),
		observed: observed,
	}
}

// All returns all logged entries.
func (t *TestLogger) All() []observer.LoggedEntry {
	return t.observed.All()
}

// FilterMessage returns entries matching message substring.
func (t *TestLogger) FilterMessage(msg string) *observer.ObservedLogs {
	return t.observed.FilterMessage(msg)
}

// Reset clears all logged entries.
func (t *TestLogger) Reset() {
	t.observed.TakeAll()
}

func (t *TestLogger) find(level Level, target, msgContains string) bool {
	for _, entry := range t.observed.All() {
		if levelFromZap(entry.Level) == level &&
			entry.LoggerName == target &&
			strings.Contains(entry.Message, msgContains) {
			return true
		}
	}
	return false
}

// AssertLogged verifies a log at level from target containing message was logged.
func (t *TestLogger) AssertLogged(tb testing.TB, level Level, target, msgContains string) {
	tb.Helper()
	if !t.find(level, target, msgContains) {
		tb.Errorf("expected %v log from %q containing %q, logs: %+v", level, target, msgContains, t.observed.All())
	}
}

// AssertNotLogged verifies no log at level from target containing message was logged.
func (t *TestLogger) AssertNotLogged(tb testing.TB, level Level, target, msgContains string) {
	tb.Helper()
	if t.find(level, target, msgContains) {
		tb.Errorf("unexpected %v log from %q containing %q", level, target, msgContains)
	}
}

// AssertField verifies a field with key and value exists in message.
func (t *TestLogger) AssertField(tb testing.TB, msg, key string, expected interface{}) {
	tb.Helper()
	for _, entry := range t.observed.FilterMessage(msg).All() {
		// ContextMap decodes every field type, including integers and
		// durations that zap keeps outside Field.Interface.
		if got, ok := entry.ContextMap()[key]; ok && reflect.DeepEqual(got, expected) {
			return
		}
	}
	tb.Errorf("field %q=%v not found in message %q", key, expected, msg)
}

// ResetForTesting returns the install slot to StateUnconfigured so a test
// can call Initialize again. Close the previous Guard first.
func ResetForTesting() {
	slot.mu.Lock()
	slot.state = StateUnconfigured
	slot.mu.Unlock()
}
