// internal/logging/guard.go
package logging

import (
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Guard owns every sink opened by one initialization pass. The dispatcher
// is only usable while the Guard is open: keep it for the life of the
// process and Close it at shutdown, typically with defer.
type Guard struct {
	logger *zap.Logger
	sinks  []*sink

	mu       sync.Mutex
	restore  func()
	released bool
}

// Logger returns the dispatcher backed by this guard's sinks.
func (g *Guard) Logger() *Logger {
	return New(g.logger)
}

// Close detaches the dispatcher from the zap globals, then flushes every
// sink and waits for its worker to exit. Records logged before Close are
// on their destinations when it returns. A second call returns
// ErrGuardReleased.
func (g *Guard) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return ErrGuardReleased
	}
	g.released = true

	if g.restore != nil {
		g.restore()
	}
	return releaseAll(g.sinks)
}

func releaseAll(sinks []*sink) error {
	var err error
	for _, s := range sinks {
		err = multierr.Append(err, s.release())
	}
	return err
}
