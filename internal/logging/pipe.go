// internal/logging/pipe.go
package logging

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap/zapcore"
)

// OverflowPolicy decides what a full pipe does with a new record.
type OverflowPolicy string

const (
	// OverflowBlock makes the caller wait until the flush worker frees a
	// slot. No record is lost.
	OverflowBlock OverflowPolicy = "block"
	// OverflowDrop discards the record and counts it.
	OverflowDrop OverflowPolicy = "drop"
)

const defaultPipeCapacity = 1024

// PipeConfig tunes the bounded queue in front of every sink.
type PipeConfig struct {
	Capacity int            `koanf:"capacity"`
	Overflow OverflowPolicy `koanf:"overflow"`
}

func (p PipeConfig) withDefaults() PipeConfig {
	if p.Capacity == 0 {
		p.Capacity = defaultPipeCapacity
	}
	if p.Overflow == "" {
		p.Overflow = OverflowBlock
	}
	return p
}

func (p PipeConfig) validate() error {
	if p.Capacity < 1 {
		return fmt.Errorf("pipe capacity must be > 0, got %d", p.Capacity)
	}
	if p.Overflow != OverflowBlock && p.Overflow != OverflowDrop {
		return fmt.Errorf("pipe overflow must be '%s' or '%s', got %q", OverflowBlock, OverflowDrop, p.Overflow)
	}
	return nil
}

// pipeItem is either a record or a flush barrier.
type pipeItem struct {
	record []byte
	ack    chan struct{}
}

// pipe moves encoded records to out on a dedicated worker goroutine so
// that logging callers never touch the physical writer.
type pipe struct {
	name    string
	out     zapcore.WriteSyncer
	items   chan pipeItem
	done    chan struct{}
	policy  OverflowPolicy
	metrics *Metrics

	// mu orders sends against close; senders hold it shared.
	mu     sync.RWMutex
	closed bool

	errMu   sync.Mutex
	lastErr error
}

func newPipe(name string, out zapcore.WriteSyncer, cfg PipeConfig, m *Metrics) *pipe {
	cfg = cfg.withDefaults()
	p := &pipe{
		name:    name,
		out:     out,
		items:   make(chan pipeItem, cfg.Capacity),
		done:    make(chan struct{}),
		policy:  cfg.Overflow,
		metrics: m,
	}
	go p.run()
	return p
}

func (p *pipe) run() {
	defer close(p.done)
	for item := range p.items {
		if item.ack != nil {
			close(item.ack)
			continue
		}
		if _, err := p.out.Write(item.record); err != nil {
			p.setErr(err)
			p.metrics.writeFailed(p.name)
			continue
		}
		p.metrics.written(p.name)
	}
}

// Write queues a copy of b. The caller's buffer is reused by zap once
// Write returns.
func (p *pipe) Write(b []byte) (int, error) {
	record := make([]byte, len(b))
	copy(record, b)

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return 0, errPipeClosed
	}

	item := pipeItem{record: record}
	if p.policy == OverflowDrop {
		select {
		case p.items <- item:
		default:
			p.metrics.dropped(p.name)
			return len(b), nil
		}
	} else {
		p.items <- item
	}
	p.metrics.queued(p.name, len(p.items))
	return len(b), nil
}

// Sync waits until every record queued before it has been written, then
// syncs the destination. Barriers block regardless of the overflow policy.
func (p *pipe) Sync() error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return errPipeClosed
	}
	ack := make(chan struct{})
	p.items <- pipeItem{ack: ack}
	p.mu.RUnlock()

	<-ack
	return p.out.Sync()
}

// Close stops accepting records, waits for the worker to drain the queue
// and syncs the destination. Only the first call does anything.
func (p *pipe) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.items)
	p.mu.Unlock()

	<-p.done
	p.metrics.queued(p.name, 0)
	if err := p.out.Sync(); err != nil {
		return err
	}
	return p.err()
}

func (p *pipe) setErr(err error) {
	p.errMu.Lock()
	p.lastErr = err
	p.errMu.Unlock()
}

func (p *pipe) err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.lastErr
}

var _ io.WriteCloser = (*pipe)(nil)
