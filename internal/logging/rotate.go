// internal/logging/rotate.go
package logging

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// unboundedMegabytes keeps lumberjack's own size check from ever firing.
// Size accounting happens in rotatingFile.
const unboundedMegabytes = math.MaxInt32

// rotatingFile appends to a file and rotates it when the next write would
// push it past maxSize bytes, or when the local calendar day changes.
// Backups beyond the configured count are evicted oldest first.
//
// lumberjack owns the file, backup naming and eviction. Backups are named
// after the wall clock to the millisecond, so two rotations never share a
// millisecond.
type rotatingFile struct {
	name    string
	lj      *lumberjack.Logger
	maxSize int64
	now     func() time.Time
	metrics *Metrics

	mu          sync.Mutex
	size        int64
	day         time.Time
	lastRotated time.Time
}

func newRotatingFile(cfg *FileAppenderConfig, now func() time.Time, m *Metrics) (*rotatingFile, error) {
	if cfg.FileMaxSize <= 0 {
		return nil, errors.New("file_max_size must be > 0")
	}
	if cfg.FileMaxCount <= 0 {
		return nil, errors.New("file_max_count must be > 0")
	}
	if now == nil {
		now = time.Now
	}

	path := cfg.FullPath()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("stat log file: %w", err)
	}

	opened := now()
	if info.Size() > 0 {
		opened = info.ModTime()
	}

	return &rotatingFile{
		name: cfg.label(),
		lj: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    unboundedMegabytes,
			MaxBackups: cfg.FileMaxCount,
			LocalTime:  true,
		},
		maxSize: cfg.FileMaxSize,
		now:     now,
		metrics: m,
		size:    info.Size(),
		day:     startOfDay(opened),
	}, nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	today := startOfDay(r.now())
	switch {
	case r.size > 0 && !today.Equal(r.day):
		if err := r.rotate(); err != nil {
			return 0, err
		}
	case r.size > 0 && r.size+int64(len(p)) > r.maxSize:
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}
	r.day = today

	n, err := r.lj.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *rotatingFile) rotate() error {
	// lumberjack renames the live file to a name stamped with the current
	// millisecond and would overwrite a backup taken in the same one.
	for !time.Now().Truncate(time.Millisecond).After(r.lastRotated) {
		time.Sleep(time.Until(r.lastRotated.Add(time.Millisecond)))
	}
	err := r.lj.Rotate()
	r.lastRotated = time.Now().Truncate(time.Millisecond)
	if err != nil {
		return fmt.Errorf("rotate %s: %w", r.lj.Filename, err)
	}
	r.size = 0
	r.metrics.rotated(r.name)
	return nil
}

// Sync is a no-op: lumberjack writes straight to the file.
func (r *rotatingFile) Sync() error {
	return nil
}

// Close closes the live file. lumberjack keeps one eviction goroutine per
// Logger after Close, so each file sink opened in the process leaves at
// most one goroutine behind.
func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lj.Close()
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
