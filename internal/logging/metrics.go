// internal/logging/metrics.go
package logging

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what every sink does. A nil *Metrics records nothing.
type Metrics struct {
	Written     *prometheus.CounterVec
	Dropped     *prometheus.CounterVec
	WriteErrors *prometheus.CounterVec
	Rotations   *prometheus.CounterVec
	QueueDepth  *prometheus.GaugeVec
}

// NewMetrics creates the sink collectors and registers them with reg.
// reg may be nil, in which case the collectors are only kept locally.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Written: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beaver",
			Subsystem: "log_sink",
			Name:      "records_written_total",
			Help:      "Records written to the sink's destination.",
		}, []string{"sink"}),
		Dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beaver",
			Subsystem: "log_sink",
			Name:      "records_dropped_total",
			Help:      "Records discarded because the sink's queue was full.",
		}, []string{"sink"}),
		WriteErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beaver",
			Subsystem: "log_sink",
			Name:      "write_errors_total",
			Help:      "Records the destination failed to accept.",
		}, []string{"sink"}),
		Rotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beaver",
			Subsystem: "log_sink",
			Name:      "rotations_total",
			Help:      "File rotations performed by the sink.",
		}, []string{"sink"}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "beaver",
			Subsystem: "log_sink",
			Name:      "queue_depth",
			Help:      "Records waiting for the sink's flush worker.",
		}, []string{"sink"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Written, m.Dropped, m.WriteErrors, m.Rotations, m.QueueDepth} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) written(sink string) {
	if m != nil {
		m.Written.WithLabelValues(sink).Inc()
	}
}

func (m *Metrics) dropped(sink string) {
	if m != nil {
		m.Dropped.WithLabelValues(sink).Inc()
	}
}

func (m *Metrics) writeFailed(sink string) {
	if m != nil {
		m.WriteErrors.WithLabelValues(sink).Inc()
	}
}

func (m *Metrics) rotated(sink string) {
	if m != nil {
		m.Rotations.WithLabelValues(sink).Inc()
	}
}

func (m *Metrics) queued(sink string, depth int) {
	if m != nil {
		m.QueueDepth.WithLabelValues(sink).Set(float64(depth))
	}
}
