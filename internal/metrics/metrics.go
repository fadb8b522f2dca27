// Package metrics records verification counts and latencies in a Prometheus
// registry and exports them in the node_exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/ariel-frischer/ilverify/internal/lifecycle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ilverify"

// Recorder collects verification metrics. It implements lifecycle.Handler and
// is safe for concurrent use.
type Recorder struct {
	registry *prometheus.Registry

	verifications *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	lastRun       prometheus.Gauge
}

// NewRecorder creates a Recorder backed by its own registry, so several
// recorders never collide on metric names.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		verifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "verifications_total",
				Help:      "Number of module verifications by verdict.",
			},
			[]string{"verdict"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "verification_duration_seconds",
				Help:      "Wall time of one module verification, serialization included.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"verdict"},
		),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_verification_timestamp_seconds",
			Help:      "Unix time of the most recent finished verification.",
		}),
	}
}

// OnVerificationComplete implements lifecycle.Handler.
func (r *Recorder) OnVerificationComplete(e lifecycle.Event) {
	verdict := e.Verdict()
	r.verifications.WithLabelValues(verdict).Inc()
	r.duration.WithLabelValues(verdict).Observe(e.Duration.Seconds())
	r.lastRun.SetToCurrentTime()
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the current metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

var _ lifecycle.Handler = (*Recorder)(nil)
