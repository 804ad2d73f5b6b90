// Package metrics exposes Prometheus collectors for the utterance pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors recorded by the dialogue engine.
type Metrics struct {
	// Utterances counts every handled utterance by result kind.
	Utterances *prometheus.CounterVec
	// ParseErrors counts utterances the grammar rejected.
	ParseErrors prometheus.Counter
	// Confirmations counts yes/no replies that consumed a pending action.
	Confirmations *prometheus.CounterVec
	// Dispatches counts task operations that crossed the storage boundary.
	Dispatches *prometheus.CounterVec
}

// MustNewMetrics builds the collectors and registers them on reg. It panics
// on registration conflicts, so call it once per registry.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Utterances: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vassistant",
			Subsystem: "dialogue",
			Name:      "utterances_total",
			Help:      "Handled utterances by result kind.",
		}, []string{"kind"}),
		ParseErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vassistant",
			Subsystem: "dialogue",
			Name:      "parse_errors_total",
			Help:      "Utterances rejected by the command grammar.",
		}),
		Confirmations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vassistant",
			Subsystem: "dialogue",
			Name:      "confirmations_total",
			Help:      "Confirmation replies by outcome.",
		}, []string{"accepted"}),
		Dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vassistant",
			Subsystem: "dialogue",
			Name:      "dispatches_total",
			Help:      "Task operations dispatched to storage.",
		}, []string{"action"}),
	}
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns process-wide metrics registered on the default Prometheus
// registry. The first call performs the registration.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// NewIsolated returns metrics registered on a private registry. Tests use
// this to avoid cross-test registration conflicts.
func NewIsolated() *Metrics {
	return MustNewMetrics(prometheus.NewRegistry())
}
