package pipeline

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeMetrics counts the terminal outcome of every processed event, per
// handler: dispatched, ignored, unsupported, parse_error, miss, updated,
// delivery_failed, update_failed.
type OutcomeMetrics struct {
	mu sync.Mutex

	outcomesTotal *prometheus.CounterVec

	registerer prometheus.Registerer
	registered bool
}

// NewOutcomeMetrics creates an outcome metrics collector. A nil registerer
// uses the Prometheus default.
func NewOutcomeMetrics(registerer prometheus.Registerer) *OutcomeMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OutcomeMetrics{
		registerer: registerer,
		outcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "voltron",
				Subsystem: "pipeline",
				Name:      "event_outcomes_total",
				Help:      "Total number of processed events by terminal outcome",
			},
			[]string{"handler", "outcome"},
		),
	}
}

// Register registers the Prometheus collectors. Safe to call multiple times.
func (m *OutcomeMetrics) Register() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	if err := m.registerer.Register(m.outcomesTotal); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			return err
		}
	}

	m.registered = true
	return nil
}

// Observe records a single terminal outcome for the named handler.
func (m *OutcomeMetrics) Observe(handler, outcome string) {
	if m == nil {
		return
	}
	m.outcomesTotal.WithLabelValues(handler, outcome).Inc()
}
