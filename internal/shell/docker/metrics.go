package docker

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

const metricsNamespace = "stackctl"

// Operation label values.
const (
	OpList    = "list"
	OpInspect = "inspect"
)

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics counts calls made against the container runtime.
// A nil *Metrics records nothing.
type Metrics struct {
	// RuntimeCalls counts runtime calls by op (list, inspect) and
	// outcome (success, not_found, error).
	RuntimeCalls *prometheus.CounterVec
}

// NewMetrics registers the runtime metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RuntimeCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "runtime_calls_total",
				Help:      "Total number of container runtime calls by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
	}
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	m.RuntimeCalls.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrContainerNotFound):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}
