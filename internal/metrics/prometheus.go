package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Collector for Prometheus.
type PrometheusCollector struct {
	transitions *prometheus.CounterVec

	backendCalls   *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
	circuitOpens   *prometheus.CounterVec
	circuitState   *prometheus.GaugeVec

	resolutions *prometheus.CounterVec
}

// NewPrometheusCollector creates the metric vectors under the given namespace.
// Call Register before use.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	return &PrometheusCollector{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "authorization_transitions_total",
				Help:      "Total number of authorization state transitions",
			},
			[]string{"from", "to"},
		),
		backendCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_calls_total",
				Help:      "Total number of backend calls per operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		backendLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_call_duration_seconds",
				Help:      "Backend call latency",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
			},
			[]string{"operation"},
		),
		circuitOpens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_opens_total",
				Help:      "Total number of circuit breaker opens",
			},
			[]string{"name"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_state",
				Help:      "Current circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"name"},
		),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transaction_resolutions_total",
				Help:      "Total number of transaction lookups by the identifier that resolved them",
			},
			[]string{"outcome"},
		),
	}
}

// Register registers all metrics with the given registerer.
func (pc *PrometheusCollector) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		pc.transitions,
		pc.backendCalls,
		pc.backendLatency,
		pc.circuitOpens,
		pc.circuitState,
		pc.resolutions,
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}

	return nil
}

func (pc *PrometheusCollector) RecordTransition(from, to string) {
	pc.transitions.WithLabelValues(from, to).Inc()
}

func (pc *PrometheusCollector) RecordBackendCall(operation string, outcome Outcome, duration time.Duration) {
	pc.backendCalls.WithLabelValues(operation, string(outcome)).Inc()
	pc.backendLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

func (pc *PrometheusCollector) RecordCircuitState(name string, state CircuitState) {
	pc.circuitState.WithLabelValues(name).Set(float64(state))
	if state == CircuitOpen {
		pc.circuitOpens.WithLabelValues(name).Inc()
	}
}

func (pc *PrometheusCollector) RecordResolution(outcome Resolution) {
	pc.resolutions.WithLabelValues(string(outcome)).Inc()
}
