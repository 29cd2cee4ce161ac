// Package metrics contains the prometheus infrastructure.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for strategy list builds.
const (
	BuildStatusSuccess = "success"
	BuildStatusFailure = "failure"
)

// Registers the collector with Prometheus. If an identical collector is already
// registered, returns the existing collector, otherwise returns the provided collector.
// Panics if the collector cannot be registered.
func registerOnce(collector prometheus.Collector) prometheus.Collector {
	if err := prometheus.Register(collector); err != nil {
		are := &prometheus.AlreadyRegisteredError{}
		if errors.As(err, are) {
			return are.ExistingCollector
		}
		panic(err)
	}
	return collector
}

// RegistryMetrics instruments strategy list construction.
type RegistryMetrics struct {
	// Counts of strategy list builds, partitioned by outcome.
	builds *prometheus.CounterVec

	// Number of strategies in the active list, partitioned by chain.
	strategies *prometheus.GaugeVec
}

// NewDefaultRegistryMetrics creates Prometheus metric instrumentation for
// strategy list builds. Metric names are prefixed with pkg.
func NewDefaultRegistryMetrics(pkg string) RegistryMetrics {
	metrics := RegistryMetrics{
		builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%s_builds", pkg),
				Help: "How many strategy list builds were attempted, partitioned by status.",
			},
			[]string{"status"}, // Labels.
		),
		strategies: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: fmt.Sprintf("%s_strategies", pkg),
				Help: "How many strategies the active list holds, partitioned by chain.",
			},
			[]string{"chain"}, // Labels.
		),
	}
	metrics.builds = registerOnce(metrics.builds).(*prometheus.CounterVec)
	metrics.strategies = registerOnce(metrics.strategies).(*prometheus.GaugeVec)
	return metrics
}

// Builds returns the counter for builds with the given status.
func (m *RegistryMetrics) Builds(status string) prometheus.Counter {
	return m.builds.WithLabelValues(status)
}

// SetStrategies replaces the per-chain strategy counts.
func (m *RegistryMetrics) SetStrategies(counts map[string]int) {
	m.strategies.Reset()
	for chain, n := range counts {
		m.strategies.WithLabelValues(chain).Set(float64(n))
	}
}
