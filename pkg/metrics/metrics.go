// Package metrics exposes the Prometheus collectors for foundry's engine
// operations. There is no daemon and no cluster here, so unlike the
// orchestrator this is built from, these collectors track a single
// process's apply/verify/registry activity; Handler lets an embedder that
// does run a long-lived process serve them over HTTP.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ApplyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foundry_apply_duration_seconds",
			Help:    "Time taken to run an apply sequence in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ApplyOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foundry_apply_outcomes_total",
			Help: "Total number of apply sequences by outcome",
		},
		[]string{"outcome"},
	)

	ApplyNodesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foundry_apply_nodes_total",
			Help: "Total number of node operations performed by an apply sequence",
		},
		[]string{"kind", "action"},
	)

	VerifyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foundry_verify_duration_seconds",
			Help:    "Time taken to run a verify pass in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	VerifyCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foundry_verify_cycles_total",
			Help: "Total number of verify passes completed",
		},
	)

	VerifyInvalidTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foundry_verify_invalid_total",
			Help: "Total number of nodes found invalid during verification by kind",
		},
		[]string{"kind"},
	)

	RegistryCurrentVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "foundry_registry_current_version",
			Help: "The install version currently marked as current",
		},
	)

	RegistryAdvancesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foundry_registry_advances_total",
			Help: "Total number of times the current install version advanced",
		},
	)
)

func init() {
	prometheus.MustRegister(ApplyDuration)
	prometheus.MustRegister(ApplyOutcomesTotal)
	prometheus.MustRegister(ApplyNodesTotal)
	prometheus.MustRegister(VerifyDuration)
	prometheus.MustRegister(VerifyCyclesTotal)
	prometheus.MustRegister(VerifyInvalidTotal)
	prometheus.MustRegister(RegistryCurrentVersion)
	prometheus.MustRegister(RegistryAdvancesTotal)
}

// Handler returns the Prometheus HTTP handler for embedders that run one.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

func NewTimer() *Timer { return &Timer{start: time.Now()} }

func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
