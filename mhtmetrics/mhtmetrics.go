// Package mhtmetrics exposes Prometheus instrumentation for the MHT
// engine: forest size, pruning activity and reseed counts, so a driver can
// wire the returned collectors into its own registry.
package mhtmetrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the gauges and counters that mht.Engine updates once per
// processed frame when it is constructed with a Metrics.
type Metrics struct {
	ForestSize       prometheus.Gauge
	SolutionSize     prometheus.Gauge
	FramesProcessed  prometheus.Counter
	BranchesPruned   prometheus.Counter
	ReseedsRequested prometheus.Counter
	InputShapeErrors prometheus.Counter
}

// New constructs a fresh Metrics bundle; the caller registers whichever
// collectors it wants to expose.
func New() *Metrics {
	return &Metrics{
		ForestSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mht",
			Name:      "forest_size",
			Help:      "Number of live hypotheses in the forest after the last pruning pass.",
		}),
		SolutionSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mht",
			Name:      "solution_size",
			Help:      "Number of hypotheses selected by the last MWIS solve.",
		}),
		FramesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mht",
			Name:      "frames_processed_total",
			Help:      "Number of frames processed by Engine.Init and Engine.Step.",
		}),
		BranchesPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mht",
			Name:      "branches_pruned_total",
			Help:      "Number of hypotheses removed by N-scan pruning.",
		}),
		ReseedsRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mht",
			Name:      "reseeds_requested_total",
			Help:      "Number of auxiliary-tracker reseed requests emitted.",
		}),
		InputShapeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mht",
			Name:      "input_shape_errors_total",
			Help:      "Number of recoverable per-frame input validation errors.",
		}),
	}
}

// Collectors returns every collector in the bundle, for bulk registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ForestSize, m.SolutionSize, m.FramesProcessed,
		m.BranchesPruned, m.ReseedsRequested, m.InputShapeErrors,
	}
}
