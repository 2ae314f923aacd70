package internal

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// TraceMetrics holds the per-function gauges of one dataset in a private registry.
type TraceMetrics struct {
	Registry       *prometheus.Registry
	functionCalls  *prometheus.GaugeVec
	functionTotal  *prometheus.GaugeVec
	functionMin    *prometheus.GaugeVec
	functionMax    *prometheus.GaugeVec
	functionMean   *prometheus.GaugeVec
	functionStdDev *prometheus.GaugeVec
	stateSnapshots prometheus.Gauge
	distinctStates prometheus.Gauge
	diagnostics    prometheus.Gauge
}

func newFunctionGauge(name, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "soltrace",
			Subsystem: "function",
			Name:      name,
			Help:      help,
		},
		[]string{"function"},
	)
}

func newTraceGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "soltrace",
		Subsystem: "trace",
		Name:      name,
		Help:      help,
	})
}

func NewTraceMetrics() (*TraceMetrics, error) {
	m := &TraceMetrics{
		Registry:       prometheus.NewRegistry(),
		functionCalls:  newFunctionGauge("calls", "Number of calls of a function in the trace."),
		functionTotal:  newFunctionGauge("elapsed_total", "Total elapsed time of all calls of a function."),
		functionMin:    newFunctionGauge("elapsed_min", "Shortest elapsed time of a call."),
		functionMax:    newFunctionGauge("elapsed_max", "Longest elapsed time of a call."),
		functionMean:   newFunctionGauge("elapsed_mean", "Mean elapsed time per call."),
		functionStdDev: newFunctionGauge("elapsed_stddev", "Population standard deviation of the elapsed time per call."),
		stateSnapshots: newTraceGauge("state_snapshots", "Number of state snapshots in the trace."),
		distinctStates: newTraceGauge("distinct_states", "Estimated number of distinct state snapshots."),
		diagnostics:    newTraceGauge("diagnostic_lines", "Number of diagnostic lines in the trace."),
	}

	collectors := []prometheus.Collector{
		m.functionCalls, m.functionTotal, m.functionMin, m.functionMax, m.functionMean, m.functionStdDev,
		m.stateSnapshots, m.distinctStates, m.diagnostics,
	}
	for _, c := range collectors {
		if err := m.Registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

// Observe sets every gauge from a finalised dataset.
func (m *TraceMetrics) Observe(stats TraceDataset) {
	for _, fn := range stats.Ordered() {
		m.functionCalls.WithLabelValues(fn.Name).Set(float64(fn.Stats.Calls))
		m.functionTotal.WithLabelValues(fn.Name).Set(fn.Stats.Total.InexactFloat64())
		m.functionMin.WithLabelValues(fn.Name).Set(fn.Stats.Min.InexactFloat64())
		m.functionMax.WithLabelValues(fn.Name).Set(fn.Stats.Max.InexactFloat64())
		m.functionMean.WithLabelValues(fn.Name).Set(fn.Stats.Mean.InexactFloat64())
		m.functionStdDev.WithLabelValues(fn.Name).Set(fn.Stats.StdDev.InexactFloat64())
	}
	m.stateSnapshots.Set(float64(len(stats.States)))
	m.distinctStates.Set(float64(stats.StatesCount))
	m.diagnostics.Set(float64(len(stats.Diagnostics)))
}

// WriteMetricsFile writes the dataset in the Prometheus text format, e.g. for the node exporter textfile collector.
func WriteMetricsFile(stats TraceDataset, filename string) error {
	m, err := NewTraceMetrics()
	if err != nil {
		return err
	}
	m.Observe(stats)

	if err := prometheus.WriteToTextfile(filename, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", filename, err)
	}
	return nil
}
