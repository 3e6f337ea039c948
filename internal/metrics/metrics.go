// Package metrics exposes report-assembly counters and latencies to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"datalens/domain/report"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datalens"

// Metrics groups the collectors registered for one process. A nil *Metrics
// records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	// reportsTotal counts finished assemblies.
	// Labels: state (done, failed), partial (true, false)
	reportsTotal *prometheus.CounterVec

	// reportDuration measures wall time from request to terminal state.
	// Labels: state
	reportDuration *prometheus.HistogramVec

	// sectionFailures counts sections omitted because their computation failed.
	// Labels: section
	sectionFailures *prometheus.CounterVec

	// sectionSkips counts enabled sections omitted without failing.
	// Labels: section, reason (unavailable, cancelled)
	sectionSkips *prometheus.CounterVec

	// transitions counts assembler state changes.
	// Labels: from, to
	transitions *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		reportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "assemblies_total",
			Help:      "Report assemblies by terminal state",
		}, []string{"state", "partial"}),
		reportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "duration_seconds",
			Help:      "Report assembly latency in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"state"}),
		sectionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "section_failures_total",
			Help:      "Sections omitted because computation failed",
		}, []string{"section"}),
		sectionSkips: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "section_skips_total",
			Help:      "Enabled sections omitted without failure",
		}, []string{"section", "reason"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assembler",
			Name:      "transitions_total",
			Help:      "Assembler state transitions",
		}, []string{"from", "to"}),
	}
}

// RecordReport records a finished assembly. res may be nil when assembly
// failed before a result existed.
func (m *Metrics) RecordReport(res *report.Result, elapsed time.Duration) {
	if m == nil {
		return
	}
	state, partial := report.StateFailed, false
	if res != nil {
		state, partial = res.State, res.Partial
		for _, f := range res.Failures {
			m.sectionFailures.WithLabelValues(string(f.Section)).Inc()
		}
		for _, s := range res.Skipped {
			m.sectionSkips.WithLabelValues(string(s.Section), string(s.Reason)).Inc()
		}
	}
	m.reportsTotal.WithLabelValues(string(state), strconv.FormatBool(partial)).Inc()
	m.reportDuration.WithLabelValues(string(state)).Observe(elapsed.Seconds())
}

// RecordTransition matches the assembler observer signature minus the handle.
func (m *Metrics) RecordTransition(from, to report.State) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
