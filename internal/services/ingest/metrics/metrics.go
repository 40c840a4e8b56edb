// Package metrics records run metrics in a private prometheus registry and
// writes them as a node exporter textfile at the end of a run
package metrics

import (
	"time"

	perr "hamfinder/internal/platform/errors"
	"hamfinder/internal/services/ingest/domain"

	"github.com/prometheus/client_golang/prometheus"
)

const ns = "hamfinder"

// Metrics holds the collectors for one process
type Metrics struct {
	reg *prometheus.Registry

	sources     *prometheus.CounterVec
	records     *prometheus.CounterVec
	stage       *prometheus.HistogramVec
	failures    *prometheus.CounterVec
	matches     prometheus.Gauge
	duration    prometheus.Gauge
	lastSuccess prometheus.Gauge
}

// New builds a Metrics on a fresh registry
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		sources: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "sources_total",
			Help: "Sources processed by classification verdict.",
		}, []string{"verdict"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "records_total",
			Help: "Individual licence records by pipeline stage.",
		}, []string{"stage"}),
		stage: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: "stage_duration_seconds",
			Help:    "Time spent per pipeline stage.",
			Buckets: []float64{.01, .05, .25, 1, 5, 15, 60, 300},
		}, []string{"stage"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "run_failures_total",
			Help: "Failed runs by error kind.",
		}, []string{"kind"}),
		matches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Name: "run_matches",
			Help: "Eligible records found by the last run.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Name: "run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Name: "last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}),
	}
	m.reg.MustRegister(m.sources, m.records, m.stage, m.failures, m.matches, m.duration, m.lastSuccess)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Stage records how long a named stage took
func (m *Metrics) Stage(name string, d time.Duration) {
	m.stage.WithLabelValues(name).Observe(d.Seconds())
}

// Source records the outcome of one source
func (m *Metrics) Source(o domain.SourceOutcome) {
	m.sources.WithLabelValues(o.Verdict.String()).Inc()
	if o.Verdict == domain.VerdictNew {
		m.records.WithLabelValues("extracted").Add(float64(o.Extracted))
		m.records.WithLabelValues("matched").Add(float64(o.Matched))
	}
}

// Finish records the run result; err nil means success at now
func (m *Metrics) Finish(sum domain.Summary, elapsed time.Duration, now time.Time, err error) {
	m.duration.Set(elapsed.Seconds())
	if err != nil {
		m.failures.WithLabelValues(perr.CodeOf(err).String()).Inc()
		return
	}
	m.matches.Set(float64(sum.Total))
	m.lastSuccess.Set(float64(now.Unix()))
}

// WriteTextfile writes the registry to path atomically
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return perr.Wrapf(err, perr.ErrorCodePersistence, "write metrics textfile %s", path)
	}
	return nil
}
