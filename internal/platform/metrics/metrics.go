// Package metrics exposes run statistics as prometheus collectors. The
// collector set observes controller events and can be written to a
// node_exporter textfile when the process exits.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"urlsift/internal/core/ports"
	"urlsift/internal/platform/errors"
)

const namespace = "urlsift"

// Metrics implements ports.Notifier.
type Metrics struct {
	registry *prometheus.Registry
	textfile string

	runsTotal     *prometheus.CounterVec
	urlsTotal     *prometheus.CounterVec
	groupsTotal   prometheus.Counter
	overflowTotal prometheus.Counter
	runDuration   *prometheus.HistogramVec
	lastReduction prometheus.Gauge

	mu      sync.Mutex
	started map[string]time.Time
	closed  bool
}

// New builds a collector set on its own registry. When textfile is not
// empty, Close writes the registry there.
func New(textfile string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		textfile: textfile,
		started:  make(map[string]time.Time),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Filter runs by terminal state.",
		}, []string{"state"}),
		urlsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "urls_total",
			Help:      "URLs seen by completed runs, by outcome.",
		}, []string{"outcome"}),
		groupsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_total",
			Help:      "Distinct endpoint signatures across completed runs.",
		}),
		overflowTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overflow_members_total",
			Help:      "Group members counted but outside the ranking window.",
		}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of filter runs in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"state"}),
		lastReduction: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_reduction_ratio",
			Help:      "Percentage of input URLs removed by the last completed run.",
		}),
	}

	m.registry.MustRegister(m.Collectors()...)
	return m
}

// Collectors returns every collector owned by m.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.runsTotal, m.urlsTotal, m.groupsTotal,
		m.overflowTotal, m.runDuration, m.lastReduction,
	}
}

// Gatherer returns the registry backing m.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.DefaultGatherer
	}
	return m.registry
}

// Notify records one controller event.
func (m *Metrics) Notify(_ context.Context, ev ports.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev.Type {
	case ports.EventTypeRunStarted:
		m.started[ev.RunID] = ev.Timestamp

	case ports.EventTypeRunCompleted:
		res, ok := ev.Result()
		if !ok || res == nil {
			return nil
		}
		md := res.Metadata
		m.urlsTotal.WithLabelValues("input").Add(float64(md.InputURLs))
		m.urlsTotal.WithLabelValues("kept").Add(float64(res.Kept()))
		m.urlsTotal.WithLabelValues("extension_filtered").Add(float64(md.ExtensionFiltered))
		m.urlsTotal.WithLabelValues("unparseable").Add(float64(md.Unparseable))
		m.groupsTotal.Add(float64(md.Groups))
		m.overflowTotal.Add(float64(md.OverflowMembers))
		m.lastReduction.Set(res.ReductionRatio())
		m.finish(ev, "completed", md.Duration)

	case ports.EventTypeRunCancelled:
		m.finish(ev, "cancelled", 0)

	case ports.EventTypeRunFailed:
		m.finish(ev, "failed", 0)
	}
	return nil
}

// finish must be called with mu held. A zero d is derived from the
// started event of the same run.
func (m *Metrics) finish(ev ports.Event, state string, d time.Duration) {
	start, seen := m.started[ev.RunID]
	delete(m.started, ev.RunID)

	if d <= 0 && seen {
		d = ev.Timestamp.Sub(start)
	}

	m.runsTotal.WithLabelValues(state).Inc()
	if d > 0 {
		m.runDuration.WithLabelValues(state).Observe(d.Seconds())
	}
}

// WriteTextfile writes the registry in the text exposition format, atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "write metrics to %s", path)
	}
	return nil
}

// Close writes the textfile once, if one was configured.
func (m *Metrics) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	if m.textfile == "" {
		return nil
	}
	return m.WriteTextfile(m.textfile)
}

var _ ports.Notifier = (*Metrics)(nil)
