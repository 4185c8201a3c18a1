// Package metrics registers Prometheus counters for the capture and
// placement pipeline and serves them over HTTP.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline's Prometheus counters.
type Metrics struct {
	registry            *prometheus.Registry
	segmentsFinalized   prometheus.Counter
	segmentsPlaced      prometheus.Counter
	duplicatesDiscarded prometheus.Counter
	conflictsResolved   prometheus.Counter
	unmatchedRouted     prometheus.Counter
	placementFailures   prometheus.Counter
	notifyFailures      prometheus.Counter
}

// New creates and registers the pipeline metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	segmentsFinalized := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aircheck_segments_finalized_total",
		Help: "Total number of segments renamed from provisional to final form",
	})
	segmentsPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aircheck_segments_placed_total",
		Help: "Total number of segments moved into the dated archive tree",
	})
	duplicatesDiscarded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aircheck_duplicates_discarded_total",
		Help: "Total number of content-identical arrivals discarded",
	})
	conflictsResolved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aircheck_conflicts_resolved_total",
		Help: "Total number of placements that required a conflict ordinal",
	})
	unmatchedRouted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aircheck_unmatched_routed_total",
		Help: "Total number of files routed to the unmatched directory",
	})
	placementFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aircheck_placement_failures_total",
		Help: "Total number of placements that aborted or failed to move",
	})
	notifyFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aircheck_notify_failures_total",
		Help: "Total number of notification publishes that failed after retry",
	})

	registry.MustRegister(
		segmentsFinalized,
		segmentsPlaced,
		duplicatesDiscarded,
		conflictsResolved,
		unmatchedRouted,
		placementFailures,
		notifyFailures,
	)

	return &Metrics{
		registry:            registry,
		segmentsFinalized:   segmentsFinalized,
		segmentsPlaced:      segmentsPlaced,
		duplicatesDiscarded: duplicatesDiscarded,
		conflictsResolved:   conflictsResolved,
		unmatchedRouted:     unmatchedRouted,
		placementFailures:   placementFailures,
		notifyFailures:      notifyFailures,
	}
}

// All Inc helpers tolerate a nil receiver so pipeline code can run without
// metrics wired, e.g. in tests and one-shot CLI placements.

func (m *Metrics) IncSegmentsFinalized() {
	if m != nil {
		m.segmentsFinalized.Inc()
	}
}

func (m *Metrics) IncSegmentsPlaced() {
	if m != nil {
		m.segmentsPlaced.Inc()
	}
}

func (m *Metrics) IncDuplicatesDiscarded() {
	if m != nil {
		m.duplicatesDiscarded.Inc()
	}
}

func (m *Metrics) IncConflictsResolved() {
	if m != nil {
		m.conflictsResolved.Inc()
	}
}

func (m *Metrics) IncUnmatchedRouted() {
	if m != nil {
		m.unmatchedRouted.Inc()
	}
}

func (m *Metrics) IncPlacementFailures() {
	if m != nil {
		m.placementFailures.Inc()
	}
}

func (m *Metrics) IncNotifyFailures() {
	if m != nil {
		m.notifyFailures.Inc()
	}
}

// Handler returns an http.Handler serving the registry in Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
