// Package observability provides Prometheus metrics for the harvest run.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HarvestMetrics contains Prometheus metrics for ingestion operations.
// A nil *HarvestMetrics is valid and records nothing.
type HarvestMetrics struct {
	registry *prometheus.Registry

	pagesFetchedTotal    *prometheus.CounterVec
	fetchErrorsTotal     *prometheus.CounterVec
	reviewsSeenTotal     *prometheus.CounterVec
	reviewsAcceptedTotal *prometheus.CounterVec
	dedupHitsTotal       *prometheus.CounterVec
	rowsAppendedTotal    *prometheus.CounterVec
}

// NewHarvestMetrics creates and registers new harvest metrics on registry.
func NewHarvestMetrics(registry *prometheus.Registry) (*HarvestMetrics, error) {
	m := &HarvestMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *HarvestMetrics) initMetrics() {
	m.pagesFetchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_pages_fetched_total",
			Help: "Total number of review pages fetched from the source",
		},
		[]string{"app"},
	)
	m.fetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_fetch_errors_total",
			Help: "Total number of failed page fetches",
		},
		[]string{"app"},
	)
	m.reviewsSeenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_reviews_seen_total",
			Help: "Total number of raw reviews scanned",
		},
		[]string{"app"},
	)
	m.reviewsAcceptedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_reviews_accepted_total",
			Help: "Total number of reviews that passed all filters",
		},
		[]string{"app"},
	)
	m.dedupHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_dedup_hits_total",
			Help: "Total number of reviews discarded as already ingested",
		},
		[]string{"app"},
	)
	m.rowsAppendedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_rows_appended_total",
			Help: "Total number of rows appended to the store",
		},
		[]string{"app"},
	)
}

// Describe implements prometheus.Collector
func (m *HarvestMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.pagesFetchedTotal.Describe(ch)
	m.fetchErrorsTotal.Describe(ch)
	m.reviewsSeenTotal.Describe(ch)
	m.reviewsAcceptedTotal.Describe(ch)
	m.dedupHitsTotal.Describe(ch)
	m.rowsAppendedTotal.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *HarvestMetrics) Collect(ch chan<- prometheus.Metric) {
	m.pagesFetchedTotal.Collect(ch)
	m.fetchErrorsTotal.Collect(ch)
	m.reviewsSeenTotal.Collect(ch)
	m.reviewsAcceptedTotal.Collect(ch)
	m.dedupHitsTotal.Collect(ch)
	m.rowsAppendedTotal.Collect(ch)
}

// RecordPageFetched increments the fetched pages counter for app
func (m *HarvestMetrics) RecordPageFetched(app string) {
	if m == nil {
		return
	}
	m.pagesFetchedTotal.WithLabelValues(app).Inc()
}

// RecordFetchError increments the fetch error counter for app
func (m *HarvestMetrics) RecordFetchError(app string) {
	if m == nil {
		return
	}
	m.fetchErrorsTotal.WithLabelValues(app).Inc()
}

// RecordReviewsSeen adds n to the scanned reviews counter for app
func (m *HarvestMetrics) RecordReviewsSeen(app string, n int) {
	if m == nil {
		return
	}
	m.reviewsSeenTotal.WithLabelValues(app).Add(float64(n))
}

// RecordReviewAccepted increments the accepted reviews counter for app
func (m *HarvestMetrics) RecordReviewAccepted(app string) {
	if m == nil {
		return
	}
	m.reviewsAcceptedTotal.WithLabelValues(app).Inc()
}

// RecordDedupHit increments the dedup hit counter for app
func (m *HarvestMetrics) RecordDedupHit(app string) {
	if m == nil {
		return
	}
	m.dedupHitsTotal.WithLabelValues(app).Inc()
}

// RecordRowsAppended adds n to the appended rows counter for app
func (m *HarvestMetrics) RecordRowsAppended(app string, n int) {
	if m == nil {
		return
	}
	m.rowsAppendedTotal.WithLabelValues(app).Add(float64(n))
}

// Registry returns the registry the metrics are registered on.
func (m *HarvestMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
