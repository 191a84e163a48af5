// Package metrics holds the Prometheus instruments of the sync pipeline.
// Collectors are registered with the global registry, so serving
// promhttp.Handler() is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	PassSucceeded = "success"
	PassFailed    = "failure"
	PassSkipped   = "skipped"
)

var (
	SyncPassesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sermon_sync_passes_total",
			Help: "Sync passes by result (success, failure, skipped).",
		}, []string{"result"})

	SyncItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sermon_sync_items_total",
			Help: "Reconciled videos by outcome (created, updated).",
		}, []string{"outcome"})

	DetailMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sermon_sync_detail_misses_total",
			Help: "Video detail lookups that yielded no duration.",
		})

	PublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sermon_sync_publish_errors_total",
			Help: "Sermon events that could not be published.",
		})

	SyncPassDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sermon_sync_pass_duration_seconds",
			Help:    "Wall time of completed sync passes.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		})
)

func init() {
	prometheus.MustRegister(
		SyncPassesTotal,
		SyncItemsTotal,
		DetailMissesTotal,
		PublishErrorsTotal,
		SyncPassDuration,
	)
}
