package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SyncMetrics holds the Prometheus collectors for the catalog sync engine.
type SyncMetrics struct {
	RunsTotal      *prometheus.CounterVec
	ItemsTotal     *prometheus.CounterVec
	PagesFetched   prometheus.Counter
	RateLimitHits  prometheus.Counter
	RunDuration    prometheus.Histogram
	MirrorWrites   prometheus.Counter
	MirrorFailures prometheus.Counter
}

// New initializes and registers the collectors on the default registry.
// The mirror counters exist to make drift between the canonical products
// table and the legacy pern_products projection observable.
func New() *SyncMetrics {
	return &SyncMetrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog_sync",
			Name:      "runs_total",
			Help:      "Total sync runs by terminal status.",
		}, []string{"entity", "status"}),
		ItemsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog_sync",
			Name:      "items_total",
			Help:      "Total synced items by result (created, updated, error).",
		}, []string{"entity", "result"}),
		PagesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog_sync",
			Name:      "pages_fetched_total",
			Help:      "Total upstream pages fetched.",
		}),
		RateLimitHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog_sync",
			Name:      "rate_limit_hits_total",
			Help:      "Total HTTP 429 responses received from upstream stores.",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "catalog_sync",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of sync runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		MirrorWrites: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog_sync",
			Name:      "legacy_mirror_writes_total",
			Help:      "Successful writes to the legacy pern_products mirror.",
		}),
		MirrorFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog_sync",
			Name:      "legacy_mirror_failures_total",
			Help:      "Failed legacy mirror writes; each one is potential drift from the products table.",
		}),
	}
}
