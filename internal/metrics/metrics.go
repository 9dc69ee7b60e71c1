package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreSubscriptions is the number of live path subscriptions.
	StoreSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skillswap_store_subscriptions",
		Help: "Number of active store path subscriptions",
	})

	// SearchDecodeSkips counts records skipped by search because they could not be decoded.
	SearchDecodeSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_search_decode_skips_total",
		Help: "Total number of records skipped during search because decoding failed",
	}, []string{"kind"})

	// SearchPasses counts search evaluations by mode: "all" when no
	// constraint was given, "filtered" otherwise.
	SearchPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_search_passes_total",
		Help: "Total number of search evaluations by kind and mode",
	}, []string{"kind", "mode"})

	// ResolverDuration records how long a fan-out resolution takes to join.
	ResolverDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skillswap_resolver_duration_seconds",
		Help:    "Fan-out resolution latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	ResolverMissing = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skillswap_resolver_missing_total",
		Help: "Total number of ids that resolved to no entity",
	})

	// RelationMirrorFailures counts remote mirror writes that failed after the local write succeeded.
	RelationMirrorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_relation_mirror_failures_total",
		Help: "Total number of failed remote relationship mirror writes",
	}, []string{"kind"})

	MirrorDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skillswap_mirror_dropped_total",
		Help: "Total number of mirror tasks dropped because the queue was full",
	})

	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skillswap_websocket_connections",
		Help: "Number of active WebSocket feed connections",
	})
)

// ObserveResolve records a resolver run that started at start.
func ObserveResolve(outcome string, start time.Time) {
	ResolverDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
