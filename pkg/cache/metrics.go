package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by state (fresh, revalidated)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_hits_total",
			Help: "Total number of page cache hits",
		},
		[]string{"state"},
	)

	// CacheMisses tracks cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_cache_misses_total",
			Help: "Total number of page cache misses",
		},
	)

	// StoredBytes tracks bytes written to the cache
	StoredBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_cache_stored_bytes_total",
			Help: "Total bytes written to the page cache",
		},
	)

	// ConditionalRequests tracks revalidation requests sent with validators
	ConditionalRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_cache_conditional_requests_total",
			Help: "Total number of conditional page requests",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
