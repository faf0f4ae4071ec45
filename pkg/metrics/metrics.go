// Package metrics exposes the Prometheus registry used by the feed packages.
// Metrics are defined with promauto next to the code that records them
// (client, cache, pagination, visibility, loader, provider); this package
// serves them and documents the catalogue.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all feed metrics are registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer backing Handler.
var Gatherer = prometheus.DefaultGatherer

// Path is where the serve command mounts Handler.
const Path = "/metrics"

// Handler returns the HTTP handler exposing all registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Catalogue
//
// Client (pkg/client):
//   - feed_requests_total{status} (Counter): page requests by HTTP status
//   - feed_request_duration_seconds (Histogram): page request duration
//   - feed_fetch_errors_total{class} (Counter): failed fetches by class (client, server, network, decode)
//
// Cache (pkg/cache):
//   - feed_cache_hits_total{state} (Counter): hits by state (fresh, revalidated)
//   - feed_cache_misses_total (Counter): cache misses
//   - feed_cache_stored_bytes_total (Counter): bytes written to the cache
//   - feed_cache_conditional_requests_total (Counter): revalidations sent with If-None-Match
//   - feed_cache_errors_total{operation} (Counter): cache operation errors
//
// Batch fetching (pkg/pagination):
//   - feed_batch_pages_total{outcome} (Counter): pages fetched in batches by outcome
//   - feed_batch_duration_seconds (Histogram): batch duration
//
// Visibility (pkg/visibility):
//   - feed_visibility_events_total{outcome} (Counter): fired, no_edge, unarmed, in_flight, disconnected
//
// Loader (pkg/loader):
//   - feed_cycles_total{mode,outcome} (Counter): load cycles by mode and resulting status
//   - feed_cycle_duration_seconds{mode} (Histogram): load cycle duration
//   - feed_items_loaded_total (Counter): items appended to the collection
//   - feed_stale_results_total (Counter): results discarded after teardown
//   - feed_cursor_page (Gauge): page of the committed cursor
//
// Provider (pkg/provider):
//   - feed_provider_requests_total{status} (Counter): posts requests served
//   - feed_provider_request_duration_seconds (Histogram): posts request duration
//
// Example queries:
//
//	# Cycle failure rate
//	sum(rate(feed_cycles_total{outcome="failed"}[5m])) / sum(rate(feed_cycles_total[5m]))
//
//	# Cache hit rate
//	sum(rate(feed_cache_hits_total[5m])) /
//	(sum(rate(feed_cache_hits_total[5m])) + sum(rate(feed_cache_misses_total[5m])))
//
//	# P95 catch-up duration
//	histogram_quantile(0.95, rate(feed_cycle_duration_seconds_bucket{mode="catch_up"}[5m]))
