// Package cache provides a Redis-backed HTTP response cache for feed pages.
//
// Page responses are stored under a deterministic key built from the endpoint
// path and query parameters. Each entry keeps the provider's ETag and Expires
// values so that:
//
//   - fresh entries are served without a network round trip
//   - stale entries are revalidated with If-None-Match / If-Modified-Since
//   - a 304 Not Modified response extends the entry instead of re-downloading it
//
// Stale entries stay in Redis for RevalidateWindow after they expire so they
// can still be revalidated.
//
// # Basic Usage
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.KeyForURL(req.URL)
//	entry, err := manager.Get(ctx, key)
//	switch {
//	case errors.Is(err, cache.ErrCacheMiss):
//		// fetch from provider
//	case !entry.IsExpired():
//		return cache.EntryToResponse(entry, req), nil
//	default:
//		cache.AddConditionalHeaders(req, entry)
//	}
//
// # Metrics
//
//   - feed_cache_hits_total{state="fresh|revalidated"}
//   - feed_cache_misses_total
//   - feed_cache_stored_bytes_total
//   - feed_cache_conditional_requests_total
//   - feed_cache_errors_total{operation}
package cache
