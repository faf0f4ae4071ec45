package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every cache key in Redis.
const KeyPrefix = "feed"

// CacheKey identifies a cached provider response.
type CacheKey struct {
	// Endpoint is the request path (e.g., "/api/posts")
	Endpoint string

	// QueryParams are the query parameters (e.g., {"page": "3"})
	QueryParams url.Values
}

// KeyForURL builds the cache key of a request URL.
func KeyForURL(u *url.URL) CacheKey {
	return CacheKey{
		Endpoint:    u.Path,
		QueryParams: u.Query(),
	}
}

// String generates a deterministic cache key string.
// Format: feed:endpoint:query1=val1:query2=val2
//
// Example:
//
//	feed:api/posts:page=3
func (k CacheKey) String() string {
	parts := []string{KeyPrefix}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Query params sorted for determinism; every value is kept.
	if len(k.QueryParams) > 0 {
		keys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			for _, v := range k.QueryParams[key] {
				parts = append(parts, fmt.Sprintf("%s=%s", key, v))
			}
		}
	}

	return strings.Join(parts, ":")
}
