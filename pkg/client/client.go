// Package client provides the HTTP page fetcher for the feed data provider,
// with optional Redis response caching and error classification.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/feedscroll/pkg/cache"
	"github.com/Sternrassler/feedscroll/pkg/feed"
	"github.com/Sternrassler/feedscroll/pkg/pageindex"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for provider requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_requests_total",
		Help: "Total provider requests by status",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_request_duration_seconds",
		Help:    "Provider request duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	fetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_fetch_errors_total",
		Help: "Total page fetch errors by class",
	}, []string{"class"})
)

// DefaultPostsPath is the provider endpoint serving feed pages.
const DefaultPostsPath = "/api/posts"

// maxBodyBytes bounds the size of a decoded page response.
const maxBodyBytes = 10 << 20

// ErrInvalidPage is returned for page numbers below 1.
var ErrInvalidPage = errors.New("page number must be >= 1")

// Client fetches feed pages from the data provider.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	endpoint   *url.URL
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the provider, e.g. "http://localhost:8080"
	BaseURL string

	// PostsPath is the page endpoint path (default: /api/posts)
	PostsPath string

	// User-Agent header sent with every request
	UserAgent string

	// Timeout for a single HTTP request
	Timeout time.Duration

	// Redis enables the response cache when set
	Redis *redis.Client
}

// DefaultConfig returns a configuration without response caching.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:   baseURL,
		PostsPath: DefaultPostsPath,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
	}
}

// New creates a new provider client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}

	if cfg.PostsPath == "" {
		cfg.PostsPath = DefaultPostsPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	endpoint := base.JoinPath(cfg.PostsPath)

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoint: endpoint,
		config:   cfg,
		logger:   log.With().Str("component", "feed-client").Logger(),
	}

	if cfg.Redis != nil {
		c.cache = cache.NewManager(cfg.Redis)
	}

	return c, nil
}

// FetchPage requests one page from the provider and returns the normalized result.
// Failures are returned as *feed.FetchError carrying the attempted page.
// No retries are performed.
func (c *Client) FetchPage(ctx context.Context, page int) (feed.PageResult, error) {
	if page < 1 {
		return feed.PageResult{}, &feed.FetchError{Page: page, Class: feed.ErrorClassClient, Err: ErrInvalidPage}
	}

	u := *c.endpoint
	u.RawQuery = pageindex.Encode(pageindex.Cursor{Page: page}, c.endpoint.RawQuery)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return feed.PageResult{}, &feed.FetchError{Page: page, Class: feed.ErrorClassClient, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.Do(req)
	if err != nil {
		return feed.PageResult{}, c.fetchError(page, nil, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return feed.PageResult{}, c.fetchError(page, resp, errors.New(resp.Status))
	}

	var body feed.Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		fetchErrorsTotal.WithLabelValues(string(feed.ErrorClassDecode)).Inc()
		return feed.PageResult{}, &feed.FetchError{
			Page:       page,
			StatusCode: resp.StatusCode,
			Class:      feed.ErrorClassDecode,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}

	result := body.ToPageResult(page)
	c.logger.Debug().
		Int("page", page).
		Int("items", len(result.Items)).
		Bool("has_next", result.HasNext).
		Msg("Page fetched")

	return result, nil
}

// Do performs an HTTP request, serving fresh cache entries directly and
// revalidating stale ones. Non-2xx responses are returned to the caller.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(startTime).Seconds())
	}()

	var (
		cacheKey    cache.CacheKey
		cachedEntry *cache.Entry
	)
	if c.cache != nil {
		cacheKey = cache.KeyForURL(req.URL)

		entry, err := c.cache.Get(ctx, cacheKey)
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}

		switch {
		case entry != nil && !entry.IsExpired():
			cache.CacheHits.WithLabelValues("fresh").Inc()
			requestsTotal.WithLabelValues("cache").Inc()
			c.logger.Debug().
				Str("endpoint", endpoint).
				Str("query", req.URL.RawQuery).
				Bool("cache_hit", true).
				Msg("Serving page from cache")
			return cache.EntryToResponse(entry, req), nil
		case entry != nil && cache.ShouldMakeConditionalRequest(entry):
			cachedEntry = entry
			cache.AddConditionalHeaders(req, entry)
			cache.ConditionalRequests.Inc()
			c.logger.Debug().
				Str("endpoint", endpoint).
				Str("etag", entry.ETag).
				Msg("Making conditional request")
		}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues("network_error").Inc()
		return nil, err
	}
	requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusNotModified && cachedEntry != nil {
		resp.Body.Close()
		cache.CacheHits.WithLabelValues("revalidated").Inc()

		entry := cachedEntry
		if refreshed, err := c.cache.Refresh(ctx, cacheKey, cache.ExpiresFromHeader(resp.Header)); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to refresh cache entry")
		} else {
			entry = refreshed
		}

		c.logger.Debug().Str("endpoint", endpoint).Msg("304 Not Modified - using cache")
		return cache.EntryToResponse(entry, req), nil
	}

	if c.cache != nil && resp.StatusCode == http.StatusOK {
		entry, err := cache.ResponseToEntry(resp)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		} else {
			c.logger.Debug().
				Str("endpoint", endpoint).
				Dur("ttl", entry.TTL()).
				Msg("Cached response")
		}
	}

	return resp, nil
}

// fetchError builds and records a FetchError for a failed request.
func (c *Client) fetchError(page int, resp *http.Response, err error) error {
	class := c.classifyError(resp, err)
	fetchErrorsTotal.WithLabelValues(string(class)).Inc()

	fe := &feed.FetchError{Page: page, Class: class, Err: err}
	if resp != nil {
		fe.StatusCode = resp.StatusCode
	}

	c.logger.Warn().
		Int("page", page).
		Int("status", fe.StatusCode).
		Str("error_class", string(class)).
		Err(err).
		Msg("Page fetch failed")

	return fe
}

// classifyError categorizes an error for observability and handling.
func (c *Client) classifyError(resp *http.Response, err error) feed.ErrorClass {
	if resp == nil {
		if err != nil {
			return feed.ErrorClassNetwork
		}
		return ""
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return ""
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return feed.ErrorClassClient
	default:
		return feed.ErrorClassServer
	}
}

// Endpoint returns the resolved page endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// String implements fmt.Stringer.
func (c *Client) String() string {
	return "feed client " + strings.TrimSuffix(c.endpoint.String(), "/")
}
