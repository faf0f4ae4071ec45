// Package provider implements the mock feed data provider.
//
// The provider serves a fixed, seeded dataset of posts at GET /api/posts?page=n
// as {total, data, hasNext}. Responses carry an ETag and expiry headers, and a
// matching If-None-Match yields 304 Not Modified. An artificial latency can be
// configured to make loading states observable.
package provider

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/feedscroll/pkg/logging"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PostsPath is the route of the paged posts endpoint.
const PostsPath = "/api/posts"

// Config holds the provider settings.
type Config struct {
	// Pages is the number of non-empty pages
	Pages int

	// PerPage is the number of posts per page
	PerPage int

	// Latency delays every posts response
	Latency time.Duration

	// Seed selects the generated dataset
	Seed int64

	// CacheTTL is advertised via Cache-Control and Expires (0 = no-cache)
	CacheTTL time.Duration

	// Mode is the gin mode: debug, release or test
	Mode string
}

// DefaultConfig returns the provider defaults: 10 pages of 10 posts, 500ms latency.
func DefaultConfig() Config {
	return Config{
		Pages:    10,
		PerPage:  10,
		Latency:  500 * time.Millisecond,
		Seed:     1,
		CacheTTL: 30 * time.Second,
		Mode:     "release",
	}
}

// Provider serves the generated dataset over HTTP.
type Provider struct {
	config  Config
	dataset *Dataset
	logger  zerolog.Logger
}

// New creates a provider and generates its dataset.
func New(cfg Config) (*Provider, error) {
	if cfg.Pages < 0 {
		return nil, fmt.Errorf("pages must be >= 0 (got %d)", cfg.Pages)
	}
	if cfg.PerPage < 1 {
		return nil, fmt.Errorf("per_page must be >= 1 (got %d)", cfg.PerPage)
	}
	if cfg.Latency < 0 {
		return nil, fmt.Errorf("latency must be >= 0 (got %s)", cfg.Latency)
	}

	return &Provider{
		config:  cfg,
		dataset: NewDataset(cfg.Pages, cfg.PerPage, cfg.Seed),
		logger:  logging.NewLogger("feed-provider"),
	}, nil
}

// Dataset returns the served dataset.
func (p *Provider) Dataset() *Dataset {
	return p.dataset
}

// Router builds the gin engine with all provider routes.
func (p *Provider) Router() *gin.Engine {
	switch p.config.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(p.logger))

	r.GET("/health", p.Health)
	r.GET(PostsPath, p.Posts)

	return r
}

// Health handles GET /health.
func (p *Provider) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"pages":  p.dataset.Pages(),
		"total":  p.dataset.Total(),
	})
}

// Posts handles GET /api/posts?page=n.
// A missing page means page 1; a malformed page yields an empty last page.
func (p *Provider) Posts(c *gin.Context) {
	start := time.Now()

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	malformed := err != nil

	if p.config.Latency > 0 {
		select {
		case <-time.After(p.config.Latency):
		case <-c.Request.Context().Done():
			providerRequestsTotal.WithLabelValues("cancelled").Inc()
			return
		}
	}

	if malformed {
		p.logger.Debug().Str("page", c.Query("page")).Msg("Malformed page parameter")
		c.JSON(http.StatusOK, gin.H{"total": p.dataset.Total(), "data": []any{}, "hasNext": false})
		p.observe(http.StatusOK, start)
		return
	}

	etag := p.dataset.ETag(page)
	c.Header("ETag", etag)
	if p.config.CacheTTL > 0 {
		c.Header("Cache-Control", fmt.Sprintf("max-age=%d", int(p.config.CacheTTL.Seconds())))
		c.Header("Expires", time.Now().Add(p.config.CacheTTL).UTC().Format(http.TimeFormat))
	} else {
		c.Header("Cache-Control", "no-cache")
	}

	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		p.observe(http.StatusNotModified, start)
		return
	}

	c.JSON(http.StatusOK, p.dataset.Response(page))
	p.observe(http.StatusOK, start)
}

func (p *Provider) observe(status int, start time.Time) {
	providerRequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	providerRequestDuration.Observe(time.Since(start).Seconds())
}
