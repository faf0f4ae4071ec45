// Package testutil provides testing utilities for the feed client and loader.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/feedscroll/pkg/feed"
)

// PageBehavior overrides the response of a single page.
type PageBehavior struct {
	StatusCode int
	Body       string
	Delay      time.Duration
	// Gate blocks the response until it is closed.
	Gate <-chan struct{}
}

// MockProvider is a configurable mock data provider serving /api/posts.
type MockProvider struct {
	server    *httptest.Server
	mu        sync.RWMutex
	pages     int
	perPage   int
	behaviors map[int]PageBehavior
	handlers  map[string]http.HandlerFunc
	maxAge    int

	requestCount     int
	conditionalCount int
	pageRequests     map[int]int
	lastHeader       http.Header
}

// NewMockProvider creates a provider with the given number of pages and items per page.
func NewMockProvider(pages, perPage int) *MockProvider {
	mock := &MockProvider{
		pages:        pages,
		perPage:      perPage,
		behaviors:    make(map[int]PageBehavior),
		handlers:     make(map[string]http.HandlerFunc),
		pageRequests: make(map[int]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.lastHeader = r.Header.Clone()
		if r.Header.Get("If-None-Match") != "" {
			mock.conditionalCount++
		}
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		if r.URL.Path == "/api/posts" {
			mock.postsHandler(w, r)
			return
		}
		http.NotFound(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockProvider) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockProvider) Close() {
	m.server.Close()
}

// SetPage configures the behavior of one page.
func (m *MockProvider) SetPage(page int, behavior PageBehavior) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.behaviors[page] = behavior
}

// SetHandler sets a custom handler for a specific path.
func (m *MockProvider) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// EnableETags makes the provider send ETag and Cache-Control max-age headers
// and answer matching If-None-Match requests with 304.
func (m *MockProvider) EnableETags(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxAge = int(maxAge / time.Second)
	if m.maxAge == 0 {
		m.maxAge = -1
	}
}

// RequestCount returns the number of requests made to the server.
func (m *MockProvider) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// ConditionalCount returns the number of requests carrying If-None-Match.
func (m *MockProvider) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditionalCount
}

// PageRequests returns how often a page was requested.
func (m *MockProvider) PageRequests(page int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pageRequests[page]
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockProvider) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

// Reset clears all tracking counters.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.conditionalCount = 0
	m.pageRequests = make(map[int]int)
	m.lastHeader = nil
}

// PageItems returns the items the mock serves for a page.
func PageItems(page, perPage int) []feed.Item {
	items := make([]feed.Item, perPage)
	for i := range items {
		items[i] = feed.Item{
			ID:          fmt.Sprintf("p%d-i%d", page, i),
			Title:       fmt.Sprintf("Post %d.%d", page, i),
			Description: "mock post",
			ImageURL:    fmt.Sprintf("https://example.com/%d/%d.jpg", page, i),
			Date:        "Mon Jan 01 2024",
		}
	}
	return items
}

func (m *MockProvider) postsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 1
	}

	m.mu.Lock()
	m.pageRequests[page]++
	behavior, custom := m.behaviors[page]
	pages, perPage, maxAge := m.pages, m.perPage, m.maxAge
	m.mu.Unlock()

	if behavior.Gate != nil {
		select {
		case <-behavior.Gate:
		case <-r.Context().Done():
			return
		}
	}
	if behavior.Delay > 0 {
		select {
		case <-time.After(behavior.Delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if custom && behavior.StatusCode != 0 && behavior.StatusCode != http.StatusOK {
		w.WriteHeader(behavior.StatusCode)
		w.Write([]byte(behavior.Body))
		return
	}
	if custom && behavior.Body != "" {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(behavior.Body))
		return
	}

	if maxAge != 0 {
		etag := fmt.Sprintf(`"page-%d"`, page)
		w.Header().Set("ETag", etag)
		if maxAge > 0 {
			w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", maxAge))
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	resp := feed.Response{
		Total:   pages * perPage,
		Data:    []feed.Item{},
		HasNext: page+1 >= 1 && page+1 <= pages,
	}
	if page >= 1 && page <= pages {
		resp.Data = PageItems(page, perPage)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// NewServerErrorPage creates a 500 Internal Server Error page behavior.
func NewServerErrorPage() PageBehavior {
	return PageBehavior{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
	}
}

// NewMalformedPage creates a page behavior returning an undecodable body.
func NewMalformedPage() PageBehavior {
	return PageBehavior{
		StatusCode: http.StatusOK,
		Body:       `{"data": [`,
	}
}
