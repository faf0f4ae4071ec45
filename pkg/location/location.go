// Package location models the navigable address that carries the feed cursor.
package location

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Location is the navigable address read at mount and replaced after every
// successful advance. Replace never creates a new history entry.
type Location interface {
	// Query returns the raw query string without the leading "?".
	Query() string

	// Replace swaps the query string in place.
	Replace(query string)
}

// Memory is a Location backed by a parsed URL held in memory.
type Memory struct {
	mu       sync.RWMutex
	u        *url.URL
	replaces int
}

// Parse creates a Memory location from a raw URL or path such as "/feed?page=4".
func Parse(raw string) (*Memory, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse location: %w", err)
	}
	return &Memory{u: u}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(raw string) *Memory {
	m, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return m
}

// Query implements Location.
func (m *Memory) Query() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.u.RawQuery
}

// Replace implements Location.
func (m *Memory) Replace(query string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.u.RawQuery = strings.TrimPrefix(query, "?")
	m.replaces++
}

// String returns the full location.
func (m *Memory) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.u.String()
}

// Replaces returns how many times the query was replaced.
func (m *Memory) Replaces() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.replaces
}
