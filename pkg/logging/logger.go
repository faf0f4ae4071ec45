// Package logging configures the zerolog logger shared by all feed components.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn, error or disabled.
	Level string

	// Pretty enables human-readable console output instead of JSON.
	Pretty bool

	// Output receives log lines (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns JSON logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Output: os.Stderr,
	}
}

// Setup configures the global logger and returns it.
// An unknown level falls back to info.
func Setup(cfg Config) zerolog.Logger {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return log.Logger
}

// ParseLevel converts a level name to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// NewLogger returns a logger tagged with the component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Level guidelines:
//
// Debug: per-page fetches, cache hits and revalidations, ignored visibility
// events, results discarded after teardown.
//
// Info: completed load cycles, end of feed, server start and stop.
//
// Warn: failed load cycles, invalid page in the location, cache errors
// (the request falls through to the provider).
//
// Error: configuration errors and server failures.
//
// Context fields:
//   - page: page number of the request or the cycle's target cursor
//   - pages: number of pages in a catch-up batch
//   - mode: catch_up or steady
//   - status: loader status after a cycle
//   - items, total_items: items appended and collection length
//   - duration: request or cycle duration
//   - error_class: client, server, network or decode
//   - cache_hit: response served from the cache
