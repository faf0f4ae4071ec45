// Package loader implements the feed loading state machine.
//
// A Loader owns the loading status, the accumulated item collection and the
// page cursor. On Start it resumes the cursor found in the location by
// fetching pages 1..N in parallel (catch-up). Afterwards each advance signal
// from the visibility trigger fetches exactly one further page (steady state).
//
//	idle -> loading -> success -> loading -> ... -> end
//	                -> failed
//
// Only one cycle runs at a time; the trigger's in-flight latch is held from
// the advance signal until the cycle has committed its outcome.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/feedscroll/pkg/collection"
	"github.com/Sternrassler/feedscroll/pkg/feed"
	"github.com/Sternrassler/feedscroll/pkg/location"
	"github.com/Sternrassler/feedscroll/pkg/logging"
	"github.com/Sternrassler/feedscroll/pkg/pageindex"
	"github.com/Sternrassler/feedscroll/pkg/pagination"
	"github.com/Sternrassler/feedscroll/pkg/visibility"
	"github.com/rs/zerolog"
)

var (
	// ErrAlreadyStarted is returned by Start on a loader that was started before.
	ErrAlreadyStarted = errors.New("loader already started")

	// ErrClosed is returned for operations on a torn down loader.
	ErrClosed = errors.New("loader closed")

	// ErrNotFailed is returned by Retry when the loader is not in failed status.
	ErrNotFailed = errors.New("retry is only possible from failed status")

	// ErrBusy is returned when a cycle is already in flight.
	ErrBusy = errors.New("a load cycle is already in flight")
)

// Mode is the request mode of a load cycle.
type Mode string

const (
	// ModeCatchUp fetches pages 1..cursor on first load.
	ModeCatchUp Mode = "catch_up"

	// ModeSteady fetches the single next page.
	ModeSteady Mode = "steady"
)

// State is a consistent view of the loader.
type State struct {
	Status      feed.Status
	Cursor      pageindex.Cursor
	Initialized bool
	Items       int
	// Err is the failure of the last cycle when Status is failed.
	Err error
}

// Config holds the loader dependencies and settings.
type Config struct {
	// Fetcher requests single pages from the data provider (required)
	Fetcher pagination.PageFetcher

	// Location carries the page cursor (required)
	Location location.Location

	// Trigger is the visibility observer owned by this loader.
	// A new trigger is created when nil.
	Trigger *visibility.Trigger

	// Store receives loaded items. A new store is created when nil.
	Store *collection.Store

	// MaxConcurrency bounds parallel requests during catch-up
	MaxConcurrency int

	// PageTimeout bounds a single page request
	PageTimeout time.Duration

	// OnChange is called after every status transition.
	// It must not block for long; it runs on the loader's goroutines.
	OnChange func(State)
}

// Loader coordinates page fetching, merging and end-of-feed detection.
type Loader struct {
	batch    *pagination.BatchFetcher
	location location.Location
	trigger  *visibility.Trigger
	store    *collection.Store
	onChange func(State)
	logger   zerolog.Logger

	mu          sync.Mutex
	status      feed.Status
	cursor      pageindex.Cursor
	initialized bool
	started     bool
	closed      bool
	lastErr     error
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// New creates an idle loader.
func New(cfg Config) (*Loader, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("page fetcher is required")
	}
	if cfg.Location == nil {
		return nil, fmt.Errorf("location is required")
	}

	logger := logging.NewLogger("feed-loader")

	if cfg.Trigger == nil {
		cfg.Trigger = visibility.NewTrigger(logger)
	}
	if cfg.Store == nil {
		cfg.Store = collection.NewStore(0)
	}

	batchCfg := pagination.DefaultConfig()
	if cfg.MaxConcurrency > 0 {
		batchCfg.MaxConcurrency = cfg.MaxConcurrency
	}
	if cfg.PageTimeout > 0 {
		batchCfg.Timeout = cfg.PageTimeout
	}

	return &Loader{
		batch:    pagination.NewBatchFetcher(cfg.Fetcher, batchCfg),
		location: cfg.Location,
		trigger:  cfg.Trigger,
		store:    cfg.Store,
		onChange: cfg.OnChange,
		logger:   logger,
		status:   feed.StatusIdle,
		cursor:   pageindex.FirstPage,
	}, nil
}

// Start reads the cursor from the location and begins the catch-up load.
// It returns once the cycle is scheduled; use Wait or OnChange to observe it.
func (l *Loader) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.started {
		l.mu.Unlock()
		return ErrAlreadyStarted
	}
	l.started = true
	l.ctx, l.cancel = context.WithCancel(ctx)

	cursor, err := pageindex.DecodeStrict(l.location.Query())
	if err != nil {
		l.logger.Warn().Err(err).Msg("Invalid page in location - starting at page 1")
	}
	l.cursor = cursor
	l.mu.Unlock()

	// The initial cycle holds the latch so no advance overlaps the catch-up.
	if !l.trigger.Hold() {
		return ErrBusy
	}
	l.begin()

	// Armed exactly once, on the first transition away from idle.
	l.trigger.Arm(l.onAdvance)
	return nil
}

// onAdvance is the trigger callback. The trigger latch is held on entry.
func (l *Loader) onAdvance() {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()

	if closed {
		return
	}
	l.begin()
}

// Retry re-runs the failed cycle. The cursor is unchanged by the failure, so
// this resumes catch-up when nothing was loaded yet, or refetches the next page.
func (l *Loader) Retry() error {
	l.mu.Lock()
	switch {
	case l.closed:
		l.mu.Unlock()
		return ErrClosed
	case l.status != feed.StatusFailed:
		l.mu.Unlock()
		return ErrNotFailed
	}
	l.mu.Unlock()

	if !l.trigger.Hold() {
		return ErrBusy
	}
	l.begin()
	return nil
}

// begin transitions to loading and schedules a cycle. The latch must be held.
func (l *Loader) begin() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}

	mode, target := ModeCatchUp, l.cursor
	if l.initialized {
		mode, target = ModeSteady, l.cursor.Next()
	}

	l.status = feed.StatusLoading
	l.lastErr = nil
	state := l.stateLocked()
	ctx := l.ctx
	l.wg.Add(1)
	l.mu.Unlock()

	l.logger.Debug().
		Str("mode", string(mode)).
		Int("page", target.Page).
		Msg("Load cycle started")
	l.notify(state)

	go l.runCycle(ctx, mode, target)
}

// runCycle fetches the pages of one cycle and commits the outcome.
func (l *Loader) runCycle(ctx context.Context, mode Mode, target pageindex.Cursor) {
	defer l.wg.Done()
	start := time.Now()

	var (
		results []feed.PageResult
		err     error
	)
	if mode == ModeCatchUp {
		results, err = l.batch.FetchRange(ctx, pageindex.FirstPage.Page, target.Page)
	} else {
		results, err = l.batch.FetchPages(ctx, []int{target.Page})
	}
	cycleDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		staleResultsTotal.Inc()
		l.logger.Debug().
			Err(feed.ErrStaleResult).
			Str("mode", string(mode)).
			Int("page", target.Page).
			Msg("Result arrived after teardown")
		return
	}

	if err != nil {
		l.status = feed.StatusFailed
		l.lastErr = err
		l.trigger.Release()
		state := l.stateLocked()
		l.mu.Unlock()

		cyclesTotal.WithLabelValues(string(mode), string(feed.StatusFailed)).Inc()
		l.logger.Warn().
			Err(err).
			Str("mode", string(mode)).
			Int("page", target.Page).
			Msg("Load cycle failed")
		l.notify(state)
		return
	}

	// Merge in ascending page order; results are already ordered by page.
	loaded := 0
	for _, r := range results {
		l.store.Append(r.Items...)
		loaded += len(r.Items)
	}
	itemsLoadedTotal.Add(float64(loaded))
	l.cursor = target

	// Only the highest page of the batch decides whether the feed continues.
	if last := results[len(results)-1]; !last.HasNext {
		l.trigger.Disconnect()
		l.status = feed.StatusEnd
	} else {
		l.trigger.Release()
		l.initialized = true
		l.status = feed.StatusSuccess
	}

	l.location.Replace(pageindex.Encode(l.cursor, l.location.Query()))
	cursorPage.Set(float64(l.cursor.Page))
	state := l.stateLocked()
	l.mu.Unlock()

	cyclesTotal.WithLabelValues(string(mode), string(state.Status)).Inc()
	l.logger.Info().
		Str("mode", string(mode)).
		Int("pages", len(results)).
		Int("page", target.Page).
		Int("items", loaded).
		Int("total_items", state.Items).
		Str("status", string(state.Status)).
		Dur("duration", time.Since(start)).
		Msg("Load cycle complete")
	l.notify(state)
}

// ReportVisibility forwards the sentinel's intersection state to the trigger.
// It returns true when the report started a new cycle.
func (l *Loader) ReportVisibility(intersecting bool) bool {
	return l.trigger.Notify(intersecting)
}

// State returns the current loader state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stateLocked()
}

func (l *Loader) stateLocked() State {
	return State{
		Status:      l.status,
		Cursor:      l.cursor,
		Initialized: l.initialized,
		Items:       l.store.Len(),
		Err:         l.lastErr,
	}
}

// Snapshot returns a read-only view of the loaded items.
func (l *Loader) Snapshot() collection.Snapshot {
	return l.store.Snapshot()
}

// Wait blocks until no cycle is running.
func (l *Loader) Wait() {
	l.wg.Wait()
}

// Close tears the loader down. In-flight requests are cancelled and any
// result that still arrives is discarded.
func (l *Loader) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()

	l.trigger.Disconnect()
	l.logger.Debug().Msg("Loader closed")
	return nil
}

func (l *Loader) notify(state State) {
	if l.onChange != nil {
		l.onChange(state)
	}
}
