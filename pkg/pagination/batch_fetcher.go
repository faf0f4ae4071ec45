package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/feedscroll/pkg/feed"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var (
	batchPagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_batch_pages_total",
		Help: "Pages fetched by the batch fetcher by outcome",
	}, []string{"outcome"})

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_batch_duration_seconds",
		Help:    "Wall-clock duration of a batch fetch",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
	})
)

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel page requests
	MaxConcurrency int
	// Timeout per page fetch
	Timeout time.Duration
}

// DefaultConfig returns the default batch fetcher configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 10,
		Timeout:        15 * time.Second,
	}
}

// PageFetcher fetches a single page from the data provider
type PageFetcher interface {
	FetchPage(ctx context.Context, page int) (feed.PageResult, error)
}

// PageFetcherFunc adapts a function to PageFetcher
type PageFetcherFunc func(ctx context.Context, page int) (feed.PageResult, error)

// FetchPage implements PageFetcher
func (f PageFetcherFunc) FetchPage(ctx context.Context, page int) (feed.PageResult, error) {
	return f(ctx, page)
}

// BatchFetcher fetches several pages in parallel
type BatchFetcher struct {
	fetcher PageFetcher
	config  Config
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(fetcher PageFetcher, config Config) *BatchFetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
	}
}

// job is one page request, indexed by its position in the batch
type job struct {
	index int
	page  int
}

// FetchPages fetches the given pages in parallel and returns the results in
// the order of pages, independent of completion order.
// The batch is all-or-nothing: the first failure cancels the remaining
// requests and no results are returned.
func (bf *BatchFetcher) FetchPages(ctx context.Context, pages []int) ([]feed.PageResult, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	start := time.Now()
	defer func() {
		batchDuration.Observe(time.Since(start).Seconds())
	}()

	// Single page optimization
	if len(pages) == 1 {
		result, err := bf.fetchOne(ctx, pages[0])
		if err != nil {
			batchPagesTotal.WithLabelValues("failed").Inc()
			return nil, err
		}
		batchPagesTotal.WithLabelValues("ok").Inc()
		return []feed.PageResult{result}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Debug().
		Ints("pages", pages).
		Int("workers", bf.workers(len(pages))).
		Msg("Starting parallel page fetch")

	results := make([]feed.PageResult, len(pages))
	queue := make(chan job, len(pages))
	for i, page := range pages {
		queue <- job{index: i, page: page}
	}
	close(queue)

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		errMu.Unlock()
	}

	for i := 0; i < bf.workers(len(pages)); i++ {
		wg.Add(1)
		go bf.worker(ctx, queue, results, fail, &wg, i)
	}
	wg.Wait()

	if firstErr != nil {
		batchPagesTotal.WithLabelValues("failed").Add(float64(len(pages)))
		log.Warn().
			Err(firstErr).
			Int("pages", len(pages)).
			Msg("Batch fetch failed - discarding batch")
		return nil, firstErr
	}

	batchPagesTotal.WithLabelValues("ok").Add(float64(len(pages)))
	log.Debug().
		Int("pages", len(pages)).
		Dur("duration", time.Since(start)).
		Msg("Batch fetch complete")

	return results, nil
}

// FetchRange fetches pages from..to inclusive.
func (bf *BatchFetcher) FetchRange(ctx context.Context, from, to int) ([]feed.PageResult, error) {
	if from < 1 || to < from {
		return nil, fmt.Errorf("invalid page range %d..%d", from, to)
	}
	pages := make([]int, 0, to-from+1)
	for p := from; p <= to; p++ {
		pages = append(pages, p)
	}
	return bf.FetchPages(ctx, pages)
}

func (bf *BatchFetcher) workers(pages int) int {
	if pages < bf.config.MaxConcurrency {
		return pages
	}
	return bf.config.MaxConcurrency
}

// worker processes pages from the queue
func (bf *BatchFetcher) worker(ctx context.Context, queue <-chan job, results []feed.PageResult, fail func(error), wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	pagesProcessed := 0

	for j := range queue {
		// Check context cancellation
		select {
		case <-ctx.Done():
			log.Debug().
				Int("worker_id", workerID).
				Int("pages_processed", pagesProcessed).
				Msg("Worker stopping (context cancelled)")
			fail(&feed.FetchError{Page: j.page, Class: feed.ErrorClassNetwork, Err: ctx.Err()})
			return
		default:
		}

		result, err := bf.fetchOne(ctx, j.page)
		if err != nil {
			fail(err)
			return
		}

		// Each index is written by exactly one worker.
		results[j.index] = result
		pagesProcessed++
	}
}

// fetchOne fetches a single page with the per-page timeout and normalizes errors.
func (bf *BatchFetcher) fetchOne(ctx context.Context, page int) (feed.PageResult, error) {
	pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()

	result, err := bf.fetcher.FetchPage(pageCtx, page)
	if err != nil {
		var fe *feed.FetchError
		if !errors.As(err, &fe) {
			err = &feed.FetchError{Page: page, Class: feed.ErrorClassNetwork, Err: err}
		}
		return feed.PageResult{}, err
	}

	result.Page = page
	if result.Items == nil {
		result.Items = []feed.Item{}
	}
	return result, nil
}
