package loader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_cycles_total",
		Help: "Load cycles by mode and resulting status",
	}, []string{"mode", "outcome"})

	cycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "feed_cycle_duration_seconds",
		Help:    "Load cycle duration by mode",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
	}, []string{"mode"})

	itemsLoadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_items_loaded_total",
		Help: "Items merged into the collection",
	})

	staleResultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_stale_results_total",
		Help: "Cycle results discarded because the loader was closed",
	})

	cursorPage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "feed_cursor_page",
		Help: "Page number of the committed cursor",
	})
)
