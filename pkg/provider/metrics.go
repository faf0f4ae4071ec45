package provider

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	providerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_provider_requests_total",
			Help: "Total posts requests served by the mock provider",
		},
		[]string{"status"}, // 200, 304, cancelled
	)

	providerRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_provider_request_duration_seconds",
			Help:    "Posts request duration including artificial latency",
			Buckets: prometheus.DefBuckets,
		},
	)
)
