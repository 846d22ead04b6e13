package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Provider metrics
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omniswap_provider_requests_total",
			Help: "Total number of outbound provider requests",
		},
		[]string{"provider", "status"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "omniswap_provider_duration_seconds",
			Help:    "Provider request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// Aggregation metrics
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omniswap_search_requests_total",
			Help: "Total number of token search/list requests",
		},
		[]string{"kind", "status"},
	)

	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "omniswap_search_duration_seconds",
		Help:    "Token aggregation duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	TokensReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "omniswap_tokens_returned",
		Help:    "Number of tokens returned per aggregation request",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})

	EnrichmentTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omniswap_enrichment_tasks_total",
			Help: "Total number of background enrichment tasks",
		},
		[]string{"status"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "omniswap_cache_hits_total",
		Help: "Total number of TTL cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "omniswap_cache_misses_total",
		Help: "Total number of TTL cache misses",
	})

	// Key pool metrics
	KeyRotations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "omniswap_key_rotations_total",
		Help: "Total number of credential rotations after rate limits",
	})

	KeyPoolExhaustions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "omniswap_key_pool_exhaustions_total",
		Help: "Total number of terminal all-keys-exhausted failures",
	})

	// Pair verification metrics
	PairVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omniswap_pair_verifications_total",
			Help: "Total number of pair verification attempts",
		},
		[]string{"dex", "outcome"},
	)

	PairVerifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "omniswap_pair_verify_duration_seconds",
		Help:    "On-chain pair verification duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	// Swap execution metrics
	SwapSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omniswap_swap_steps_total",
			Help: "Total number of executed route steps",
		},
		[]string{"family", "status"},
	)

	SwapRoutes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omniswap_swap_routes_total",
			Help: "Total number of executed routes",
		},
		[]string{"status"},
	)

	ConfirmDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "omniswap_confirm_duration_seconds",
			Help:    "Transaction confirmation wait duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"family"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omniswap_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "omniswap_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
