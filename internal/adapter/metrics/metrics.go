// Package metrics defines the Prometheus instruments for the service. All
// collectors are registered on the default registry via promauto and exposed
// by the HTTP server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route, and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route"},
	)
)

// Request governance metrics
var (
	// RateLimitDecisions tracks sliding-window limiter outcomes per scope.
	RateLimitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_decisions_total",
			Help: "Rate limiter decisions by scope and outcome (allowed/rejected)",
		},
		[]string{"scope", "outcome"},
	)

	// RateLimiterTrackedKeys reports how many client keys each sliding-window
	// limiter currently holds, a proxy for distinct active clients.
	RateLimiterTrackedKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rate_limiter_tracked_keys",
			Help: "Client keys currently tracked by each sliding-window limiter scope",
		},
		[]string{"scope"},
	)

	// RetryAttempts counts backoff retries by operation.
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Retry attempts by operation",
		},
		[]string{"operation"},
	)

	// RetryExhaustions counts operations that failed after all attempts.
	RetryExhaustions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_exhaustions_total",
			Help: "Operations that exhausted all retry attempts",
		},
		[]string{"operation"},
	)
)

// Session metrics
var (
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Number of currently active login sessions",
		},
	)

	SessionTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_idle_timeouts_total",
			Help: "Sessions cleared by the idle timeout",
		},
	)

	SignInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sign_ins_total",
			Help: "Sign-in attempts by outcome (success/failure)",
		},
		[]string{"outcome"},
	)
)

// Redis metrics
var (
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState is 0 when closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)

// Cache metrics
var (
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Cache hits by cache name",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Cache misses by cache name",
		},
		[]string{"cache"},
	)
)
