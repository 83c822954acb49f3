// Package metrics exposes Prometheus counters for the API access layer and
// the leaderboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rankbook"

var (
	// CacheHits counts fetches served from the response cache without
	// touching the network or the rate limiter.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Response cache hits by resource kind.",
	}, []string{"kind"})

	// CacheMisses counts fetches that had to go upstream.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Response cache misses by resource kind.",
	}, []string{"kind"})

	// LimiterWaits counts the times a fetch had to sleep for quota.
	LimiterWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ratelimit",
		Name:      "waits_total",
		Help:      "Number of admissions that required waiting for quota.",
	})

	// RetryAttempts counts backoff retries by resource kind.
	RetryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "retries_total",
		Help:      "Retry attempts by resource kind.",
	}, []string{"kind"})

	// UpstreamFailures counts terminal fetch failures by failure class.
	UpstreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "failures_total",
		Help:      "Terminal fetch failures by failure class.",
	}, []string{"class"})

	// LeaderboardUpserts counts observations merged into the leaderboard.
	LeaderboardUpserts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "leaderboard",
		Name:      "upserts_total",
		Help:      "Observations merged into the leaderboard.",
	})

	// RefreshSweeps counts completed refresh sweeps.
	RefreshSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "refresh",
		Name:      "sweeps_total",
		Help:      "Completed leaderboard refresh sweeps.",
	})
)
