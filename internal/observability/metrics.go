// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScoreAdjustments counts applied score adjustments by category and sign.
	ScoreAdjustments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hackarena_score_adjustments_total",
		Help: "Total number of score adjustments by category and direction",
	}, []string{"category", "direction"})

	// SeasonResetBatches counts bulk reset batches by outcome.
	SeasonResetBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hackarena_season_reset_batches_total",
		Help: "Total number of season reset batches by outcome",
	}, []string{"outcome"})

	// SanctionsSwept counts sanctions deactivated by the expiry sweep.
	SanctionsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hackarena_sanctions_swept_total",
		Help: "Total number of expired sanctions deactivated by the sweep job",
	})

	// SolveSubmissions counts flag submissions by result.
	SolveSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hackarena_solve_submissions_total",
		Help: "Total number of flag submissions by result",
	}, []string{"result"})

	// RankingCacheHits counts ranking page cache lookups by result.
	RankingCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hackarena_ranking_cache_lookups_total",
		Help: "Total number of ranking page cache lookups by result",
	}, []string{"result"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hackarena_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}
