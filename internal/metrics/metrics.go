// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Cluster index builds and queries
// - Prefetch cache efficiency
// - Node source polling and circuit breaker state
// - History persistence
// - API endpoint latency and throughput

var (
	// Index Metrics
	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nodeglobe_index_build_duration_seconds",
			Help:    "Duration of cluster index builds in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	IndexBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeglobe_index_builds_total",
			Help: "Total number of index builds by result",
		},
		[]string{"result"}, // "applied", "superseded", "failed", "unchanged"
	)

	IndexNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodeglobe_index_nodes",
			Help: "Number of nodes in the current index",
		},
	)

	IndexVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodeglobe_index_version",
			Help: "Version of the current index",
		},
	)

	// Query Metrics
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodeglobe_query_duration_seconds",
			Help:    "Duration of viewport queries in seconds",
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"source"}, // "index", "prefetch", "fallback"
	)

	QueryFeatures = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nodeglobe_query_features",
			Help:    "Number of features returned per viewport query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// Prefetch Cache Metrics
	PrefetchCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodeglobe_prefetch_cache_hits_total",
			Help: "Total number of viewport queries served from the prefetch cache",
		},
	)

	PrefetchCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodeglobe_prefetch_cache_misses_total",
			Help: "Total number of viewport queries not covered by the prefetch cache",
		},
	)

	PrefetchRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeglobe_prefetch_runs_total",
			Help: "Total number of prefetch passes by result",
		},
		[]string{"result"}, // "completed", "skipped", "stale"
	)

	// Interaction Metrics
	ClusterExpansions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeglobe_cluster_expansions_total",
			Help: "Total number of cluster expansions by outcome",
		},
		[]string{"outcome"}, // "children", "leaves", "spiderfy", "not_found"
	)

	StateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeglobe_controller_state_transitions_total",
			Help: "Total number of controller state transitions by target state",
		},
		[]string{"state"},
	)

	// Source Metrics
	SourcePolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeglobe_source_polls_total",
			Help: "Total number of node source polls by result",
		},
		[]string{"result"}, // "changed", "unchanged", "error"
	)

	SourcePollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nodeglobe_source_poll_duration_seconds",
			Help:    "Duration of node source polls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SourceNodesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeglobe_source_nodes_dropped_total",
			Help: "Total number of fetched nodes dropped by reason",
		},
		[]string{"reason"}, // "missing_id", "no_position", "invalid_position", "duplicate", "limit"
	)

	SourceLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodeglobe_source_last_success_timestamp",
			Help: "Unix timestamp of the last successful poll",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodeglobe_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeglobe_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeglobe_circuit_breaker_requests_total",
			Help: "Total number of requests through a circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	// History Metrics
	HistoryWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeglobe_history_writes_total",
			Help: "Total number of history batch writes by result",
		},
		[]string{"result"},
	)

	HistorySamples = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodeglobe_history_samples_total",
			Help: "Total number of history samples written",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeglobe_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodeglobe_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodeglobe_api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)
)

// RecordIndexBuild records a finished build. result is one of the
// IndexBuildsTotal labels.
func RecordIndexBuild(duration time.Duration, nodes int, version uint64, result string) {
	IndexBuildDuration.Observe(duration.Seconds())
	IndexBuildsTotal.WithLabelValues(result).Inc()
	if result == "applied" {
		IndexNodes.Set(float64(nodes))
		IndexVersion.Set(float64(version))
	}
}

// RecordQuery records a viewport query.
func RecordQuery(source string, duration time.Duration, features int) {
	QueryDuration.WithLabelValues(source).Observe(duration.Seconds())
	QueryFeatures.Observe(float64(features))
}

// RecordPrefetchLookup records whether a viewport query hit the prefetch cache.
func RecordPrefetchLookup(hit bool) {
	if hit {
		PrefetchCacheHits.Inc()
	} else {
		PrefetchCacheMisses.Inc()
	}
}

// RecordExpansion records a cluster expansion outcome.
func RecordExpansion(outcome string) {
	ClusterExpansions.WithLabelValues(outcome).Inc()
}

// RecordStateTransition records the controller entering state.
func RecordStateTransition(state string) {
	StateTransitions.WithLabelValues(state).Inc()
}

// RecordSourcePoll records a poll of the node source.
func RecordSourcePoll(duration time.Duration, result string) {
	SourcePollDuration.Observe(duration.Seconds())
	SourcePolls.WithLabelValues(result).Inc()
	if result != "error" {
		SourceLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordNodesDropped adds n dropped nodes for reason.
func RecordNodesDropped(reason string, n int) {
	if n > 0 {
		SourceNodesDropped.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordHistoryWrite records a history batch.
func RecordHistoryWrite(samples int, err error) {
	if err != nil {
		HistoryWrites.WithLabelValues("error").Inc()
		return
	}
	HistoryWrites.WithLabelValues("success").Inc()
	HistorySamples.Add(float64(samples))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
