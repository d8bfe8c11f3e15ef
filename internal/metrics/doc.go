// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

/*
Package metrics provides Prometheus instrumentation for NodeGlobe.

All collectors are registered with the default registry through promauto
and exposed by the API router at /metrics. Callers use the Record* helpers
rather than touching collectors directly so that label values stay
consistent.

# Metric Families

  - nodeglobe_index_*: build duration, build results, node count, version
  - nodeglobe_query_*: viewport query latency by source and result size
  - nodeglobe_prefetch_*: prefetch cache hits, misses and passes
  - nodeglobe_cluster_expansions_total, nodeglobe_controller_state_transitions_total
  - nodeglobe_source_*: polls, poll latency, dropped nodes, circuit breaker
  - nodeglobe_history_*: batch writes and samples
  - nodeglobe_api_*: request counts, latency, in-flight requests

# Example

	start := time.Now()
	features := idx.Query(bounds, zoom)
	metrics.RecordQuery("index", time.Since(start), len(features))
*/
package metrics
