// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

/*
Package middleware provides the infrastructure middleware shared by every
API route.

Key Components:

  - RequestID: X-Request-ID propagation into the logging context
  - PrometheusMetrics: request counts and latency keyed by chi route pattern
  - Compression: gzip for JSON responses over 1KB (klauspost/compress/gzhttp)
  - PerformanceMonitor: in-process latency percentiles per route

All middleware uses the func(http.Handler) http.Handler shape so it can be
passed straight to chi's Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(compress)
	r.Use(perf.Middleware)

Metrics are labelled with the matched route pattern
("/api/v1/clusters/{id}/leaves") rather than the raw path so that cluster
IDs and IP addresses never become label values.
*/
package middleware
