// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

/*
Package middleware provides HTTP middleware components for the dashboard API.

Key Components:

  - Compression: gzip responses with pooled klauspost/compress writers
  - Performance Monitor: sliding-window latency percentiles per route
  - Request ID: X-Request-ID propagation into the logging context
  - Prometheus Metrics: request count, duration and in-flight gauges

All middleware uses the func(http.HandlerFunc) http.HandlerFunc shape. The API
router adapts them for chi:

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.Use(chiMiddleware(monitor.Middleware))

Route patterns such as /api/v1/tables/{name} label metrics and performance
statistics, so the number of series stays bounded regardless of how many
tables are configured.
*/
package middleware
