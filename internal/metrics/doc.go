// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry with promauto at package
initialization and exposed at /metrics in Prometheus text format:

	curl http://localhost:8050/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
  - api_active_requests: Requests in flight (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)

Query Metrics:
  - filter_parse_errors_total: Rejected filter queries (counter)
    Labels: reason
  - table_query_duration_seconds: Filter and page evaluation time (histogram)
  - table_query_matched_rows: Rows matching a filter (histogram)

Catalog Metrics:
  - catalog_reloads_total: Catalog builds (counter)
    Labels: status (success, partial, failure, rejected)
  - catalog_reload_duration_seconds: Build time (histogram)
  - catalog_tables: Tables by state (gauge)
  - catalog_table_rows: Rows per loaded table (gauge)
  - catalog_version: Published catalog version (gauge)

Cache, WebSocket and circuit breaker metrics follow the same naming.

# Usage

	start := time.Now()
	page, err := ev.Query(query, req)
	metrics.RecordTableQuery(name, time.Since(start), page.Total)

The HTTP middleware in internal/middleware records request metrics for every
API route.
*/
package metrics
