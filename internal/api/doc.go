// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

/*
Package api provides the HTTP layer for Recdash.

It serves the dashboard page and a JSON API over the published table
catalog. Every query runs against the catalog snapshot current when the
request started, so a reload never changes a page mid-request.

Key Components:

  - Router: chi route configuration and middleware stack
  - Handler: request handlers for tables, charts, health and reload
  - Response formatting: the standard JSON envelope with metadata
  - Error mapping: filter, column and paging errors to stable codes

Endpoints:

	GET  /                         dashboard page
	GET  /api/v1/tables            visible tables with columns and load status
	GET  /api/v1/tables/{name}     one filtered page (filter_query, page_current, page_size)
	GET  /api/v1/charts            configured charts
	GET  /api/v1/charts/{name}     chart figure
	POST /api/v1/catalog/reload    queue a catalog rebuild
	GET  /api/v1/ws                catalog_reloaded notifications
	GET  /api/v1/health[/live|/ready]
	GET  /metrics                  Prometheus exposition

Error Codes:

  - INVALID_FILTER (400): a filter_query segment could not be parsed; details
    name the segment index and text
  - UNKNOWN_COLUMN (400): a filter names a column the table does not have
  - VALIDATION_ERROR (400): malformed or out-of-range request parameters
  - NOT_FOUND (404): unknown table or chart
  - TOO_MANY_REQUESTS (429): rate limited, or a reload requested too soon
  - SERVICE_UNAVAILABLE (503): the table failed to load, or no catalog yet

Usage Example:

	handler := api.NewHandler(cfg, manager, pageCache, hub, refresher)
	router := api.NewRouter(handler, cfg)
	srv := &http.Server{Addr: cfg.Addr(), Handler: router.SetupChi()}

Thread Safety:

Handlers hold no per-request state. The catalog is read through an atomic
pointer and the page cache and WebSocket hub synchronize internally.
*/
package api
