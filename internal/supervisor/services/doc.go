// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

/*
Package services provides suture.Service wrappers for Recdash components.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server and converts ListenAndServe into Serve
  - Shuts down gracefully within a configurable timeout

WebSocket Hub (WebSocketHubService):
  - Delegates to websocket.Hub.RunWithContext
  - Clients receive a normal close frame on shutdown

Snapshot Refresh (RefreshService):
  - Polls snapshot file modification times and rebuilds the catalog on change
  - Accepts manual reload requests through Trigger
  - Guards rebuilds with a circuit breaker (github.com/sony/gobreaker/v2)
  - Throttles rebuilds with a token bucket (golang.org/x/time/rate)
  - Clears the page cache and broadcasts catalog_reloaded after each publish

Wrappers depend on small interfaces rather than concrete types so they can be
tested with doubles.
*/
package services
