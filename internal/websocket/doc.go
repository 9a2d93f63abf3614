// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

/*
Package websocket pushes catalog change notifications to dashboard pages.

It uses gorilla/websocket with a hub-and-spoke layout: the Hub owns the set of
connected clients and fans out broadcasts, and each Client runs a read pump
(answering "ping" messages) and a write pump (delivering broadcasts and
keepalive pings).

Message Types:

  - catalog_reloaded: a new catalog version is live; data carries the
    version, the loaded table names and any tables that failed to build
  - ping / pong: application-level liveness check from the page

Usage:

	hub := websocket.NewHub()
	go hub.RunWithContext(ctx) // normally run by the supervisor

	// after a successful reload
	hub.BroadcastCatalogReloaded(cat.Version, cat.LoadedNames(), failed)

Browser side:

	ws.onmessage = (event) => {
	    const msg = JSON.parse(event.data);
	    if (msg.type === 'catalog_reloaded') {
	        refreshTables();
	    }
	};

Slow clients whose send buffer is full are disconnected rather than allowed
to stall the broadcast. When the hub's context ends every client receives a
normal close frame.

Configuration:
  - writeWait: 10 seconds per write
  - pongWait: 60 seconds without a pong closes the connection
  - pingPeriod: 54 seconds
  - maxMessageSize: 4 KB inbound
*/
package websocket
