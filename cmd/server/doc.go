// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

/*
Package main is the entry point for the Recdash server.

Recdash serves a single-page dashboard over tabular recommendation snapshots:
a chart of top products and a paged, filterable table view backed by an
in-memory catalog that is rebuilt whenever a snapshot file changes.

# Application Architecture

The server runs under Suture v4 process supervision:

	RootSupervisor ("recdash")
	├── DataSupervisor ("data-layer")
	│   └── Snapshot refresh (mtime polling, manual reloads)
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocket Hub (catalog_reloaded notifications)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (dashboard, JSON API, /metrics)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, YAML file and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Snapshot loaders: DuckDB (parquet, csv), excelize, msgpack, Arrow IPC, JSON
 4. Catalog: initial build of every configured table
 5. Page cache, WebSocket hub and refresh service
 6. Supervisor Tree and HTTP Server (Chi router with middleware stack)

# Configuration

	Priority: Environment variables > Config file > Defaults

Tables, derived tables and charts are declared in the YAML file (CONFIG_PATH,
or config.yaml in the working directory). Common environment variables:

	HTTP_PORT=8050               # HTTP server port
	DATA_DIR=./data              # base directory for snapshot files
	REFRESH_INTERVAL=30s         # snapshot mtime polling, 0 disables
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	CORS_ORIGINS=https://dash.example.com

# Signal Handling

On SIGINT or SIGTERM the supervisor tree is canceled: the HTTP server drains
in-flight requests (10s timeout), the hub closes WebSocket clients and the
refresh service stops polling. Services that fail to stop are reported.

# Usage

	go run ./cmd/server
	go build -ldflags "-X main.version=1.0.0" -o recdash ./cmd/server

# See Also

  - internal/config: Configuration management
  - internal/catalog: Table catalog and reloads
  - internal/api: HTTP handlers and routing
  - internal/supervisor: Process supervision
*/
package main
