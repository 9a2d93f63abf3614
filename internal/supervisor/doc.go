// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

/*
Package supervisor provides process supervision for Recdash using suture v4.

Long-running components are organized into three child supervisors so a
failure in one layer restarts only that layer:

	RootSupervisor ("recdash")
	├── DataSupervisor ("data-layer")
	│   └── RefreshService
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocketHubService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events (starts, failures, backoff) are logged through the slog
adapter from github.com/thejerf/sutureslog, which the logging package bridges
to zerolog.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewRefreshService(manager, pageCache, hub, refreshCfg))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Services return ctx.Err() on shutdown. Returning suture.ErrDoNotRestart
stops a service permanently.
*/
package supervisor
