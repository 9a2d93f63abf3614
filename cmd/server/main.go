// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/recdash/internal/api"
	"github.com/tomtom215/recdash/internal/cache"
	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/config"
	"github.com/tomtom215/recdash/internal/logging"
	"github.com/tomtom215/recdash/internal/metrics"
	"github.com/tomtom215/recdash/internal/snapshot"
	"github.com/tomtom215/recdash/internal/supervisor"
	"github.com/tomtom215/recdash/internal/supervisor/services"
	ws "github.com/tomtom215/recdash/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("addr", cfg.Addr()).
		Str("data_dir", cfg.Data.Dir).
		Int("tables", len(cfg.Tables)).
		Int("charts", len(cfg.Charts)).
		Msg("Starting Recdash with supervisor tree")
	metrics.SetAppInfo(version, runtime.Version())

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin in production; set CORS_ORIGINS to the dashboard host")
	}

	registry, err := snapshot.NewRegistry(snapshot.Options{
		MaxRows:         cfg.Data.MaxRows,
		DuckDBThreads:   cfg.Data.DuckDBThreads,
		DuckDBMaxMemory: cfg.Data.DuckDBMaxMemory,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize snapshot loaders")
	}
	defer func() {
		if err := registry.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing snapshot loaders")
		}
	}()

	defs, err := catalog.DefinitionsFromConfig(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid table definitions")
	}
	manager, err := catalog.NewManager(defs, registry)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create catalog manager")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The first build happens before the listener opens so that the
	// dashboard starts with data. On failure the refresh service retries.
	if cat, err := manager.Reload(ctx); err != nil {
		logging.Warn().Err(err).Msg("Initial catalog build failed, serving without data until the next reload")
	} else {
		logging.Info().
			Uint64("version", cat.Version).
			Strs("loaded", cat.LoadedNames()).
			Strs("failed", cat.FailedNames()).
			Msg("Catalog published")
	}

	var pageCache *cache.Cache
	if cfg.API.CacheTTL > 0 {
		pageCache = cache.New("pages", cfg.API.CacheTTL, cfg.API.CacheMaxEntries)
		defer pageCache.Close()
	}

	wsHub := ws.NewHub()

	var invalidator services.Invalidator
	if pageCache != nil {
		invalidator = pageCache
	}
	refresh := services.NewRefreshService(manager, invalidator, wsHub, services.RefreshConfigFromData(cfg.Data))

	handler := api.NewHandler(cfg, manager, pageCache, wsHub, refresh)
	handler.SetVersion(version)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(refresh)
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
