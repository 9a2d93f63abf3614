// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/recdash/internal/cache"
	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/charts"
	"github.com/tomtom215/recdash/internal/config"
	"github.com/tomtom215/recdash/internal/logging"
	"github.com/tomtom215/recdash/internal/middleware"
	"github.com/tomtom215/recdash/internal/supervisor/services"
	ws "github.com/tomtom215/recdash/internal/websocket"
)

// CatalogSource returns the published catalog. *catalog.Manager implements it.
type CatalogSource interface {
	Current() *catalog.Catalog
}

// Reloader accepts manual reload requests. *services.RefreshService
// implements it.
type Reloader interface {
	Trigger() services.TriggerStatus
	Status() services.RefreshStatus
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, WebSocket upgrade
//   - handlers_tables.go: table listing and paged queries
//   - handlers_charts.go: chart listing and figures
//   - handlers_health.go: health probes, status and manual reload
//   - router_core.go: dashboard page
type Handler struct {
	config    *config.Config
	catalog   CatalogSource
	charts    []charts.Definition
	cache     *cache.Cache
	wsHub     *ws.Hub
	reloader  Reloader
	perfMon   *middleware.PerformanceMonitor
	startTime time.Time
	version   string
}

// NewHandler creates the API handler.
//
// pageCache may be nil, which disables result caching; the refresh service
// clears it on every publish. wsHub and reloader may be nil, in which case
// the WebSocket and reload endpoints answer 503.
func NewHandler(cfg *config.Config, source CatalogSource, pageCache *cache.Cache, wsHub *ws.Hub, reloader Reloader) *Handler {
	return &Handler{
		config:    cfg,
		catalog:   source,
		charts:    charts.FromConfig(cfg.Charts),
		cache:     pageCache,
		wsHub:     wsHub,
		reloader:  reloader,
		perfMon:   middleware.NewPerformanceMonitor(1000),
		startTime: time.Now(),
		version:   "dev",
	}
}

// SetVersion sets the build version reported by the status endpoint.
func (h *Handler) SetVersion(v string) {
	if v != "" {
		h.version = v
	}
}

// PerformanceMonitor returns the request monitor used by the router.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}

// ClearCache drops every cached page and figure.
func (h *Handler) ClearCache() {
	if h.cache != nil {
		h.cache.Clear()
	}
}

// cached returns a cached value or computes, stores and returns it. Errors
// are never cached.
func (h *Handler) cached(key string, compute func() (interface{}, error)) (interface{}, error) {
	if h.cache != nil {
		if v, ok := h.cache.Get(key); ok {
			return v, nil
		}
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	if h.cache != nil {
		h.cache.Set(key, v)
	}
	return v, nil
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts same-host pages and configured CORS origins.
// Browsers always send Origin on WebSocket handshakes, so a missing header
// is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	if origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the connection and registers the client with the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		NewResponseWriter(w, r).ServiceUnavailable("WebSocket service unavailable")
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	select {
	case h.wsHub.Register <- client:
		client.Start()
	case <-time.After(5 * time.Second):
		logging.Warn().Msg("WebSocket hub not accepting clients")
		_ = conn.Close()
	}
}

// sanitizeLogValue strips control characters and bounds length so that
// client-supplied values cannot forge log lines.
func sanitizeLogValue(s string) string {
	const maxLen = 200
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		out = append(out, r)
		if len(out) == maxLen {
			break
		}
	}
	return string(out)
}
