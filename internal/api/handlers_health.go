// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/recdash/internal/logging"
	"github.com/tomtom215/recdash/internal/middleware"
	"github.com/tomtom215/recdash/internal/supervisor/services"
)

// Health states.
const (
	StatusHealthy  = "healthy"
	StatusPartial  = "partial"
	StatusDegraded = "degraded"
)

// CacheStatus summarizes the page cache.
type CacheStatus struct {
	Enabled   bool    `json:"enabled"`
	Keys      int64   `json:"keys"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// HealthStatus is the payload of GET /api/v1/health.
type HealthStatus struct {
	Status           string                     `json:"status"`
	Version          string                     `json:"version"`
	CatalogVersion   uint64                     `json:"catalog_version"`
	CatalogLoadedAt  *time.Time                 `json:"catalog_loaded_at,omitempty"`
	TablesLoaded     int                        `json:"tables_loaded"`
	TablesFailed     []string                   `json:"tables_failed,omitempty"`
	Uptime           float64                    `json:"uptime"`
	Refresh          *services.RefreshStatus    `json:"refresh,omitempty"`
	Cache            CacheStatus                `json:"cache"`
	WebSocketClients int                        `json:"websocket_clients"`
	Endpoints        []middleware.EndpointStats `json:"endpoints,omitempty"`
}

// ReloadResponse is the payload of POST /api/v1/catalog/reload.
type ReloadResponse struct {
	Status         services.TriggerStatus `json:"status"`
	CatalogVersion uint64                 `json:"catalog_version"`
}

// Health reports catalog, refresh, cache and connection status. A catalog
// with failed tables is "partial"; one with no loaded table is "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	cat := h.catalog.Current()

	status := StatusHealthy
	failed := cat.FailedNames()
	switch {
	case !cat.Ready():
		status = StatusDegraded
	case len(failed) > 0:
		status = StatusPartial
	}

	health := HealthStatus{
		Status:         status,
		Version:        h.version,
		CatalogVersion: cat.Version,
		TablesLoaded:   len(cat.LoadedNames()),
		TablesFailed:   failed,
		Uptime:         time.Since(h.startTime).Seconds(),
		Cache:          h.cacheStatus(),
		Endpoints:      h.perfMon.GetStats(),
	}
	if !cat.LoadedAt.IsZero() {
		loadedAt := cat.LoadedAt
		health.CatalogLoadedAt = &loadedAt
	}
	if h.reloader != nil {
		st := h.reloader.Status()
		health.Refresh = &st
	}
	if h.wsHub != nil {
		health.WebSocketClients = h.wsHub.GetClientCount()
	}

	NewResponseWriter(w, r).Success(health)
}

// HealthLive returns 200 while the process is running.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 200 once a catalog with at least one loaded table is
// published, and 503 before that.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	cat := h.catalog.Current()
	if !cat.Ready() {
		rw.ServiceUnavailable("no catalog published")
		return
	}
	rw.Success(map[string]interface{}{
		"ready":           true,
		"catalog_version": cat.Version,
	})
}

// ReloadCatalog queues a catalog rebuild. The rebuild runs in the refresh
// service; clients learn about the result over the WebSocket.
func (h *Handler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.reloader == nil {
		rw.ServiceUnavailable("catalog reload unavailable")
		return
	}

	status := h.reloader.Trigger()
	if status == services.TriggerThrottled {
		rw.TooManyRequests("catalog reload requested too soon, try again later")
		return
	}

	logging.Ctx(r.Context()).Info().Str("status", string(status)).Msg("Catalog reload requested")
	rw.Accepted(ReloadResponse{
		Status:         status,
		CatalogVersion: h.catalog.Current().Version,
	})
}

func (h *Handler) cacheStatus() CacheStatus {
	if h.cache == nil {
		return CacheStatus{}
	}
	stats := h.cache.GetStats()
	return CacheStatus{
		Enabled:   true,
		Keys:      stats.TotalKeys,
		Hits:      stats.Hits,
		Misses:    stats.Misses,
		Evictions: stats.Evictions,
		HitRate:   h.cache.HitRate(),
	}
}
