// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/recdash/internal/cache"
	"github.com/tomtom215/recdash/internal/charts"
	"github.com/tomtom215/recdash/internal/logging"
)

// ChartsResponse is the payload of GET /api/v1/charts.
type ChartsResponse struct {
	Default string              `json:"default"`
	Charts  []charts.Definition `json:"charts"`
}

type figureCacheKey struct {
	Chart   string
	Version uint64
}

// ListCharts lists the configured charts and the one shown by default.
func (h *Handler) ListCharts(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(ChartsResponse{
		Default: h.config.UI.Chart,
		Charts:  h.charts,
	})
}

// Chart builds the named chart from the current catalog.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := ChartRequest{Chart: chi.URLParam(r, "name")}
	if rerr := validateRequest(req); rerr != nil {
		rw.ValidationError(rerr.message, rerr.details)
		return
	}

	def, ok := h.chartDefinition(req.Chart)
	if !ok {
		rw.NotFound("chart not found: " + req.Chart)
		return
	}

	cat := h.catalog.Current()
	t, err := cat.Table(def.Table)
	if err != nil {
		respondQueryError(rw, r, err)
		return
	}

	key := cache.GenerateKey("chart", figureCacheKey{Chart: def.Name, Version: cat.Version})
	fig, err := h.cached(key, func() (interface{}, error) {
		return charts.Build(def, t)
	})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("chart", def.Name).Msg("Chart build failed")
		rw.InternalError("failed to build chart")
		return
	}
	rw.Success(fig)
}

func (h *Handler) chartDefinition(name string) (charts.Definition, bool) {
	for _, d := range h.charts {
		if d.Name == name {
			return d, true
		}
	}
	return charts.Definition{}, false
}
