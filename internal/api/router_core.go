// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/tomtom215/recdash/internal/config"
	"github.com/tomtom215/recdash/internal/logging"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

// Router sets up HTTP routes using the chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	indexTemplate *template.Template
}

// indexData is the data rendered into the dashboard page.
type indexData struct {
	Title      string
	Chart      string
	Directions []string
	Disclaimer string
	Colors     config.ColorConfig
	PageSize   int
}

// NewRouter creates a router. The dashboard template is embedded in the
// binary, so a parse failure is a build defect and panics.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFromSecurity(cfg.Security)),
		indexTemplate: tmpl,
	}
}

// Index renders the dashboard page.
func (router *Router) Index(w http.ResponseWriter, r *http.Request) {
	cfg := router.handler.config
	data := indexData{
		Title:      cfg.UI.Title,
		Chart:      cfg.UI.Chart,
		Directions: cfg.UI.Directions,
		Disclaimer: cfg.UI.Disclaimer,
		Colors:     cfg.UI.Colors,
		PageSize:   cfg.API.DefaultPageSize,
	}

	// Render to a buffer so a template error never leaves a half-written page.
	var buf bytes.Buffer
	if err := router.indexTemplate.Execute(&buf, data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to execute index template")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(buf.Bytes())
}
