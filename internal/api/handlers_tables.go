// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/recdash/internal/cache"
	"github.com/tomtom215/recdash/internal/metrics"
	"github.com/tomtom215/recdash/internal/table"
)

// TableInfo describes one visible catalog table.
type TableInfo struct {
	Name    string         `json:"name"`
	Title   string         `json:"title"`
	Columns []table.Column `json:"columns"`
	Rows    int            `json:"rows"`
	Loaded  bool           `json:"loaded"`
	Error   string         `json:"error,omitempty"`
}

// TablesResponse is the payload of GET /api/v1/tables.
type TablesResponse struct {
	Version  uint64      `json:"version"`
	LoadedAt time.Time   `json:"loaded_at"`
	Tables   []TableInfo `json:"tables"`
}

// TablePageResponse is the payload of GET /api/v1/tables/{name}.
type TablePageResponse struct {
	Table       string           `json:"table"`
	Version     uint64           `json:"version"`
	FilterQuery string           `json:"filter_query"`
	Columns     []table.Column   `json:"columns"`
	Rows        []map[string]any `json:"rows"`
	PageCurrent int              `json:"page_current"`
	PageSize    int              `json:"page_size"`
	PageCount   int              `json:"page_count"`

	pagination PaginationMeta
}

// pageCacheKey identifies one page of one catalog version.
type pageCacheKey struct {
	Table   string
	Version uint64
	Filter  string
	Page    int
	Size    int
}

// ListTables lists the visible tables of the current catalog, including
// tables that failed to load.
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	cat := h.catalog.Current()

	visible := cat.Visible()
	infos := make([]TableInfo, 0, len(visible))
	for _, e := range visible {
		info := TableInfo{Name: e.Name, Title: e.Title, Loaded: e.Loaded()}
		if info.Title == "" {
			info.Title = e.Name
		}
		if e.Loaded() {
			info.Columns = e.Table.Columns()
			info.Rows = e.Table.Len()
		} else if e.Err != nil {
			info.Error = e.Err.Error()
		}
		infos = append(infos, info)
	}

	NewResponseWriter(w, r).Success(TablesResponse{
		Version:  cat.Version,
		LoadedAt: cat.LoadedAt,
		Tables:   infos,
	})
}

// TablePage filters a table with filter_query and returns one page of the
// result. Pages past the end are empty, not errors.
func (h *Handler) TablePage(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, rerr := h.parseTablePageRequest(r)
	if rerr != nil {
		rw.ValidationError(rerr.message, rerr.details)
		return
	}

	cat := h.catalog.Current()
	entry, err := cat.Entry(req.Table)
	if err != nil {
		respondQueryError(rw, r, err)
		return
	}
	if _, err := cat.Table(req.Table); err != nil {
		respondQueryError(rw, r, err)
		return
	}

	key := cache.GenerateKey("table_page", pageCacheKey{
		Table:   req.Table,
		Version: cat.Version,
		Filter:  req.FilterQuery,
		Page:    req.PageCurrent,
		Size:    req.PageSize,
	})

	v, err := h.cached(key, func() (interface{}, error) {
		start := time.Now()
		page, err := entry.Evaluator().Query(req.FilterQuery, table.PageRequest{
			PageIndex: req.PageCurrent,
			PageSize:  req.PageSize,
		})
		if err != nil {
			return nil, err
		}
		metrics.RecordTableQuery(req.Table, time.Since(start), page.Total)

		return &TablePageResponse{
			Table:       req.Table,
			Version:     cat.Version,
			FilterQuery: req.FilterQuery,
			Columns:     page.Columns,
			Rows:        page.Records(),
			PageCurrent: page.PageIndex,
			PageSize:    page.PageSize,
			PageCount:   page.PageCount,
			pagination: PaginationMeta{
				Total:   page.Total,
				Count:   len(page.Rows),
				Offset:  page.Offset(),
				Limit:   page.PageSize,
				HasMore: page.HasMore(),
			},
		}, nil
	})
	if err != nil {
		respondQueryError(rw, r, err)
		return
	}

	resp := v.(*TablePageResponse)
	pagination := resp.pagination
	rw.SuccessWithPagination(resp, &pagination)
}
