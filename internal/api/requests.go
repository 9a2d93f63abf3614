// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/recdash/internal/validation"
)

// TablePageRequest holds the validated parameters of GET /api/v1/tables/{name}.
//
// Fields:
//   - Table: catalog table name
//   - FilterQuery: filter bar text, empty for no filtering
//   - PageCurrent: zero-based page index
//   - PageSize: rows per page, bounded by api.max_page_size
type TablePageRequest struct {
	Table       string `validate:"required,slug"`
	FilterQuery string `validate:"max=4096"`
	PageCurrent int    `validate:"min=0"`
	PageSize    int    `validate:"min=1"`
}

// ChartRequest holds the validated parameters of GET /api/v1/charts/{name}.
type ChartRequest struct {
	Chart string `validate:"required,slug"`
}

// requestError is a parameter that could not be read or validated.
type requestError struct {
	message string
	details interface{}
}

// intParam reads an integer query parameter. A missing parameter yields def;
// a malformed one is an error rather than a silent default.
func intParam(r *http.Request, key string, def int) (int, *requestError) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &requestError{
			message: fmt.Sprintf("%s must be an integer", key),
			details: map[string]interface{}{"field": key, "value": raw},
		}
	}
	return v, nil
}

// validateRequest runs struct validation and converts failures.
func validateRequest(v interface{}) *requestError {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return nil
	}
	apiErr := verr.ToAPIError()
	out := &requestError{message: apiErr.Message}
	if len(apiErr.Details) > 0 {
		out.details = apiErr.Details
	}
	return out
}

// parseTablePageRequest reads and validates the table page parameters.
func (h *Handler) parseTablePageRequest(r *http.Request) (TablePageRequest, *requestError) {
	req := TablePageRequest{
		Table:       chi.URLParam(r, "name"),
		FilterQuery: r.URL.Query().Get("filter_query"),
	}

	var rerr *requestError
	if req.PageCurrent, rerr = intParam(r, "page_current", 0); rerr != nil {
		return req, rerr
	}
	if req.PageSize, rerr = intParam(r, "page_size", h.config.API.DefaultPageSize); rerr != nil {
		return req, rerr
	}

	if verr := validateRequest(&req); verr != nil {
		return req, verr
	}
	if maxSize := h.config.API.MaxPageSize; maxSize > 0 && req.PageSize > maxSize {
		return req, &requestError{
			message: fmt.Sprintf("page_size must be at most %d", maxSize),
			details: map[string]interface{}{"field": "page_size", "value": req.PageSize},
		}
	}
	return req, nil
}
