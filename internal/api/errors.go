// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/filter"
	"github.com/tomtom215/recdash/internal/logging"
	"github.com/tomtom215/recdash/internal/metrics"
	"github.com/tomtom215/recdash/internal/table"
)

// FilterErrorDetails locates the rejected segment of a filter query.
type FilterErrorDetails struct {
	SegmentIndex int    `json:"segment_index"`
	Segment      string `json:"segment"`
	Reason       string `json:"reason"`
}

// ColumnErrorDetails names the column a query referenced.
type ColumnErrorDetails struct {
	Table  string `json:"table,omitempty"`
	Column string `json:"column"`
}

// respondQueryError maps catalog, filter and evaluation errors to API error
// codes. A rejected query never produces partial rows.
func respondQueryError(rw *ResponseWriter, r *http.Request, err error) {
	var segErr *filter.SegmentError
	var colErr *table.ColumnError

	switch {
	case errors.As(err, &segErr):
		metrics.RecordFilterError(string(segErr.Reason))
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeInvalidFilter, segErr.Error(), FilterErrorDetails{
			SegmentIndex: segErr.Index,
			Segment:      segErr.Segment,
			Reason:       string(segErr.Reason),
		})

	case errors.As(err, &colErr):
		metrics.RecordFilterError("unknown_column")
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeUnknownColumn, colErr.Error(), ColumnErrorDetails{
			Table:  colErr.Table,
			Column: colErr.Column,
		})

	case errors.Is(err, table.ErrUnknownColumn):
		metrics.RecordFilterError("unknown_column")
		rw.Error(http.StatusBadRequest, ErrCodeUnknownColumn, err.Error())

	case errors.Is(err, table.ErrInvalidPage):
		rw.ValidationError(err.Error(), nil)

	case errors.Is(err, catalog.ErrTableNotFound):
		rw.NotFound(err.Error())

	case errors.Is(err, catalog.ErrTableUnavailable):
		rw.ServiceUnavailable(err.Error())

	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Query failed")
		rw.InternalError("Query failed")
	}
}
