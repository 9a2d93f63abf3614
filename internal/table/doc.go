// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

// Package table holds immutable in-memory tables and the query evaluator that
// filters and paginates them.
//
// A Table is an ordered column list plus positional rows. Cells are always
// nil, string or float64; New normalizes whatever a snapshot loader produced
// into that set and infers a numeric or text type per column.
//
// Evaluate applies a compound filter (see package filter) conjunctively and
// returns one page:
//
//	exprs, err := filter.Parse("{Price} >= 200 && {Category} contains Nook")
//	page, err := table.Evaluate(t, exprs, table.PageRequest{PageIndex: 0, PageSize: 11})
//
// Ordering operators compare numbers numerically and strings byte-wise. A
// string filter value against a numeric cell (or the reverse) excludes the row
// instead of failing the query, and null cells never match. Pages past the end
// are empty, not errors.
//
// Tables are never mutated after New, so any number of goroutines may
// evaluate against the same table without locking.
package table
