// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

// Package reshape derives display tables from loaded snapshots: column
// selection, renames, title truncation, forcing text columns, filtering,
// ranking and joins. Every step returns a new table and leaves its input
// untouched.
//
// The default catalog uses it to turn product metadata into the top-10
// ranking shown above the tables:
//
//	top, err := reshape.Apply(products, nil,
//		reshape.Select{Columns: []string{"asin", "title", "numberReviews"}},
//		reshape.Truncate{Column: "title", Length: 60},
//		reshape.Sort{Column: "numberReviews", Descending: true},
//		reshape.Head{N: 10},
//	)
package reshape
