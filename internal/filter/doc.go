// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

// Package filter parses the filter-bar query language used by the dashboard
// tables into a compound filter: an ordered list of single-column conditions
// that are combined with logical AND.
//
// # Syntax
//
// A query is one or more segments joined by the literal " && ":
//
//	{Price} >= 200 && {Category} contains Nook && {Product Code} = "328"
//
// Each segment names a column between braces, then an operator, then a value.
// Operators are matched in this priority order so that multi-character tokens
// win over their prefixes:
//
//	>=  <=  <  >  !=  =  contains  datestartswith
//
// The word spellings ge, le, lt, gt, ne and eq are accepted when they directly
// follow the column reference and no token from the list above is present.
//
// # Values
//
// A value wrapped in matching ', " or ` quotes is always a string, with
// backslash-escaped quotes unescaped. Anything else is parsed as a float and
// kept as a string if that fails. Quoting is how product codes such as "328"
// keep exact string semantics.
//
// # Errors
//
// A malformed segment rejects the whole query with a *SegmentError wrapping
// ErrUnparseableSegment. Column existence is checked by the evaluator, not the
// parser.
package filter
