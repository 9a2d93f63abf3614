// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package reshape

import (
	"fmt"
	"slices"

	"github.com/tomtom215/recdash/internal/filter"
	"github.com/tomtom215/recdash/internal/table"
)

// CountBy groups rows by a column and counts them, producing a two-column
// table sorted by count descending. Ties keep first-seen order and null keys
// are dropped.
type CountBy struct {
	Column string
	// As names the count column. Defaults to "count".
	As string
}

func (s CountBy) Name() string { return "count_by" }

func (s CountBy) Apply(t *table.Table, _ Resolver) (*table.Table, error) {
	pos, err := columnPositions(t, []string{s.Column})
	if err != nil {
		return nil, err
	}
	as := s.As
	if as == "" {
		as = "count"
	}
	if as == s.Column {
		return nil, fmt.Errorf("%w: count column %q collides with group column", ErrInvalidStep, as)
	}

	type group struct {
		key   any
		count int
	}
	var groups []*group
	byKey := make(map[string]*group)
	for i := 0; i < t.Len(); i++ {
		cell := t.Row(i)[pos[0]]
		k, ok := joinKey(cell)
		if !ok {
			continue
		}
		g, seen := byKey[k]
		if !seen {
			g = &group{key: cell}
			byKey[k] = g
			groups = append(groups, g)
		}
		g.count++
	}

	slices.SortStableFunc(groups, func(a, b *group) int {
		return b.count - a.count
	})

	rows := make([][]any, len(groups))
	for i, g := range groups {
		rows[i] = []any{g.key, g.count}
	}
	return table.New(t.Name(), []string{s.Column, as}, rows)
}

// Join is an inner join with another table on a shared key column. Output
// rows follow the left table's order; each left row is repeated once per
// matching right row, in right-table order. Right columns whose names clash
// with left columns get a "_right" suffix.
type Join struct {
	Table string
	On    string
	// Columns optionally limits which right-hand columns are added.
	Columns []string
}

func (s Join) Name() string { return "join" }

func (s Join) Apply(left *table.Table, r Resolver) (*table.Table, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: join needs a table resolver", ErrInvalidStep)
	}
	right, ok := r.Lookup(s.Table)
	if !ok {
		return nil, fmt.Errorf("%w: join table %q is not available", ErrInvalidStep, s.Table)
	}

	leftKey, err := columnPositions(left, []string{s.On})
	if err != nil {
		return nil, err
	}
	rightKey, err := columnPositions(right, []string{s.On})
	if err != nil {
		return nil, err
	}

	rightCols := s.Columns
	if len(rightCols) == 0 {
		rightCols = right.ColumnNames()
	}
	rightCols = slices.DeleteFunc(slices.Clone(rightCols), func(c string) bool { return c == s.On })
	rightPos, err := columnPositions(right, rightCols)
	if err != nil {
		return nil, err
	}

	names := left.ColumnNames()
	for _, c := range rightCols {
		if _, clash := left.ColumnIndex(c); clash {
			c += "_right"
		}
		names = append(names, c)
	}

	index := make(map[string][]int)
	for i := 0; i < right.Len(); i++ {
		if k, ok := joinKey(right.Row(i)[rightKey[0]]); ok {
			index[k] = append(index[k], i)
		}
	}

	var rows [][]any
	for i := 0; i < left.Len(); i++ {
		lrow := left.Row(i)
		k, ok := joinKey(lrow[leftKey[0]])
		if !ok {
			continue
		}
		for _, ri := range index[k] {
			rrow := right.Row(ri)
			row := make([]any, 0, len(names))
			row = append(row, lrow...)
			for _, p := range rightPos {
				row = append(row, rrow[p])
			}
			rows = append(rows, row)
		}
	}
	if rows == nil {
		rows = [][]any{}
	}
	return table.New(left.Name(), names, rows)
}

// joinKey builds a typed key so that the number 328 and the text "328" do
// not match each other.
func joinKey(cell any) (string, bool) {
	switch c := cell.(type) {
	case string:
		return "s:" + c, true
	case float64:
		return "n:" + filter.FormatNumber(c), true
	default:
		return "", false
	}
}
