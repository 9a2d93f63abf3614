// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package reshape

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/tomtom215/recdash/internal/filter"
	"github.com/tomtom215/recdash/internal/table"
)

// ErrInvalidStep is returned for step parameters that can never apply.
var ErrInvalidStep = errors.New("invalid reshape step")

// Resolver looks up other tables by name, for steps such as Join.
type Resolver interface {
	Lookup(name string) (*table.Table, bool)
}

// Step transforms one table into another.
type Step interface {
	Name() string
	Apply(t *table.Table, r Resolver) (*table.Table, error)
}

// Apply runs steps in order. Errors are annotated with the failing step.
func Apply(t *table.Table, r Resolver, steps ...Step) (*table.Table, error) {
	cur := t
	for i, step := range steps {
		next, err := step.Apply(cur, r)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// columnPositions resolves names to positions in t.
func columnPositions(t *table.Table, names []string) ([]int, error) {
	pos := make([]int, len(names))
	for i, n := range names {
		p, ok := t.ColumnIndex(n)
		if !ok {
			return nil, &table.ColumnError{Table: t.Name(), Column: n}
		}
		pos[i] = p
	}
	return pos, nil
}

// copyRows returns fresh copies of every row in t.
func copyRows(t *table.Table) [][]any {
	rows := make([][]any, t.Len())
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}

// Select keeps the listed columns, in the listed order.
type Select struct {
	Columns []string
}

func (s Select) Name() string { return "select" }

func (s Select) Apply(t *table.Table, _ Resolver) (*table.Table, error) {
	if len(s.Columns) == 0 {
		return nil, fmt.Errorf("%w: select needs at least one column", ErrInvalidStep)
	}
	pos, err := columnPositions(t, s.Columns)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, t.Len())
	for i := range rows {
		src := t.Row(i)
		row := make([]any, len(pos))
		for c, p := range pos {
			row[c] = src[p]
		}
		rows[i] = row
	}
	return table.New(t.Name(), s.Columns, rows)
}

// Rename changes column names. Columns not in the mapping keep their name.
type Rename struct {
	Mapping map[string]string
}

func (s Rename) Name() string { return "rename" }

func (s Rename) Apply(t *table.Table, _ Resolver) (*table.Table, error) {
	for from := range s.Mapping {
		if _, ok := t.ColumnIndex(from); !ok {
			return nil, &table.ColumnError{Table: t.Name(), Column: from}
		}
	}
	names := t.ColumnNames()
	for i, n := range names {
		if to, ok := s.Mapping[n]; ok {
			names[i] = to
		}
	}
	return table.New(t.Name(), names, copyRows(t))
}

// Truncate shortens text cells in a column to at most Length characters.
type Truncate struct {
	Column string
	Length int
}

func (s Truncate) Name() string { return "truncate" }

func (s Truncate) Apply(t *table.Table, _ Resolver) (*table.Table, error) {
	if s.Length <= 0 {
		return nil, fmt.Errorf("%w: truncate length %d must be positive", ErrInvalidStep, s.Length)
	}
	pos, err := columnPositions(t, []string{s.Column})
	if err != nil {
		return nil, err
	}
	rows := copyRows(t)
	for _, row := range rows {
		if str, ok := row[pos[0]].(string); ok {
			row[pos[0]] = truncateRunes(str, s.Length)
		}
	}
	return table.New(t.Name(), t.ColumnNames(), rows)
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// AsText converts numeric cells in the listed columns to their text form, so
// identifiers such as product codes get exact string semantics.
type AsText struct {
	Columns []string
}

func (s AsText) Name() string { return "as_text" }

func (s AsText) Apply(t *table.Table, _ Resolver) (*table.Table, error) {
	pos, err := columnPositions(t, s.Columns)
	if err != nil {
		return nil, err
	}
	rows := copyRows(t)
	for _, row := range rows {
		for _, p := range pos {
			if text, ok := table.CellText(row[p]); ok {
				row[p] = text
			}
		}
	}
	return table.New(t.Name(), t.ColumnNames(), rows)
}

// Filter keeps rows matching a filter-bar query.
type Filter struct {
	Query string
}

func (s Filter) Name() string { return "filter" }

func (s Filter) Apply(t *table.Table, _ Resolver) (*table.Table, error) {
	exprs, err := filter.Parse(s.Query)
	if err != nil {
		return nil, err
	}
	return table.Where(t, exprs)
}

// Sort orders rows by one column. The sort is stable, numbers sort before
// text, and nulls always come last.
type Sort struct {
	Column     string
	Descending bool
}

func (s Sort) Name() string { return "sort" }

func (s Sort) Apply(t *table.Table, _ Resolver) (*table.Table, error) {
	pos, err := columnPositions(t, []string{s.Column})
	if err != nil {
		return nil, err
	}
	col := pos[0]
	rows := copyRows(t)
	slices.SortStableFunc(rows, func(a, b []any) int {
		an, bn := a[col] == nil, b[col] == nil
		switch {
		case an && bn:
			return 0
		case an:
			return 1
		case bn:
			return -1
		}
		c := compareCells(a[col], b[col])
		if s.Descending {
			return -c
		}
		return c
	})
	return table.New(t.Name(), t.ColumnNames(), rows)
}

func compareCells(a, b any) int {
	af, aNum := a.(float64)
	bf, bNum := b.(float64)
	switch {
	case aNum && bNum:
		return cmp.Compare(af, bf)
	case aNum:
		return -1
	case bNum:
		return 1
	}
	as, _ := a.(string)
	bs, _ := b.(string)
	return cmp.Compare(as, bs)
}

// Head keeps the first N rows.
type Head struct {
	N int
}

func (s Head) Name() string { return "head" }

func (s Head) Apply(t *table.Table, _ Resolver) (*table.Table, error) {
	if s.N < 0 {
		return nil, fmt.Errorf("%w: head count %d is negative", ErrInvalidStep, s.N)
	}
	n := min(s.N, t.Len())
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return table.New(t.Name(), t.ColumnNames(), rows)
}
