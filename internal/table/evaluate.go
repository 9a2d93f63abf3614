// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package table

import (
	"cmp"
	"fmt"
	"math"
	"strings"

	"github.com/tomtom215/recdash/internal/filter"
)

// PageRequest selects one page of a result.
type PageRequest struct {
	PageIndex int
	PageSize  int
}

// Validate rejects negative page indexes and non-positive page sizes. Page
// indexes beyond the data are valid and produce empty pages.
func (p PageRequest) Validate() error {
	if p.PageIndex < 0 {
		return fmt.Errorf("%w: page index %d is negative", ErrInvalidPage, p.PageIndex)
	}
	if p.PageSize <= 0 {
		return fmt.Errorf("%w: page size %d must be positive", ErrInvalidPage, p.PageSize)
	}
	return nil
}

// Page is one slice of a filtered table.
type Page struct {
	Columns   []Column
	Rows      [][]any
	Total     int
	PageIndex int
	PageSize  int
	PageCount int
}

// Records converts the page rows to column-keyed mappings ready for JSON.
func (p Page) Records() []map[string]any {
	return records(p.Columns, p.Rows)
}

// Offset is the position of the first row of the page in the filtered result.
func (p Page) Offset() int {
	if p.PageIndex >= p.PageCount {
		return p.Total
	}
	return p.PageIndex * p.PageSize
}

// HasMore reports whether pages follow this one.
func (p Page) HasMore() bool {
	return p.PageIndex < p.PageCount-1
}

// Evaluate narrows t by every expression in order and returns the requested
// page. It never modifies t and always returns freshly allocated rows.
func Evaluate(t *Table, filters []filter.Expression, page PageRequest) (Page, error) {
	if err := page.Validate(); err != nil {
		return Page{}, err
	}

	matched, err := Match(t, filters)
	if err != nil {
		return Page{}, err
	}

	total := len(matched)
	pageCount := total / page.PageSize
	if total%page.PageSize != 0 {
		pageCount++
	}

	result := Page{
		Columns:   t.Columns(),
		Rows:      [][]any{},
		Total:     total,
		PageIndex: page.PageIndex,
		PageSize:  page.PageSize,
		PageCount: pageCount,
	}
	if page.PageIndex >= pageCount {
		return result, nil
	}

	start := page.PageIndex * page.PageSize
	end := start + min(page.PageSize, total-start)
	result.Rows = make([][]any, 0, end-start)
	for _, pos := range matched[start:end] {
		result.Rows = append(result.Rows, t.Row(pos))
	}
	return result, nil
}

// Match returns the positions of the rows satisfying every expression.
func Match(t *Table, filters []filter.Expression) ([]int, error) {
	predicates, err := compileAll(t, filters)
	if err != nil {
		return nil, err
	}

	matched := make([]int, 0, len(t.rows))
rows:
	for i, row := range t.rows {
		for _, p := range predicates {
			if !p(row) {
				continue rows
			}
		}
		matched = append(matched, i)
	}
	return matched, nil
}

// Where returns a new table holding only the rows that satisfy filters.
func Where(t *Table, filters []filter.Expression) (*Table, error) {
	matched, err := Match(t, filters)
	if err != nil {
		return nil, err
	}
	return t.subset(matched), nil
}

// Evaluator runs filter-bar queries against one bound table.
type Evaluator struct {
	table *Table
}

// NewEvaluator binds an evaluator to t.
func NewEvaluator(t *Table) *Evaluator {
	return &Evaluator{table: t}
}

// Table returns the bound table.
func (e *Evaluator) Table() *Table {
	return e.table
}

// Query parses a filter-bar query and evaluates it. Parse failures are
// returned unchanged, so callers can test for filter.ErrUnparseableSegment.
func (e *Evaluator) Query(query string, page PageRequest) (Page, error) {
	exprs, err := filter.Parse(query)
	if err != nil {
		return Page{}, err
	}
	return Evaluate(e.table, exprs, page)
}

type predicate func(row []any) bool

// orderings maps each comparison operator to a test on cmp.Compare's result.
var orderings = map[filter.OperatorKind]func(int) bool{
	filter.GreaterOrEqual: func(c int) bool { return c >= 0 },
	filter.LessOrEqual:    func(c int) bool { return c <= 0 },
	filter.LessThan:       func(c int) bool { return c < 0 },
	filter.GreaterThan:    func(c int) bool { return c > 0 },
	filter.NotEqual:       func(c int) bool { return c != 0 },
	filter.Equal:          func(c int) bool { return c == 0 },
}

// compileAll resolves every column before any row is touched, so an unknown
// column rejects the query instead of producing a partial result.
func compileAll(t *Table, filters []filter.Expression) ([]predicate, error) {
	predicates := make([]predicate, 0, len(filters))
	for _, e := range filters {
		p, err := compile(t, e)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, p)
	}
	return predicates, nil
}

func compile(t *Table, e filter.Expression) (predicate, error) {
	col, ok := t.index[e.Column]
	if !ok {
		return nil, &ColumnError{Table: t.name, Column: e.Column}
	}

	if test, ok := orderings[e.Operator]; ok {
		value := e.Value
		return func(row []any) bool {
			c, ok := compareCell(row[col], value)
			return ok && test(c)
		}, nil
	}

	text := e.Value.Text()
	switch e.Operator {
	case filter.Contains:
		return func(row []any) bool {
			s, ok := CellText(row[col])
			return ok && strings.Contains(s, text)
		}, nil
	case filter.DateStartsWith:
		return func(row []any) bool {
			s, ok := CellText(row[col])
			return ok && strings.HasPrefix(s, text)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedOperator, e.Operator)
	}
}

// compareCell orders a cell against a filter value. The second result is
// false for nulls, NaN and mismatched types, which exclude the row.
func compareCell(cell any, v filter.Value) (int, bool) {
	switch c := cell.(type) {
	case float64:
		if !v.IsNumber() || math.IsNaN(v.Num) {
			return 0, false
		}
		return cmp.Compare(c, v.Num), true
	case string:
		if v.IsNumber() {
			return 0, false
		}
		return strings.Compare(c, v.Str), true
	default:
		return 0, false
	}
}
