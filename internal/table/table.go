// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package table

import (
	"fmt"
)

// ColumnType is the type inferred for a column from its content.
type ColumnType int

const (
	// TypeText columns hold strings, or a mix of strings and numbers.
	TypeText ColumnType = iota
	// TypeNumeric columns hold only numbers (and nulls).
	TypeNumeric
)

func (t ColumnType) String() string {
	if t == TypeNumeric {
		return "numeric"
	}
	return "text"
}

// MarshalText renders the type as "numeric" or "text".
func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Column describes one column of a table.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Table is an immutable, ordered set of rows sharing one column list.
type Table struct {
	name    string
	columns []Column
	index   map[string]int
	rows    [][]any
}

// New builds a table. Cells are normalized in place with NormalizeCell and
// the table takes ownership of rows; callers must not modify them afterwards.
func New(name string, columns []string, rows [][]any) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("table %q: %w: %q", name, ErrDuplicateColumn, c)
		}
		index[c] = i
	}

	for r, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("table %q row %d: %w: got %d cells, want %d", name, r, ErrRowWidth, len(row), len(columns))
		}
		for c, cell := range row {
			row[c] = NormalizeCell(cell)
		}
	}

	cols := make([]Column, len(columns))
	for i, c := range columns {
		cols[i] = Column{Name: c, Type: inferType(rows, i)}
	}

	return &Table{name: name, columns: cols, index: index, rows: rows}, nil
}

// MustNew is New for fixtures known to be well formed. It panics on error.
func MustNew(name string, columns []string, rows [][]any) *Table {
	t, err := New(name, columns, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// FromRecords builds a table from row mappings using the given column order.
// Keys missing from a record become nulls.
func FromRecords(name string, columns []string, records []map[string]any) (*Table, error) {
	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(columns))
		for c, col := range columns {
			row[c] = rec[col]
		}
		rows[i] = row
	}
	return New(name, columns, rows)
}

func inferType(rows [][]any, col int) ColumnType {
	seen := false
	for _, row := range rows {
		switch row[col].(type) {
		case nil:
			continue
		case float64:
			seen = true
		default:
			return TypeText
		}
	}
	if seen {
		return TypeNumeric
	}
	return TypeText
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns a copy of the column list.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Name
	}
	return out
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, error) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, &ColumnError{Table: t.name, Column: name}
	}
	return t.columns[i], nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Cell returns the cell at row i in the named column.
func (t *Table) Cell(i int, column string) (any, error) {
	c, ok := t.index[column]
	if !ok {
		return nil, &ColumnError{Table: t.name, Column: column}
	}
	return t.rows[i][c], nil
}

// Rename returns the same table under a different name. Rows are shared.
func (t *Table) Rename(name string) *Table {
	return &Table{name: name, columns: t.columns, index: t.index, rows: t.rows}
}

// Records converts all rows to column-keyed mappings.
func (t *Table) Records() []map[string]any {
	return records(t.columns, t.rows)
}

// subset returns a table with the rows at the given positions. Row slices
// are shared with the receiver, which is safe because neither is mutated.
func (t *Table) subset(positions []int) *Table {
	rows := make([][]any, len(positions))
	for i, p := range positions {
		rows[i] = t.rows[p]
	}
	return &Table{name: t.name, columns: t.columns, index: t.index, rows: rows}
}

func records(columns []Column, rows [][]any) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		rec := make(map[string]any, len(columns))
		for c, col := range columns {
			rec[col.Name] = row[c]
		}
		out[i] = rec
	}
	return out
}
