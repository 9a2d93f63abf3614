// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/recdash/internal/table"
)

// DuckDBLoader reads parquet and CSV snapshots through an in-memory DuckDB.
type DuckDBLoader struct {
	db    *sql.DB
	limit rowLimit
}

// NewDuckDBLoader opens the in-memory database. Extension auto-install is
// disabled so loading never reaches the network; parquet and CSV readers
// are built in.
func NewDuckDBLoader(opts Options) (*DuckDBLoader, error) {
	params := []string{"autoinstall_known_extensions=false", "autoload_known_extensions=false"}
	if opts.DuckDBThreads > 0 {
		params = append(params, fmt.Sprintf("threads=%d", opts.DuckDBThreads))
	}
	if opts.DuckDBMaxMemory != "" {
		params = append(params, "max_memory="+opts.DuckDBMaxMemory)
	}

	db, err := sql.Open("duckdb", ":memory:?"+strings.Join(params, "&"))
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	return &DuckDBLoader{db: db, limit: rowLimit(opts.MaxRows)}, nil
}

// Close closes the database.
func (l *DuckDBLoader) Close() error {
	return l.db.Close()
}

// Load implements Loader.
func (l *DuckDBLoader) Load(ctx context.Context, src Source) (*table.Table, error) {
	format := src.Format
	if format == "" {
		detected, _, err := Detect(src.Path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	var reader string
	switch format {
	case FormatParquet:
		reader = "read_parquet(" + quoteLiteral(src.Path) + ")"
	case FormatCSV:
		reader = "read_csv_auto(" + quoteLiteral(src.Path) + ", header = true)"
	default:
		return nil, fmt.Errorf("%w: duckdb cannot read %s", ErrUnsupportedFormat, format)
	}

	query := "SELECT * FROM " + reader
	if l.limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", int(l.limit)+1)
	}

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var data [][]any
	for rows.Next() {
		cells := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan snapshot row %d: %w", len(data), err)
		}
		data = append(data, cells)
		if err := l.limit.check(len(data)); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if data == nil {
		data = [][]any{}
	}
	return table.New(src.Name, columns, data)
}

// quoteLiteral renders s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
