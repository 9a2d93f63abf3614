// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package snapshot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/tomtom215/recdash/internal/table"
)

// arrowFileMagic opens every Arrow IPC file (and Feather v2 file).
var arrowFileMagic = []byte("ARROW1")

// ArrowLoader reads Arrow IPC files and streams.
type ArrowLoader struct {
	limit rowLimit
}

// Load implements Loader.
func (l *ArrowLoader) Load(ctx context.Context, src Source) (*table.Table, error) {
	raw, err := readAll(src)
	if err != nil {
		return nil, err
	}

	mem := memory.NewGoAllocator()
	if bytes.HasPrefix(raw, arrowFileMagic) {
		return l.loadFile(ctx, src, raw, mem)
	}
	return l.loadStream(ctx, src, raw, mem)
}

func (l *ArrowLoader) loadFile(ctx context.Context, src Source, raw []byte, mem memory.Allocator) (*table.Table, error) {
	rdr, err := ipc.NewFileReader(bytes.NewReader(raw), ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("open arrow file: %w", err)
	}
	defer func() { _ = rdr.Close() }()

	columns := fieldNames(rdr.Schema())
	var rows [][]any
	for i := 0; i < rdr.NumRecords(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := rdr.Record(i)
		if err != nil {
			return nil, fmt.Errorf("read arrow batch %d: %w", i, err)
		}
		rows = appendRecord(rows, rec)
		if err := l.limit.check(len(rows)); err != nil {
			return nil, err
		}
	}
	return newArrowTable(src.Name, columns, rows)
}

func (l *ArrowLoader) loadStream(ctx context.Context, src Source, raw []byte, mem memory.Allocator) (*table.Table, error) {
	rdr, err := ipc.NewReader(bytes.NewReader(raw), ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("open arrow stream: %w", err)
	}
	defer rdr.Release()

	columns := fieldNames(rdr.Schema())
	var rows [][]any
	for rdr.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows = appendRecord(rows, rdr.Record())
		if err := l.limit.check(len(rows)); err != nil {
			return nil, err
		}
	}
	if err := rdr.Err(); err != nil {
		return nil, fmt.Errorf("read arrow stream: %w", err)
	}
	return newArrowTable(src.Name, columns, rows)
}

func fieldNames(schema *arrow.Schema) []string {
	fields := schema.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// appendRecord copies every row of a batch out of Arrow memory.
func appendRecord(rows [][]any, rec arrow.Record) [][]any {
	ncols := int(rec.NumCols())
	for r := 0; r < int(rec.NumRows()); r++ {
		row := make([]any, ncols)
		for c := 0; c < ncols; c++ {
			col := rec.Column(c)
			if col.IsNull(r) {
				continue
			}
			row[c] = col.GetOneForMarshal(r)
		}
		rows = append(rows, row)
	}
	return rows
}

func newArrowTable(name string, columns []string, rows [][]any) (*table.Table, error) {
	if rows == nil {
		rows = [][]any{}
	}
	return table.New(name, columns, rows)
}
