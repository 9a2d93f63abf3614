// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tomtom215/recdash/internal/table"
)

// splitFrame is the "split" orientation written by dataframe libraries:
// column names once, then positional rows.
type splitFrame struct {
	Columns []string `json:"columns" msgpack:"columns"`
	Data    [][]any  `json:"data" msgpack:"data"`
}

// JSONLoader reads split-oriented or record-oriented JSON.
type JSONLoader struct {
	limit rowLimit
}

// Load implements Loader.
func (l *JSONLoader) Load(ctx context.Context, src Source) (*table.Table, error) {
	raw, err := readAll(src)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []map[string]any
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("decode json records: %w", err)
		}
		return fromRecords(src, records, l.limit)
	}

	var frame splitFrame
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&frame); err != nil {
		return nil, fmt.Errorf("decode json frame: %w", err)
	}
	return fromSplit(src, frame, l.limit)
}

// MsgpackLoader reads split-oriented or record-oriented MessagePack.
type MsgpackLoader struct {
	limit rowLimit
}

// Load implements Loader.
func (l *MsgpackLoader) Load(ctx context.Context, src Source) (*table.Table, error) {
	raw, err := readAll(src)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var decoded any
	if err := msgpack.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode msgpack: %w", err)
	}

	switch v := decoded.(type) {
	case []any:
		records := make([]map[string]any, 0, len(v))
		for i, item := range v {
			rec, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("msgpack record %d is %T, not a map", i, item)
			}
			records = append(records, rec)
		}
		return fromRecords(src, records, l.limit)
	case map[string]any:
		var frame splitFrame
		if err := msgpack.Unmarshal(raw, &frame); err != nil {
			return nil, fmt.Errorf("decode msgpack frame: %w", err)
		}
		return fromSplit(src, frame, l.limit)
	default:
		return nil, fmt.Errorf("%w: msgpack root is %T", ErrEmptySnapshot, decoded)
	}
}

func readAll(src Source) ([]byte, error) {
	_, comp, err := Detect(src.Path)
	if err != nil && src.Format == "" {
		return nil, err
	}
	r, err := openFile(src.Path, comp)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}

func fromSplit(src Source, frame splitFrame, limit rowLimit) (*table.Table, error) {
	if len(frame.Columns) == 0 {
		return nil, fmt.Errorf("%w: frame has no columns", ErrEmptySnapshot)
	}
	if err := limit.check(len(frame.Data)); err != nil {
		return nil, err
	}
	if frame.Data == nil {
		frame.Data = [][]any{}
	}
	return table.New(src.Name, frame.Columns, frame.Data)
}

func fromRecords(src Source, records []map[string]any, limit rowLimit) (*table.Table, error) {
	if err := limit.check(len(records)); err != nil {
		return nil, err
	}
	columns := src.Columns
	if len(columns) == 0 {
		seen := make(map[string]bool)
		for _, rec := range records {
			for k := range rec {
				if !seen[k] {
					seen[k] = true
					columns = append(columns, k)
				}
			}
		}
		slices.Sort(columns)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no record keys", ErrEmptySnapshot)
	}
	return table.FromRecords(src.Name, columns, records)
}
