// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package snapshot

import (
	"context"
	"fmt"

	"github.com/tomtom215/recdash/internal/table"
)

// Loader reads one snapshot file into a table.
type Loader interface {
	Load(ctx context.Context, src Source) (*table.Table, error)
}

// Options configures a Registry.
type Options struct {
	// MaxRows rejects snapshots with more rows. Zero means unlimited.
	MaxRows int
	// DuckDBThreads limits DuckDB worker threads. Zero lets DuckDB decide.
	DuckDBThreads int
	// DuckDBMaxMemory caps DuckDB memory, e.g. "512MB". Empty lets DuckDB decide.
	DuckDBMaxMemory string
}

// Registry dispatches each source to the loader for its format.
type Registry struct {
	loaders map[Format]Loader
	duck    *DuckDBLoader
}

// NewRegistry builds a registry with every built-in loader.
func NewRegistry(opts Options) (*Registry, error) {
	duck, err := NewDuckDBLoader(opts)
	if err != nil {
		return nil, err
	}
	limit := rowLimit(opts.MaxRows)
	return &Registry{
		duck: duck,
		loaders: map[Format]Loader{
			FormatParquet: duck,
			FormatCSV:     duck,
			FormatXLSX:    &XLSXLoader{limit: limit},
			FormatJSON:    &JSONLoader{limit: limit},
			FormatMsgpack: &MsgpackLoader{limit: limit},
			FormatArrow:   &ArrowLoader{limit: limit},
		},
	}, nil
}

// Register replaces the loader for a format.
func (r *Registry) Register(format Format, l Loader) {
	r.loaders[format] = l
}

// Load resolves the source format and loads it.
func (r *Registry) Load(ctx context.Context, src Source) (*table.Table, error) {
	format := src.Format
	if format == "" {
		detected, _, err := Detect(src.Path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	l, ok := r.loaders[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	t, err := l.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load %s (%s): %w", src.Name, src.Path, err)
	}
	return t, nil
}

// Close releases the DuckDB connection.
func (r *Registry) Close() error {
	if r.duck == nil {
		return nil
	}
	return r.duck.Close()
}

// rowLimit is shared by loaders to stop reading oversized files early.
type rowLimit int

func (l rowLimit) check(rows int) error {
	if l > 0 && rows > int(l) {
		return fmt.Errorf("%w: more than %d rows", ErrTooManyRows, int(l))
	}
	return nil
}
