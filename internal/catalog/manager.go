// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/recdash/internal/logging"
	"github.com/tomtom215/recdash/internal/metrics"
	"github.com/tomtom215/recdash/internal/reshape"
	"github.com/tomtom215/recdash/internal/snapshot"
	"github.com/tomtom215/recdash/internal/table"
)

// Loader reads a snapshot file into a table. *snapshot.Registry implements it.
type Loader interface {
	Load(ctx context.Context, src snapshot.Source) (*table.Table, error)
}

// Manager builds catalogs and publishes the current one.
type Manager struct {
	defs   []Definition
	loader Loader

	// buildMu serializes builds; readers never take it.
	buildMu sync.Mutex
	current atomic.Pointer[Catalog]
	now     func() time.Time
}

// NewManager checks that defs are in build order (every dependency defined
// earlier) and returns a manager whose current catalog is empty.
func NewManager(defs []Definition, loader Loader) (*Manager, error) {
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if seen[d.Name] {
			return nil, fmt.Errorf("duplicate table %q", d.Name)
		}
		if (d.Source == nil) == (d.From == "") {
			return nil, fmt.Errorf("table %q needs exactly one of a source file or a parent table", d.Name)
		}
		for _, dep := range d.Dependencies() {
			if !seen[dep] {
				return nil, fmt.Errorf("table %q depends on %q, which is not defined before it", d.Name, dep)
			}
		}
		seen[d.Name] = true
	}

	m := &Manager{defs: defs, loader: loader, now: time.Now}
	m.current.Store(newCatalog(0))
	return m, nil
}

// Current returns the published catalog. It is never nil.
func (m *Manager) Current() *Catalog {
	return m.current.Load()
}

// Sources returns every snapshot file path, in build order.
func (m *Manager) Sources() []string {
	var paths []string
	for _, d := range m.defs {
		if d.Source != nil {
			paths = append(paths, d.Source.Path)
		}
	}
	return paths
}

// Reload builds a new catalog from every definition and publishes it.
// Tables that fail are recorded in the catalog and do not stop the build.
// If no table loads, or ctx is cancelled, nothing is published and the
// previous catalog stays current.
func (m *Manager) Reload(ctx context.Context) (*Catalog, error) {
	m.buildMu.Lock()
	defer m.buildMu.Unlock()

	start := m.now()
	prev := m.current.Load()
	next := newCatalog(len(m.defs))

	var errs []error
	for _, d := range m.defs {
		if err := ctx.Err(); err != nil {
			metrics.RecordCatalogReload("failure", time.Since(start))
			return nil, err
		}

		e := &Entry{Name: d.Name, Title: d.Title, Hidden: d.Hidden}
		if d.Source != nil {
			e.Source = d.Source.Path
		}
		e.Table, e.Err = m.build(ctx, d, next)
		if e.Err != nil {
			e.Table = nil
			errs = append(errs, fmt.Errorf("%s: %w", d.Name, e.Err))
			logging.Warn().
				Str("table", d.Name).
				Str("source", e.Source).
				Err(e.Err).
				Msg("Catalog table failed to load")
		}
		next.add(e)
	}

	if len(m.defs) > 0 && !next.Ready() {
		metrics.RecordCatalogReload("failure", time.Since(start))
		return nil, fmt.Errorf("%w: %w", ErrNoTables, errors.Join(errs...))
	}

	next.Version = prev.Version + 1
	next.LoadedAt = m.now()
	m.current.Store(next)

	status := "success"
	if len(errs) > 0 {
		status = "partial"
	}
	metrics.RecordCatalogReload(status, time.Since(start))
	rows := make(map[string]int, len(next.entries))
	for _, e := range next.Entries() {
		if e.Loaded() {
			rows[e.Name] = e.Table.Len()
		}
	}
	metrics.UpdateCatalog(next.Version, rows, len(errs))

	logging.Info().
		Uint64("version", next.Version).
		Int("tables", len(rows)).
		Int("failed", len(errs)).
		Dur("duration", time.Since(start)).
		Msg("Catalog published")
	return next, nil
}

// build produces one table. Tables already added to next resolve From and
// Join references.
func (m *Manager) build(ctx context.Context, d Definition, next *Catalog) (*table.Table, error) {
	for _, dep := range d.Dependencies() {
		if _, ok := next.Lookup(dep); !ok {
			return nil, fmt.Errorf("%w: %s", ErrDependency, dep)
		}
	}

	var base *table.Table
	if d.Source != nil {
		t, err := m.loader.Load(ctx, *d.Source)
		if err != nil {
			return nil, err
		}
		base = t
	} else {
		base, _ = next.Lookup(d.From)
	}

	out, err := reshape.Apply(base, next, d.Steps...)
	if err != nil {
		return nil, err
	}
	return out.Rename(d.Name), nil
}
