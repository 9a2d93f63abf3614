// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/recdash/internal/table"
)

// Errors returned by catalog lookups and builds.
var (
	ErrTableNotFound    = errors.New("table not found")
	ErrTableUnavailable = errors.New("table is not loaded")
	ErrDependency       = errors.New("dependency failed to load")
	ErrNoTables         = errors.New("no table could be loaded")
)

// Entry is one table of a published catalog.
type Entry struct {
	Name   string
	Title  string
	Hidden bool
	// Source is the snapshot path, empty for derived tables.
	Source string
	// Err is set when the table failed to build; Table is then nil.
	Err   error
	Table *table.Table

	evaluator *table.Evaluator
}

// Loaded reports whether the table built successfully.
func (e *Entry) Loaded() bool {
	return e.Err == nil && e.Table != nil
}

// Evaluator returns the query evaluator bound to the table.
func (e *Entry) Evaluator() *table.Evaluator {
	return e.evaluator
}

// Catalog is an immutable set of built tables.
type Catalog struct {
	Version  uint64
	LoadedAt time.Time

	entries map[string]*Entry
	order   []string
}

func newCatalog(capacity int) *Catalog {
	return &Catalog{
		entries: make(map[string]*Entry, capacity),
		order:   make([]string, 0, capacity),
	}
}

func (c *Catalog) add(e *Entry) {
	if e.Loaded() {
		e.evaluator = table.NewEvaluator(e.Table)
	}
	c.entries[e.Name] = e
	c.order = append(c.order, e.Name)
}

// Entry returns the named entry, loaded or not.
func (c *Catalog) Entry(name string) (*Entry, error) {
	e, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return e, nil
}

// Table returns the named table if it loaded.
func (c *Catalog) Table(name string) (*table.Table, error) {
	e, err := c.Entry(name)
	if err != nil {
		return nil, err
	}
	if !e.Loaded() {
		return nil, fmt.Errorf("%w: %s: %w", ErrTableUnavailable, name, e.Err)
	}
	return e.Table, nil
}

// Lookup implements reshape.Resolver over loaded tables.
func (c *Catalog) Lookup(name string) (*table.Table, bool) {
	e, ok := c.entries[name]
	if !ok || !e.Loaded() {
		return nil, false
	}
	return e.Table, true
}

// Entries returns every entry in build order.
func (c *Catalog) Entries() []*Entry {
	out := make([]*Entry, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.entries[name])
	}
	return out
}

// Visible returns the entries that are not hidden, in build order.
func (c *Catalog) Visible() []*Entry {
	var out []*Entry
	for _, e := range c.Entries() {
		if !e.Hidden {
			out = append(out, e)
		}
	}
	return out
}

// LoadedNames returns the names of every loaded table.
func (c *Catalog) LoadedNames() []string {
	var names []string
	for _, e := range c.Entries() {
		if e.Loaded() {
			names = append(names, e.Name)
		}
	}
	return names
}

// FailedNames returns the names of tables that did not load, in build order.
func (c *Catalog) FailedNames() []string {
	var names []string
	for _, e := range c.Entries() {
		if !e.Loaded() {
			names = append(names, e.Name)
		}
	}
	return names
}

// Failed returns the number of tables that did not load.
func (c *Catalog) Failed() int {
	n := 0
	for _, e := range c.entries {
		if !e.Loaded() {
			n++
		}
	}
	return n
}

// Ready reports whether at least one table is loaded.
func (c *Catalog) Ready() bool {
	for _, e := range c.entries {
		if e.Loaded() {
			return true
		}
	}
	return false
}
