// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tomtom215/recdash/internal/config"
	"github.com/tomtom215/recdash/internal/reshape"
	"github.com/tomtom215/recdash/internal/snapshot"
	"github.com/tomtom215/recdash/internal/table"
)

// fakeLoader serves tables by source path.
type fakeLoader struct {
	mu     sync.Mutex
	tables map[string]*table.Table
	errs   map[string]error
	calls  atomic.Int64
}

func (f *fakeLoader) Load(_ context.Context, src snapshot.Source) (*table.Table, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[src.Path]; ok {
		return nil, err
	}
	t, ok := f.tables[src.Path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", src.Path, os.ErrNotExist)
	}
	return t.Rename(src.Name), nil
}

func (f *fakeLoader) fail(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[path] = err
}

func (f *fakeLoader) heal(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.errs, path)
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		tables: map[string]*table.Table{
			"meta.parquet": table.MustNew("", []string{"asin", "title", "numberReviews"}, [][]any{
				{"A", "Nook GlowLight", 512.0},
				{"B", "Tripod", 87.0},
				{"C", "Canon EOS Rebel", 1024.0},
			}),
			"recs.parquet": table.MustNew("", []string{"asin", "Mapped Product"}, [][]any{
				{"A", 328.0},
				{"C", 77.0},
				{"Z", 1.0},
			}),
		},
		errs: map[string]error{},
	}
}

func src(name, path string) *snapshot.Source {
	return &snapshot.Source{Name: name, Path: path}
}

func testDefinitions() []Definition {
	return []Definition{
		{Name: "meta", Source: src("meta", "meta.parquet"), Hidden: true},
		{Name: "recs", Title: "Product Recommendations", Source: src("recs", "recs.parquet"),
			Steps: []reshape.Step{reshape.AsText{Columns: []string{"Mapped Product"}}}},
		{Name: "top", From: "meta", Steps: []reshape.Step{
			reshape.Sort{Column: "numberReviews", Descending: true},
			reshape.Head{N: 2},
		}},
		{Name: "recs-meta", From: "recs", Steps: []reshape.Step{
			reshape.Join{Table: "meta", On: "asin", Columns: []string{"title"}},
		}},
	}
}

func newTestManager(t *testing.T, loader Loader) *Manager {
	t.Helper()
	m, err := NewManager(testDefinitions(), loader)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestManager_Reload(t *testing.T) {
	m := newTestManager(t, newFakeLoader())

	if m.Current() == nil || m.Current().Ready() {
		t.Fatal("initial catalog should be empty and not ready")
	}

	cat, err := m.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if cat != m.Current() {
		t.Error("Reload() should publish the returned catalog")
	}
	if cat.Version != 1 {
		t.Errorf("Version = %d, want 1", cat.Version)
	}
	if cat.LoadedAt.IsZero() {
		t.Error("LoadedAt not set")
	}
	if !slices.Equal(cat.LoadedNames(), []string{"meta", "recs", "top", "recs-meta"}) {
		t.Errorf("LoadedNames() = %v", cat.LoadedNames())
	}

	top, err := cat.Table("top")
	if err != nil {
		t.Fatalf("Table(top) error = %v", err)
	}
	if top.Name() != "top" || top.Len() != 2 {
		t.Errorf("top = %s with %d rows", top.Name(), top.Len())
	}
	if got, _ := top.Cell(0, "title"); got != "Canon EOS Rebel" {
		t.Errorf("top[0].title = %v", got)
	}

	joined, _ := cat.Table("recs-meta")
	if joined.Len() != 2 {
		t.Errorf("recs-meta rows = %d, want 2 (inner join)", joined.Len())
	}
	if got, _ := joined.Cell(0, "Mapped Product"); got != "328" {
		t.Errorf("Mapped Product = %#v, want text \"328\"", got)
	}

	visible := cat.Visible()
	if len(visible) != 3 || visible[0].Name != "recs" || visible[0].Title != "Product Recommendations" {
		t.Errorf("Visible() = %v", visible)
	}

	entry, _ := cat.Entry("recs")
	page, err := entry.Evaluator().Query(`{Mapped Product} = "328"`, table.PageRequest{PageSize: 11})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if page.Total != 1 {
		t.Errorf("Total = %d, want 1", page.Total)
	}

	again, err := m.Reload(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if again.Version != 2 {
		t.Errorf("second Version = %d, want 2", again.Version)
	}
}

func TestManager_FailureIsolation(t *testing.T) {
	loader := newFakeLoader()
	loader.fail("meta.parquet", errors.New("corrupt footer"))
	m := newTestManager(t, loader)

	cat, err := m.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload() error = %v, want partial success", err)
	}

	if !slices.Equal(cat.LoadedNames(), []string{"recs"}) {
		t.Errorf("LoadedNames() = %v, want [recs]", cat.LoadedNames())
	}
	if cat.Failed() != 3 {
		t.Errorf("Failed() = %d, want 3", cat.Failed())
	}
	if !slices.Equal(cat.FailedNames(), []string{"meta", "top", "recs-meta"}) {
		t.Errorf("FailedNames() = %v", cat.FailedNames())
	}

	meta, _ := cat.Entry("meta")
	if meta.Loaded() || meta.Err == nil {
		t.Error("meta should carry its load error")
	}
	for _, name := range []string{"top", "recs-meta"} {
		e, _ := cat.Entry(name)
		if !errors.Is(e.Err, ErrDependency) {
			t.Errorf("%s.Err = %v, want ErrDependency", name, e.Err)
		}
	}

	if _, err := cat.Table("top"); !errors.Is(err, ErrTableUnavailable) {
		t.Errorf("Table(top) error = %v, want ErrTableUnavailable", err)
	}
	if _, err := cat.Table("ghost"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("Table(ghost) error = %v, want ErrTableNotFound", err)
	}
}

func TestManager_AllFailedKeepsPrevious(t *testing.T) {
	loader := newFakeLoader()
	m := newTestManager(t, loader)

	first, err := m.Reload(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	loader.fail("meta.parquet", errors.New("gone"))
	loader.fail("recs.parquet", errors.New("gone"))
	if _, err := m.Reload(context.Background()); !errors.Is(err, ErrNoTables) {
		t.Fatalf("Reload() error = %v, want ErrNoTables", err)
	}
	if m.Current() != first {
		t.Error("failed build replaced the published catalog")
	}

	loader.heal("meta.parquet")
	loader.heal("recs.parquet")
	next, err := m.Reload(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if next.Version != first.Version+1 {
		t.Errorf("Version = %d, want %d", next.Version, first.Version+1)
	}
}

func TestManager_CancelledContext(t *testing.T) {
	m := newTestManager(t, newFakeLoader())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Reload(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Reload() error = %v, want context.Canceled", err)
	}
	if m.Current().Version != 0 {
		t.Error("cancelled build was published")
	}
}

func TestManager_ConcurrentReadsDuringReload(t *testing.T) {
	m := newTestManager(t, newFakeLoader())
	if _, err := m.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cat := m.Current()
				e, err := cat.Entry("recs")
				if err != nil {
					t.Errorf("Entry() error = %v", err)
					return
				}
				if _, err := e.Evaluator().Query("{asin} contains A", table.PageRequest{PageSize: 5}); err != nil {
					t.Errorf("Query() error = %v", err)
					return
				}
			}
		}()
	}
	for i := 0; i < 5; i++ {
		if _, err := m.Reload(context.Background()); err != nil {
			t.Errorf("Reload() error = %v", err)
		}
	}
	wg.Wait()

	if v := m.Current().Version; v != 6 {
		t.Errorf("Version = %d, want 6", v)
	}
}

func TestManager_Sources(t *testing.T) {
	m := newTestManager(t, newFakeLoader())
	if got := m.Sources(); !slices.Equal(got, []string{"meta.parquet", "recs.parquet"}) {
		t.Errorf("Sources() = %v", got)
	}
}

func TestNewManager_Errors(t *testing.T) {
	tests := []struct {
		name string
		defs []Definition
	}{
		{"duplicate", []Definition{
			{Name: "a", Source: src("a", "a.csv")},
			{Name: "a", Source: src("a", "a.csv")},
		}},
		{"neither source nor from", []Definition{{Name: "a"}}},
		{"both source and from", []Definition{
			{Name: "a", Source: src("a", "a.csv")},
			{Name: "b", Source: src("b", "b.csv"), From: "a"},
		}},
		{"parent defined later", []Definition{
			{Name: "b", From: "a"},
			{Name: "a", Source: src("a", "a.csv")},
		}},
		{"join defined later", []Definition{
			{Name: "b", Source: src("b", "b.csv"), Steps: []reshape.Step{reshape.Join{Table: "a", On: "id"}}},
			{Name: "a", Source: src("a", "a.csv")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewManager(tt.defs, newFakeLoader()); err == nil {
				t.Error("NewManager() expected error")
			}
		})
	}
}

func TestDefinitionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Data: config.DataConfig{Dir: "/data"},
		Tables: []config.TableConfig{
			{Name: "top", From: "meta", Steps: []config.StepConfig{{Type: config.StepHead, N: 10}}},
			{Name: "meta", File: "meta.xlsx", Sheet: "Products", Hidden: true, TextColumns: []string{"Product Code"}},
		},
	}

	defs, err := DefinitionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("DefinitionsFromConfig() error = %v", err)
	}
	if len(defs) != 2 || defs[0].Name != "meta" || defs[1].Name != "top" {
		t.Fatalf("defs not in build order: %+v", defs)
	}

	meta := defs[0]
	if meta.Source == nil || meta.Source.Path != filepath.Join("/data", "meta.xlsx") || meta.Source.Sheet != "Products" {
		t.Errorf("meta.Source = %+v", meta.Source)
	}
	if !meta.Hidden || meta.Title != "meta" {
		t.Errorf("meta = %+v", meta)
	}
	if len(meta.Steps) != 1 {
		t.Fatalf("meta.Steps = %v", meta.Steps)
	}
	if st, ok := meta.Steps[0].(reshape.AsText); !ok || st.Columns[0] != "Product Code" {
		t.Errorf("meta.Steps[0] = %#v, want AsText", meta.Steps[0])
	}
	if h, ok := defs[1].Steps[0].(reshape.Head); !ok || h.N != 10 {
		t.Errorf("top.Steps[0] = %#v", defs[1].Steps[0])
	}
}

func TestStepFromConfig(t *testing.T) {
	tests := []struct {
		in   config.StepConfig
		name string
	}{
		{config.StepConfig{Type: config.StepSelect, Columns: []string{"a"}}, "select"},
		{config.StepConfig{Type: config.StepRename, Mapping: map[string]string{"a": "b"}}, "rename"},
		{config.StepConfig{Type: config.StepTruncate, Column: "a", Length: 3}, "truncate"},
		{config.StepConfig{Type: config.StepAsText, Columns: []string{"a"}}, "as_text"},
		{config.StepConfig{Type: config.StepFilter, Query: "{a} > 1"}, "filter"},
		{config.StepConfig{Type: config.StepSort, Column: "a"}, "sort"},
		{config.StepConfig{Type: config.StepHead, N: 1}, "head"},
		{config.StepConfig{Type: config.StepCountBy, Column: "a"}, "count_by"},
		{config.StepConfig{Type: config.StepJoin, Table: "t", On: "a"}, "join"},
	}
	for _, tt := range tests {
		step, err := StepFromConfig(tt.in)
		if err != nil {
			t.Errorf("StepFromConfig(%s) error = %v", tt.in.Type, err)
			continue
		}
		if step.Name() != tt.name {
			t.Errorf("StepFromConfig(%s).Name() = %q", tt.in.Type, step.Name())
		}
	}

	if _, err := StepFromConfig(config.StepConfig{Type: "pivot"}); !errors.Is(err, reshape.ErrInvalidStep) {
		t.Errorf("unknown step error = %v, want ErrInvalidStep", err)
	}
}

// TestManager_SnapshotRegistry builds the dashboard's own table layout from
// JSON snapshots through the real loader registry.
func TestManager_SnapshotRegistry(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write("product_recommendations.json", `{"columns":["Product Code","Mapped Product"],"data":[[328,1024],[77,5]]}`)
	write("product_metadata.json", `{"columns":["asin","title","category2_t","category3_t","price_t","numberReviews","meanStarRating"],
		"data":[["A","A very long product title that certainly exceeds the sixty character limit",
		"Camera & Photo","Lenses",19.99,40,4.5],["B","Short","Camera & Photo","Tripods",5,400,3.9]]}`)

	cfg := &config.Config{
		Data: config.DataConfig{Dir: dir},
		Tables: []config.TableConfig{
			{Name: "product-recommendations", File: "product_recommendations.json", TextColumns: []string{"Product Code", "Mapped Product"}},
			{Name: "product-metadata", File: "product_metadata.json", Hidden: true, Steps: []config.StepConfig{
				{Type: config.StepTruncate, Column: "title", Length: 60},
			}},
			{Name: "top-10-products", From: "product-metadata", Steps: []config.StepConfig{
				{Type: config.StepSort, Column: "numberReviews", Descending: true},
				{Type: config.StepHead, N: 10},
				{Type: config.StepSort, Column: "numberReviews"},
			}},
		},
	}
	defs, err := DefinitionsFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	reg, err := snapshot.NewRegistry(snapshot.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer reg.Close()

	m, err := NewManager(defs, reg)
	if err != nil {
		t.Fatal(err)
	}
	cat, err := m.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	recs, _ := cat.Table("product-recommendations")
	if got, _ := recs.Cell(0, "Product Code"); got != "328" {
		t.Errorf("Product Code = %#v, want \"328\"", got)
	}

	top, _ := cat.Table("top-10-products")
	if got, _ := top.Cell(0, "asin"); got != "A" {
		t.Errorf("top[0].asin = %v, want A (ascending by reviews)", got)
	}
	title, _ := top.Cell(0, "title")
	if s, _ := title.(string); len([]rune(s)) != 60 {
		t.Errorf("title has %d runes, want 60", len([]rune(s)))
	}
}
