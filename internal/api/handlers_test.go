// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/recdash/internal/cache"
	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/config"
	"github.com/tomtom215/recdash/internal/snapshot"
	"github.com/tomtom215/recdash/internal/supervisor/services"
	"github.com/tomtom215/recdash/internal/table"
	ws "github.com/tomtom215/recdash/internal/websocket"
)

// memoryLoader serves in-memory tables by source path.
type memoryLoader map[string]*table.Table

func (m memoryLoader) Load(_ context.Context, src snapshot.Source) (*table.Table, error) {
	t, ok := m[src.Path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", src.Path, os.ErrNotExist)
	}
	return t.Rename(src.Name), nil
}

// fakeReloader records manual reload requests.
type fakeReloader struct {
	status   services.TriggerStatus
	triggers int
}

func (f *fakeReloader) Trigger() services.TriggerStatus {
	f.triggers++
	return f.status
}

func (f *fakeReloader) Status() services.RefreshStatus {
	return services.RefreshStatus{BreakerState: "closed", Polling: true, LastReason: "startup"}
}

// productRows returns 25 products; product i has price 10*i and i reviews.
func productRows() [][]any {
	categories := []string{"Camera & Photo", "eBook Readers", "Tablets"}
	rows := make([][]any, 25)
	for i := range rows {
		rows[i] = []any{
			fmt.Sprintf("B%03d", i),
			fmt.Sprintf("Product %d", i),
			float64(10 * i),
			float64(i),
			categories[i%len(categories)],
		}
	}
	return rows
}

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{
			DefaultPageSize: 11,
			MaxPageSize:     50,
		},
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"https://dash.example.com"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: true,
		},
		Charts: []config.ChartConfig{
			{Name: "top-products", Title: "Top Products", Type: config.ChartBar, Table: "products", Label: "title", Value: "numberReviews", TopN: 3},
			{Name: "prices", Type: config.ChartHistogram, Table: "products", Column: "price", Bins: 5},
			{Name: "broken-chart", Type: config.ChartBar, Table: "reviews", Label: "title", Value: "stars"},
		},
		UI: config.UIConfig{
			Title:      "Amazon Recommendation Engine",
			Chart:      "top-products",
			Directions: []string{"Pick a tab."},
			Disclaimer: "Not affiliated.",
			Colors:     config.ColorConfig{Orange: "#FF9900", DarkBlue: "#232f3e"},
		},
	}
}

// newTestManager publishes a catalog with a loaded table, a hidden derived
// table and a table whose snapshot is missing.
func newTestManager(t *testing.T) *catalog.Manager {
	t.Helper()

	loader := memoryLoader{
		"products.parquet": table.MustNew("", []string{"asin", "title", "price", "numberReviews", "category"}, productRows()),
	}
	defs := []catalog.Definition{
		{Name: "products", Title: "Products", Source: &snapshot.Source{Name: "products", Path: "products.parquet"}},
		{Name: "products-copy", From: "products", Hidden: true},
		{Name: "reviews", Source: &snapshot.Source{Name: "reviews", Path: "reviews.parquet"}},
	}
	m, err := catalog.NewManager(defs, loader)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, err := m.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return m
}

type testEnv struct {
	handler  *Handler
	router   http.Handler
	cache    *cache.Cache
	reloader *fakeReloader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testConfig()
	pages := cache.New("test-pages", time.Minute, 100)
	t.Cleanup(pages.Close)
	reloader := &fakeReloader{status: services.TriggerAccepted}

	h := NewHandler(cfg, newTestManager(t), pages, ws.NewHub(), reloader)
	return &testEnv{
		handler:  h,
		router:   NewRouter(h, cfg).SetupChi(),
		cache:    pages,
		reloader: reloader,
	}
}

func (e *testEnv) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of a success envelope.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	envelope := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("Failed to unmarshal response: %v (body %s)", err, w.Body.String())
	}
	if !envelope.Success {
		t.Fatalf("Expected success, got %s", w.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, v); err != nil {
		t.Fatalf("Failed to unmarshal data: %v", err)
	}
}

type pageData struct {
	Table   string `json:"table"`
	Columns []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"columns"`
	Rows        []map[string]interface{} `json:"rows"`
	PageCurrent int                      `json:"page_current"`
	PageSize    int                      `json:"page_size"`
	PageCount   int                      `json:"page_count"`
}

func tablePath(name string, params url.Values) string {
	p := "/api/v1/tables/" + name
	if len(params) > 0 {
		p += "?" + params.Encode()
	}
	return p
}

func TestListTables(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/tables")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var data struct {
		Version uint64 `json:"version"`
		Tables  []struct {
			Name   string `json:"name"`
			Title  string `json:"title"`
			Rows   int    `json:"rows"`
			Loaded bool   `json:"loaded"`
			Error  string `json:"error"`
		} `json:"tables"`
	}
	decodeData(t, w, &data)

	if data.Version != 1 {
		t.Errorf("version = %d, want 1", data.Version)
	}
	if len(data.Tables) != 2 {
		t.Fatalf("tables = %+v, want products and reviews (hidden table omitted)", data.Tables)
	}

	products, reviews := data.Tables[0], data.Tables[1]
	if products.Name != "products" || products.Title != "Products" || !products.Loaded || products.Rows != 25 {
		t.Errorf("products = %+v", products)
	}
	if reviews.Name != "reviews" || reviews.Title != "reviews" || reviews.Loaded || reviews.Error == "" {
		t.Errorf("reviews = %+v, want unloaded with error and name as title", reviews)
	}
}

func TestTablePage(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		params    url.Values
		wantRows  int
		wantTotal int
		wantMore  bool
		firstASIN string
	}{
		{
			name:      "default page",
			wantRows:  11,
			wantTotal: 25,
			wantMore:  true,
			firstASIN: "B000",
		},
		{
			name:      "last partial page",
			params:    url.Values{"page_current": {"2"}},
			wantRows:  3,
			wantTotal: 25,
			firstASIN: "B022",
		},
		{
			name:      "page past the end is empty",
			params:    url.Values{"page_current": {"9"}},
			wantRows:  0,
			wantTotal: 25,
		},
		{
			name:      "numeric filter",
			params:    url.Values{"filter_query": {"{price} >= 200"}},
			wantRows:  5,
			wantTotal: 5,
			firstASIN: "B020",
		},
		{
			name:      "compound filter",
			params:    url.Values{"filter_query": {`{category} = "Tablets" && {numberReviews} < 10`}},
			wantRows:  3,
			wantTotal: 3,
			firstASIN: "B002",
		},
		{
			name:      "contains filter with custom page size",
			params:    url.Values{"filter_query": {"{category} contains Camera"}, "page_size": {"4"}},
			wantRows:  4,
			wantTotal: 9,
			wantMore:  true,
			firstASIN: "B000",
		},
		{
			name:      "type mismatch excludes rows",
			params:    url.Values{"filter_query": {"{title} > 5"}},
			wantRows:  0,
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tablePath("products", tt.params))
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}

			var data pageData
			decodeData(t, w, &data)
			if len(data.Rows) != tt.wantRows {
				t.Errorf("rows = %d, want %d", len(data.Rows), tt.wantRows)
			}
			if tt.firstASIN != "" && len(data.Rows) > 0 && data.Rows[0]["asin"] != tt.firstASIN {
				t.Errorf("first asin = %v, want %s", data.Rows[0]["asin"], tt.firstASIN)
			}
			if len(data.Columns) != 5 || data.Columns[2].Name != "price" || data.Columns[2].Type != "numeric" {
				t.Errorf("columns = %+v", data.Columns)
			}

			response := decodeResponse(t, w)
			p := response.Meta.Pagination
			if p == nil {
				t.Fatal("missing pagination")
			}
			if p.Total != tt.wantTotal || p.Count != tt.wantRows || p.HasMore != tt.wantMore {
				t.Errorf("pagination = %+v", *p)
			}
		})
	}
}

func TestTablePage_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		table      string
		params     url.Values
		wantStatus int
		wantCode   string
	}{
		{"unparseable segment", "products", url.Values{"filter_query": {"{price} >= 1 && PriceGreaterThan200"}}, http.StatusBadRequest, ErrCodeInvalidFilter},
		{"unknown column", "products", url.Values{"filter_query": {"{Rating} > 3"}}, http.StatusBadRequest, ErrCodeUnknownColumn},
		{"negative page", "products", url.Values{"page_current": {"-1"}}, http.StatusBadRequest, ErrCodeValidation},
		{"zero page size", "products", url.Values{"page_size": {"0"}}, http.StatusBadRequest, ErrCodeValidation},
		{"page size above max", "products", url.Values{"page_size": {"51"}}, http.StatusBadRequest, ErrCodeValidation},
		{"malformed page", "products", url.Values{"page_current": {"two"}}, http.StatusBadRequest, ErrCodeValidation},
		{"invalid table name", "Products!", nil, http.StatusBadRequest, ErrCodeValidation},
		{"unknown table", "orders", nil, http.StatusNotFound, ErrCodeNotFound},
		{"table name with space", "my table", nil, http.StatusBadRequest, ErrCodeValidation},
		{"missing table", "missing", nil, http.StatusNotFound, ErrCodeNotFound},
		{"table failed to load", "reviews", nil, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tablePath(url.PathEscape(tt.table), tt.params))
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			response := decodeResponse(t, w)
			if response.Error == nil || response.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", response.Error, tt.wantCode)
			}
			if response.Data != nil {
				t.Error("rejected queries must not return rows")
			}
		})
	}
}

func TestTablePage_InvalidFilterDetails(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, tablePath("products", url.Values{"filter_query": {"{price} >= 1 && PriceGreaterThan200"}}))
	response := decodeResponse(t, w)

	details, ok := response.Error.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("details = %T", response.Error.Details)
	}
	if details["segment_index"] != float64(1) {
		t.Errorf("segment_index = %v, want 1", details["segment_index"])
	}
	if seg, _ := details["segment"].(string); !strings.Contains(seg, "PriceGreaterThan200") {
		t.Errorf("segment = %v", details["segment"])
	}
}

func TestTablePage_HiddenTableQueryable(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, tablePath("products-copy", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestTablePage_Cached(t *testing.T) {
	env := newTestEnv(t)
	target := tablePath("products", url.Values{"filter_query": {"{price} >= 100"}})

	first := env.do(t, http.MethodGet, target)
	second := env.do(t, http.MethodGet, target)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("status = %d, %d", first.Code, second.Code)
	}

	stats := env.cache.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("cache hits/misses = %d/%d, want 1/1", stats.Hits, stats.Misses)
	}

	var a, b pageData
	decodeData(t, first, &a)
	decodeData(t, second, &b)
	if len(a.Rows) != len(b.Rows) || a.Rows[0]["asin"] != b.Rows[0]["asin"] {
		t.Error("cached page differs from computed page")
	}

	// Errors are not cached.
	bad := tablePath("products", url.Values{"filter_query": {"{nope} = 1"}})
	env.do(t, http.MethodGet, bad)
	env.do(t, http.MethodGet, bad)
	if env.cache.Len() != 1 {
		t.Errorf("cache entries = %d, want 1", env.cache.Len())
	}
}

func TestCharts(t *testing.T) {
	env := newTestEnv(t)

	t.Run("list", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/charts")
		var data struct {
			Default string `json:"default"`
			Charts  []struct {
				Name  string `json:"name"`
				Color string `json:"color"`
			} `json:"charts"`
		}
		decodeData(t, w, &data)
		if data.Default != "top-products" || len(data.Charts) != 3 {
			t.Errorf("charts = %+v", data)
		}
		if data.Charts[0].Color != "#FF9900" {
			t.Errorf("default color = %q", data.Charts[0].Color)
		}
	})

	t.Run("bar", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/charts/top-products")
		var fig struct {
			Type string `json:"type"`
			Bar  struct {
				Labels []string  `json:"labels"`
				Values []float64 `json:"values"`
			} `json:"bar"`
		}
		decodeData(t, w, &fig)
		if fig.Type != "bar" {
			t.Errorf("type = %q", fig.Type)
		}
		wantLabels := []string{"Product 22", "Product 23", "Product 24"}
		if strings.Join(fig.Bar.Labels, ",") != strings.Join(wantLabels, ",") {
			t.Errorf("labels = %v, want %v (largest last)", fig.Bar.Labels, wantLabels)
		}
	})

	t.Run("histogram", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/charts/prices")
		var fig struct {
			Histogram struct {
				Bins []struct {
					Count int `json:"count"`
				} `json:"bins"`
				Total int `json:"total"`
			} `json:"histogram"`
		}
		decodeData(t, w, &fig)
		if len(fig.Histogram.Bins) != 5 || fig.Histogram.Total != 25 {
			t.Errorf("histogram = %+v", fig.Histogram)
		}
	})

	t.Run("unknown chart", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/charts/nope")
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("chart over failed table", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/charts/broken-chart")
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", w.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var data HealthStatus
	decodeData(t, w, &data)
	if data.Status != StatusPartial {
		t.Errorf("status = %q, want %q", data.Status, StatusPartial)
	}
	if data.CatalogVersion != 1 || data.TablesLoaded != 2 {
		t.Errorf("catalog = v%d, %d loaded", data.CatalogVersion, data.TablesLoaded)
	}
	if len(data.TablesFailed) != 1 || data.TablesFailed[0] != "reviews" {
		t.Errorf("failed = %v", data.TablesFailed)
	}
	if data.Refresh == nil || data.Refresh.BreakerState != "closed" {
		t.Errorf("refresh = %+v", data.Refresh)
	}
	if !data.Cache.Enabled {
		t.Error("cache should be reported as enabled")
	}
}

func TestHealthProbes(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(t, http.MethodGet, "/api/v1/health/live"); w.Code != http.StatusOK {
		t.Errorf("live = %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/v1/health/ready"); w.Code != http.StatusOK {
		t.Errorf("ready = %d", w.Code)
	}

	// Nothing published yet.
	empty, err := catalog.NewManager(nil, memoryLoader{})
	if err != nil {
		t.Fatal(err)
	}
	h := NewHandler(testConfig(), empty, nil, nil, nil)
	w := httptest.NewRecorder()
	h.HealthReady(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready before publish = %d, want 503", w.Code)
	}

	w = httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	var data HealthStatus
	decodeData(t, w, &data)
	if data.Status != StatusDegraded || data.Cache.Enabled || data.Refresh != nil {
		t.Errorf("health = %+v", data)
	}
}

func TestReloadCatalog(t *testing.T) {
	tests := []struct {
		name       string
		status     services.TriggerStatus
		wantStatus int
	}{
		{"accepted", services.TriggerAccepted, http.StatusAccepted},
		{"coalesced", services.TriggerPending, http.StatusAccepted},
		{"throttled", services.TriggerThrottled, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.reloader.status = tt.status

			w := env.do(t, http.MethodPost, "/api/v1/catalog/reload")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if env.reloader.triggers != 1 {
				t.Errorf("triggers = %d, want 1", env.reloader.triggers)
			}
			if tt.wantStatus != http.StatusAccepted {
				return
			}
			var data ReloadResponse
			decodeData(t, w, &data)
			if data.Status != tt.status || data.CatalogVersion != 1 {
				t.Errorf("response = %+v", data)
			}
		})
	}

	t.Run("no reloader", func(t *testing.T) {
		h := NewHandler(testConfig(), newTestManager(t), nil, nil, nil)
		w := httptest.NewRecorder()
		h.ReloadCatalog(w, httptest.NewRequest(http.MethodPost, "/api/v1/catalog/reload", nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", w.Code)
		}
	})

	t.Run("GET not allowed", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(t, http.MethodGet, "/api/v1/catalog/reload")
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", w.Code)
		}
	})
}

func TestCheckWebSocketOrigin(t *testing.T) {
	h := NewHandler(testConfig(), newTestManager(t), nil, nil, nil)

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"missing origin", "", false},
		{"same host http", "http://dash.local:8050", true},
		{"same host https", "https://dash.local:8050", true},
		{"configured origin", "https://dash.example.com", true},
		{"foreign origin", "https://evil.example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://dash.local:8050/api/v1/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := h.checkWebSocketOrigin(req); got != tt.want {
				t.Errorf("checkWebSocketOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestWebSocket_NoHub(t *testing.T) {
	h := NewHandler(testConfig(), newTestManager(t), nil, nil, nil)
	w := httptest.NewRecorder()
	h.WebSocket(w, httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	got := sanitizeLogValue("https://a.example\r\n{\"level\":\"error\"}")
	if strings.ContainsAny(got, "\r\n") {
		t.Errorf("control characters survived: %q", got)
	}
	if long := sanitizeLogValue(strings.Repeat("x", 500)); len(long) != 200 {
		t.Errorf("len = %d, want 200", len(long))
	}
}
