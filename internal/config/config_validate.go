// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"time"

	"github.com/tomtom215/recdash/internal/filter"
)

// ErrDependencyCycle is returned when derived tables reference each other.
var ErrDependencyCycle = errors.New("table dependency cycle")

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := c.validateData(); err != nil {
		return err
	}

	if err := c.validateTables(); err != nil {
		return err
	}

	if err := c.validateCharts(); err != nil {
		return err
	}

	return c.validateUI()
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SERVER_TIMEOUT must be positive")
	}
	return nil
}

// validateAPI validates pagination settings
func (c *Config) validateAPI() error {
	if c.API.MaxPageSize < 1 {
		return fmt.Errorf("MAX_PAGE_SIZE must be at least 1")
	}
	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be between 1 and MAX_PAGE_SIZE (%d)", c.API.MaxPageSize)
	}
	if c.API.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}
	if c.API.CacheMaxEntries < 0 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must not be negative")
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if err := c.validateCORS(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

// validateCORS checks every non-wildcard origin is a base http(s) URL.
func (c *Config) validateCORS() error {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			continue
		}
		if err := validateHTTPURL(origin, "CORS_ORIGINS"); err != nil {
			return err
		}
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	return slices.Contains(c.Security.CORSOrigins, "*")
}

// ShouldWarnAboutCORS returns true if wildcard CORS is configured in production.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.IsProduction() && c.hasWildcardCORS()
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateData validates snapshot loading settings
func (c *Config) validateData() error {
	if c.Data.RefreshInterval < 0 {
		return fmt.Errorf("REFRESH_INTERVAL must not be negative")
	}
	if c.Data.RefreshInterval > 0 && c.Data.RefreshInterval < time.Second {
		return fmt.Errorf("REFRESH_INTERVAL must be 0 (disabled) or at least 1s")
	}
	if c.Data.ReloadMinInterval < 0 {
		return fmt.Errorf("RELOAD_MIN_INTERVAL must not be negative")
	}
	if c.Data.MaxRows < 0 {
		return fmt.Errorf("MAX_ROWS must not be negative")
	}
	if c.Data.DuckDBThreads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

// tableNamePattern keeps table and chart names safe for URL path segments.
var tableNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]{0,63}$`)

var validFormats = map[string]bool{
	"":        true,
	"parquet": true,
	"csv":     true,
	"xlsx":    true,
	"json":    true,
	"msgpack": true,
	"arrow":   true,
}

// validateTables checks names, sources, steps and the dependency graph.
func (c *Config) validateTables() error {
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	seen := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if !tableNamePattern.MatchString(t.Name) {
			return fmt.Errorf("table name %q must match %s", t.Name, tableNamePattern)
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate table name %q", t.Name)
		}
		seen[t.Name] = true
	}

	for _, t := range c.Tables {
		if err := validateTable(t, seen); err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
	}

	_, err := BuildOrder(c.Tables)
	return err
}

func validateTable(t TableConfig, known map[string]bool) error {
	switch {
	case t.File == "" && t.From == "":
		return fmt.Errorf("one of file or from is required")
	case t.File != "" && t.From != "":
		return fmt.Errorf("file and from are mutually exclusive")
	case t.From != "" && !known[t.From]:
		return fmt.Errorf("from references unknown table %q", t.From)
	case t.From == t.Name:
		return fmt.Errorf("table cannot derive from itself")
	}
	if !validFormats[t.Format] {
		return fmt.Errorf("unsupported format %q", t.Format)
	}
	if t.From != "" && (t.Format != "" || t.Sheet != "" || len(t.Columns) > 0) {
		return fmt.Errorf("format, sheet and columns apply only to file tables")
	}

	for i, s := range t.Steps {
		if err := validateStep(s, known); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, s.Type, err)
		}
	}
	return nil
}

func validateStep(s StepConfig, known map[string]bool) error {
	switch s.Type {
	case StepSelect, StepAsText:
		if len(s.Columns) == 0 {
			return fmt.Errorf("columns is required")
		}
	case StepRename:
		if len(s.Mapping) == 0 {
			return fmt.Errorf("mapping is required")
		}
	case StepTruncate:
		if s.Column == "" || s.Length < 1 {
			return fmt.Errorf("column and a positive length are required")
		}
	case StepFilter:
		if _, err := filter.Parse(s.Query); err != nil {
			return fmt.Errorf("invalid query: %w", err)
		}
	case StepSort, StepCountBy:
		if s.Column == "" {
			return fmt.Errorf("column is required")
		}
	case StepHead:
		if s.N < 0 {
			return fmt.Errorf("n must not be negative")
		}
	case StepJoin:
		if s.Table == "" || s.On == "" {
			return fmt.Errorf("table and on are required")
		}
		if !known[s.Table] {
			return fmt.Errorf("join references unknown table %q", s.Table)
		}
	default:
		return fmt.Errorf("unknown step type %q", s.Type)
	}
	return nil
}

// BuildOrder returns table names ordered so every table follows the tables
// it depends on. Ties keep configuration order.
func BuildOrder(tables []TableConfig) ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	byName := make(map[string]TableConfig, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	state := make(map[string]int, len(tables))
	order := make([]string, 0, len(tables))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %v", ErrDependencyCycle, append(path, name))
		}
		t, ok := byName[name]
		if !ok {
			return fmt.Errorf("unknown table %q", name)
		}
		state[name] = visiting
		for _, dep := range t.Dependencies() {
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, name)
		return nil
	}

	for _, t := range tables {
		if err := visit(t.Name, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

var validChartTypes = map[string]bool{
	ChartBar:       true,
	ChartHistogram: true,
}

var validHoverFormats = map[string]bool{
	"":         true,
	"text":     true,
	"int":      true,
	"currency": true,
}

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// validateCharts checks chart types, table references and per-type fields.
func (c *Config) validateCharts() error {
	seen := make(map[string]bool, len(c.Charts))
	for _, ch := range c.Charts {
		if !tableNamePattern.MatchString(ch.Name) {
			return fmt.Errorf("chart name %q must match %s", ch.Name, tableNamePattern)
		}
		if seen[ch.Name] {
			return fmt.Errorf("duplicate chart name %q", ch.Name)
		}
		seen[ch.Name] = true

		if !validChartTypes[ch.Type] {
			return fmt.Errorf("chart %s: type must be bar or histogram", ch.Name)
		}
		if _, ok := c.Table(ch.Table); !ok {
			return fmt.Errorf("chart %s: unknown table %q", ch.Name, ch.Table)
		}
		if ch.Color != "" && !hexColorPattern.MatchString(ch.Color) {
			return fmt.Errorf("chart %s: color must be #rrggbb", ch.Name)
		}

		switch ch.Type {
		case ChartBar:
			if ch.Label == "" || ch.Value == "" {
				return fmt.Errorf("chart %s: bar charts need label and value", ch.Name)
			}
			if ch.TopN < 0 {
				return fmt.Errorf("chart %s: top_n must not be negative", ch.Name)
			}
			for _, h := range ch.Hover {
				if h.Column == "" || !validHoverFormats[h.Format] {
					return fmt.Errorf("chart %s: hover fields need a column and a format of int, currency or text", ch.Name)
				}
			}
		case ChartHistogram:
			if ch.Column == "" {
				return fmt.Errorf("chart %s: histograms need column", ch.Name)
			}
			if ch.Bins < 1 || ch.Bins > 1000 {
				return fmt.Errorf("chart %s: bins must be between 1 and 1000", ch.Name)
			}
		}
	}
	return nil
}

// validateUI checks the featured chart exists and the palette is well formed.
func (c *Config) validateUI() error {
	if c.UI.Chart != "" {
		if _, ok := c.Chart(c.UI.Chart); !ok {
			return fmt.Errorf("ui.chart references unknown chart %q", c.UI.Chart)
		}
	}
	colors := c.UI.Colors
	for _, v := range []string{colors.Black, colors.White, colors.VeryLight, colors.LightGray, colors.Gray, colors.Orange, colors.Blue, colors.DarkBlue} {
		if v != "" && !hexColorPattern.MatchString(v) {
			return fmt.Errorf("ui.colors: %q is not a #rrggbb color", v)
		}
	}
	return nil
}
