// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Config holds all application configuration loaded from config files and
// environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults reproducing the recommendation dashboard
//  2. Config File: Optional YAML config file (config.yaml) for tables and charts
//  3. Environment Variables: Override scalar settings
//
// Configuration Categories:
//
//  1. Data:
//     - Data: snapshot directory, refresh polling, loader limits
//     - Tables: snapshot-backed and derived tables with reshaping steps
//     - Charts: bar and histogram figures over catalog tables
//
//  2. Serving:
//     - Server: HTTP listener
//     - API: pagination defaults and page cache
//     - Security: CORS and rate limiting
//     - UI: dashboard title, palette, directions and disclaimer
//
//  3. Observability:
//     - Logging: Log levels and output formats
//
// Example - Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from multiple goroutines.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
	Data     DataConfig     `koanf:"data"`
	Tables   []TableConfig  `koanf:"tables"`
	Charts   []ChartConfig  `koanf:"charts"`
	UI       UIConfig       `koanf:"ui"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development" or "production"
}

// APIConfig holds API pagination and response settings
type APIConfig struct {
	DefaultPageSize int           `koanf:"default_page_size"`
	MaxPageSize     int           `koanf:"max_page_size"`
	CacheTTL        time.Duration `koanf:"cache_ttl"` // 0 disables the page cache
	CacheMaxEntries int           `koanf:"cache_max_entries"`
}

// SecurityConfig holds CORS and rate limiting settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DataConfig holds snapshot loading and refresh settings.
type DataConfig struct {
	// Dir is the base directory for relative table file paths.
	Dir string `koanf:"dir"`
	// RefreshInterval is how often source modification times are polled.
	// Zero disables polling; manual reloads still work.
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	// ReloadMinInterval throttles consecutive catalog rebuilds.
	ReloadMinInterval time.Duration `koanf:"reload_min_interval"`
	// MaxRows rejects snapshot files with more rows. Zero means unlimited.
	MaxRows int `koanf:"max_rows"`
	// BreakerFailures is the number of consecutive failed rebuilds that
	// open the reload circuit breaker.
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
	DuckDBThreads   int           `koanf:"duckdb_threads"`
	DuckDBMaxMemory string        `koanf:"duckdb_max_memory"`
}

// TableConfig defines one catalog table. Exactly one of File and From is set.
//
// Example - a derived table:
//
//	- name: top-10-products
//	  from: product-metadata
//	  steps:
//	    - {type: truncate, column: title, length: 60}
//	    - {type: sort, column: numberReviews, descending: true}
//	    - {type: head, n: 10}
type TableConfig struct {
	Name  string `koanf:"name"`
	Title string `koanf:"title"` // tab label, defaults to Name
	// File is a snapshot path, relative to data.dir unless absolute.
	File   string `koanf:"file"`
	Format string `koanf:"format"` // overrides extension detection
	Sheet  string `koanf:"sheet"`  // Excel worksheet
	// Columns fixes the column order of record-oriented JSON and MessagePack.
	Columns []string `koanf:"columns"`
	// TextColumns are forced to text after loading.
	TextColumns []string     `koanf:"text_columns"`
	From        string       `koanf:"from"`
	Steps       []StepConfig `koanf:"steps"`
	Hidden      bool         `koanf:"hidden"`
}

// Step types accepted in TableConfig.Steps.
const (
	StepSelect   = "select"
	StepRename   = "rename"
	StepTruncate = "truncate"
	StepAsText   = "as_text"
	StepFilter   = "filter"
	StepSort     = "sort"
	StepHead     = "head"
	StepCountBy  = "count_by"
	StepJoin     = "join"
)

// StepConfig is one reshaping step. Which fields apply depends on Type.
type StepConfig struct {
	Type       string            `koanf:"type"`
	Columns    []string          `koanf:"columns"`    // select, as_text, join
	Mapping    map[string]string `koanf:"mapping"`    // rename
	Column     string            `koanf:"column"`     // truncate, sort, count_by
	Length     int               `koanf:"length"`     // truncate
	Query      string            `koanf:"query"`      // filter
	Descending bool              `koanf:"descending"` // sort
	N          int               `koanf:"n"`          // head
	As         string            `koanf:"as"`         // count_by
	Table      string            `koanf:"table"`      // join
	On         string            `koanf:"on"`         // join
}

// Chart types accepted in ChartConfig.Type.
const (
	ChartBar       = "bar"
	ChartHistogram = "histogram"
)

// ChartConfig defines one chart over a catalog table.
type ChartConfig struct {
	Name  string `koanf:"name"`
	Title string `koanf:"title"`
	Type  string `koanf:"type"`
	Table string `koanf:"table"`
	// Bar charts
	Label      string       `koanf:"label"`
	Value      string       `koanf:"value"`
	TopN       int          `koanf:"top_n"`      // 0 keeps every row
	Descending bool         `koanf:"descending"` // default draws the largest bar last
	Hover      []HoverField `koanf:"hover"`
	// Histograms
	Column string `koanf:"column"`
	Bins   int    `koanf:"bins"`

	Color      string `koanf:"color"`
	XAxisTitle string `koanf:"x_axis_title"`
	YAxisTitle string `koanf:"y_axis_title"`
}

// HoverField is one line of bar hover text.
type HoverField struct {
	Column string `koanf:"column"`
	Label  string `koanf:"label"`
	Format string `koanf:"format"` // "int", "currency" or "text"
}

// UIConfig holds dashboard presentation settings.
type UIConfig struct {
	Title      string      `koanf:"title"`
	Chart      string      `koanf:"chart"` // chart shown above the tabs
	Directions []string    `koanf:"directions"`
	Disclaimer string      `koanf:"disclaimer"`
	Colors     ColorConfig `koanf:"colors"`
}

// ColorConfig is the dashboard palette.
type ColorConfig struct {
	Black     string `koanf:"black"`
	White     string `koanf:"white"`
	VeryLight string `koanf:"very_light_gray"`
	LightGray string `koanf:"light_gray"`
	Gray      string `koanf:"gray"`
	Orange    string `koanf:"orange"`
	Blue      string `koanf:"strong_blue"`
	DarkBlue  string `koanf:"dark_blue"`
}

// Load reads configuration with layered precedence:
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ResolvePath resolves a table file path against data.dir.
func (c *Config) ResolvePath(file string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(c.Data.Dir, file)
}

// Table returns the table definition with the given name.
func (c *Config) Table(name string) (TableConfig, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableConfig{}, false
}

// Chart returns the chart definition with the given name.
func (c *Config) Chart(name string) (ChartConfig, bool) {
	for _, ch := range c.Charts {
		if ch.Name == name {
			return ch, true
		}
	}
	return ChartConfig{}, false
}

// DisplayTitle returns the tab label of a table.
func (t TableConfig) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.Name
}

// Dependencies returns the tables a definition reads from, From first.
func (t TableConfig) Dependencies() []string {
	var deps []string
	if t.From != "" {
		deps = append(deps, t.From)
	}
	for _, s := range t.Steps {
		if s.Type == StepJoin && s.Table != "" {
			deps = append(deps, s.Table)
		}
	}
	return deps
}
