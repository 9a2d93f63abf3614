// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/recdash/config.yaml",
	"/etc/recdash/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultDirections is the filter help shown under the tables.
var DefaultDirections = []string{
	"Each column can be filtered based on user input.",
	`For string columns, just enter a partial string such as "Nook."`,
	`Exception: For product columns, use quotes around filter, such as "328."`,
	`For numeric columns, filters such as "=5" or ">=200" are valid filters.`,
	`Use "Enter" to initiate and remove filters.`,
}

// DefaultDisclaimer is the footer text of the dashboard.
const DefaultDisclaimer = "**Disclaimer**: This project was completed as part of the MSDS 498 Capstone " +
	"Project course within the Northwestern University. This dashboard and data are completely " +
	"simulated and not in any way connected to or a reflection of Amazon. Please do not duplicate " +
	"or distribute outside of the context of this course."

// defaultTables reproduces the recommendation dashboard: two recommendation
// tabs, a hidden product metadata table and the top-10 ranking derived from it.
func defaultTables() []TableConfig {
	return []TableConfig{
		{
			Name:        "product-recommendations",
			Title:       "Product Recommendations",
			File:        "product_recommendations.parquet",
			TextColumns: []string{"Product Code", "Mapped Product"},
		},
		{
			Name:        "user-recommendations",
			Title:       "User Recommendations",
			File:        "user_recommendations.parquet",
			TextColumns: []string{"Product Code"},
		},
		{
			Name:   "product-metadata",
			File:   "product_metadata.parquet",
			Hidden: true,
			Steps: []StepConfig{
				{Type: StepSelect, Columns: []string{"asin", "title", "category2_t", "category3_t", "price_t", "numberReviews", "meanStarRating"}},
				{Type: StepTruncate, Column: "title", Length: 60},
			},
		},
		{
			Name:   "top-10-products",
			From:   "product-metadata",
			Hidden: true,
			Steps: []StepConfig{
				{Type: StepSort, Column: "numberReviews", Descending: true},
				{Type: StepHead, N: 10},
				{Type: StepSort, Column: "numberReviews"},
			},
		},
	}
}

func defaultCharts() []ChartConfig {
	return []ChartConfig{
		{
			Name:       "top-10-products",
			Title:      "Top 10 Products Overall",
			Type:       ChartBar,
			Table:      "top-10-products",
			Label:      "title",
			Value:      "numberReviews",
			TopN:       10,
			Color:      "#FF9900",
			XAxisTitle: "Number of Reviews",
			Hover: []HoverField{
				{Column: "numberReviews", Label: "Number of Reviews", Format: "int"},
				{Column: "price_t", Label: "Price", Format: "currency"},
				{Column: "category2_t", Label: "Category 2"},
				{Column: "category3_t", Label: "Category 3"},
			},
		},
	}
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8050,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		API: APIConfig{
			DefaultPageSize: 11,
			MaxPageSize:     500,
			CacheTTL:        5 * time.Minute,
			CacheMaxEntries: 1000,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Data: DataConfig{
			Dir:               "./data",
			RefreshInterval:   time.Minute,
			ReloadMinInterval: 2 * time.Second,
			MaxRows:           0,
			BreakerFailures:   3,
			BreakerTimeout:    time.Minute,
		},
		Tables: defaultTables(),
		Charts: defaultCharts(),
		UI: UIConfig{
			Title:      "Amazon Recommendation Engine",
			Chart:      "top-10-products",
			Directions: DefaultDirections,
			Disclaimer: DefaultDisclaimer,
			Colors: ColorConfig{
				Black:     "#000000",
				White:     "#ffffff",
				VeryLight: "#f2f2f2",
				LightGray: "#cdcdcd",
				Gray:      "#b3b3b3",
				Orange:    "#FF9900",
				Blue:      "#146eb4",
				DarkBlue:  "#232f3e",
			},
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
//
// Lists of tables and charts in a config file replace the defaults as a
// whole; they are not merged element by element.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_port":      "server.port",
	"http_host":      "server.host",
	"server_timeout": "server.timeout",
	"environment":    "server.environment",

	// API mappings
	"default_page_size": "api.default_page_size",
	"max_page_size":     "api.max_page_size",
	"cache_ttl":         "api.cache_ttl",
	"cache_max_entries": "api.cache_max_entries",

	// Security mappings
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"rate_limit_disabled": "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Data mappings
	"data_dir":            "data.dir",
	"refresh_interval":    "data.refresh_interval",
	"reload_min_interval": "data.reload_min_interval",
	"max_rows":            "data.max_rows",
	"duckdb_threads":      "data.duckdb_threads",
	"duckdb_max_memory":   "data.duckdb_max_memory",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DATA_DIR -> data.dir
//   - REFRESH_INTERVAL -> data.refresh_interval
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
