// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

/*
Package config provides centralized configuration management for Recdash.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. The defaults reproduce the original
recommendation dashboard, so the server runs with nothing but a data
directory holding product_recommendations.parquet, user_recommendations.parquet
and product_metadata.parquet.

# Configuration File

The file is read from CONFIG_PATH, or the first of config.yaml, config.yml,
/etc/recdash/config.yaml. Tables and charts can only be defined in the file:

	data:
	  dir: /srv/recdash
	  refresh_interval: 30s
	tables:
	  - name: products
	    file: Sample_Mapped_Product_Data.xlsx
	    text_columns: [Product Code, Mapped Product]
	  - name: camera-products
	    from: products
	    steps:
	      - {type: filter, query: '{category2_t} contains Camera & Photo'}
	      - {type: count_by, column: asin}

# Environment Variables

Server:
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8050)
  - SERVER_TIMEOUT: Read/write timeout (default: 30s)
  - ENVIRONMENT: development or production

API:
  - DEFAULT_PAGE_SIZE: Rows per page when none is requested (default: 11)
  - MAX_PAGE_SIZE: Largest accepted page size (default: 500)
  - CACHE_TTL: Page cache lifetime, 0 disables (default: 5m)

Security:
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, RATE_LIMIT_DISABLED

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: include caller file and line

Data:
  - DATA_DIR: Base directory for relative table files (default: ./data)
  - REFRESH_INTERVAL: Source polling interval, 0 disables (default: 1m)
  - RELOAD_MIN_INTERVAL: Minimum spacing of rebuilds (default: 2s)
  - MAX_ROWS: Reject larger snapshots, 0 is unlimited
  - DUCKDB_THREADS, DUCKDB_MAX_MEMORY: Parquet/CSV reader limits

# Validation

Validate rejects out-of-range values, duplicate or unknown table and chart
names, tables with both or neither of file and from, unknown step types,
filter steps whose query does not parse, and dependency cycles between
derived tables.
*/
package config
