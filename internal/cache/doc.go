// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

/*
Package cache provides a thread-safe in-memory cache with TTL expiration.

The API layer keeps rendered table pages and chart figures here so repeated
requests for the same page skip filtering and sorting. Keys embed the catalog
version, and the refresh service clears the cache after every published
reload, so a stale page is never served across a snapshot change.

# Usage

	c := cache.New("table_page", 5*time.Minute, 1000)
	defer c.Close()

	key := cache.GenerateKey("page", pageParams)
	if v, ok := c.Get(key); ok {
	    return v.(table.Page)
	}
	c.Set(key, page)

# Bounds

When maxEntries is positive and the cache is full, Set evicts the entry
closest to expiry. Expired entries are removed lazily on Get and by a
background sweep that stops on Close.

# Metrics

Every lookup is reported as a hit or miss under the cache name, and the
current size is exported as a gauge.
*/
package cache
