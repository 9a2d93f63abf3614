// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

// Package logging provides zerolog-based structured logging for Recdash.
//
// A single process-wide logger is configured once from main and read by every
// package through the level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("table", name).Int("rows", n).Msg("Table loaded")
//
// Request-scoped logging carries the request ID set by the API middleware:
//
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("Rejected filter")
//
// Components that need a named child logger use WithComponent. The
// supervision tree, which speaks log/slog, is bridged through SlogHandler.
//
// Environment variables (mapped by the config package):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
package logging
