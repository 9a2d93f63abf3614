// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

// Package validation provides struct validation using go-playground/validator v10.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - The custom "slug" tag for table and chart names
//   - Error translation to human-readable messages
//   - APIError conversion matching the VALIDATION_ERROR response format
//
// # Quick Start
//
//	type reloadRequest struct {
//	    Force bool
//	    Table string `validate:"omitempty,slug"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    api.NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
//	    return
//	}
//
// # Error Format
//
// A single failing field yields details with "field", "tag" and "value".
// Several failing fields yield a "fields" list, each with "field", "tag" and
// "message", and a message joining all of them.
package validation
