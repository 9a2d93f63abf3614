// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package table

import (
	"errors"
	"fmt"
)

// Sentinel errors for table construction and evaluation.
var (
	ErrUnknownColumn       = errors.New("unknown column")
	ErrInvalidPage         = errors.New("invalid page request")
	ErrUnsupportedOperator = errors.New("unsupported operator")
	ErrDuplicateColumn     = errors.New("duplicate column")
	ErrRowWidth            = errors.New("row width does not match columns")
)

// ColumnError reports a column that does not exist in a table.
type ColumnError struct {
	Table  string
	Column string
}

func (e *ColumnError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("unknown column %q", e.Column)
	}
	return fmt.Sprintf("table %q has no column %q", e.Table, e.Column)
}

func (e *ColumnError) Unwrap() error {
	return ErrUnknownColumn
}
