// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package table

import (
	"encoding"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/recdash/internal/filter"
)

// NormalizeCell converts a loader-produced value into nil, string or float64.
// NaN becomes nil, matching how dataframes represent missing numbers.
func NormalizeCell(v any) any {
	switch c := v.(type) {
	case nil:
		return nil
	case string:
		return c
	case float64:
		if math.IsNaN(c) {
			return nil
		}
		return c
	case float32:
		return NormalizeCell(float64(c))
	case int:
		return float64(c)
	case int8:
		return float64(c)
	case int16:
		return float64(c)
	case int32:
		return float64(c)
	case int64:
		return float64(c)
	case uint:
		return float64(c)
	case uint8:
		return float64(c)
	case uint16:
		return float64(c)
	case uint32:
		return float64(c)
	case uint64:
		return float64(c)
	case bool:
		return strconv.FormatBool(c)
	case []byte:
		return string(c)
	case json.Number:
		if f, err := c.Float64(); err == nil {
			return f
		}
		return c.String()
	case time.Time:
		return formatTime(c)
	case *time.Time:
		if c == nil {
			return nil
		}
		return formatTime(*c)
	case interface{ Float64() float64 }:
		return NormalizeCell(c.Float64())
	case fmt.Stringer:
		return c.String()
	case encoding.TextMarshaler:
		b, err := c.MarshalText()
		if err != nil {
			return nil
		}
		return string(b)
	default:
		return fmt.Sprint(c)
	}
}

// formatTime renders dates as YYYY-MM-DD and timestamps as RFC 3339 so that
// datestartswith prefixes like "2019-11" work on either.
func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

// CellText returns the textual form of a normalized cell. Null cells have no
// text.
func CellText(cell any) (string, bool) {
	switch c := cell.(type) {
	case string:
		return c, true
	case float64:
		return filter.FormatNumber(c), true
	default:
		return "", false
	}
}

// CellNumber returns the numeric value of a normalized cell.
func CellNumber(cell any) (float64, bool) {
	f, ok := cell.(float64)
	return f, ok
}
