// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package filter

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ValueKind distinguishes string and numeric filter values.
type ValueKind int

const (
	// KindString values compare lexicographically against text cells.
	KindString ValueKind = iota + 1
	// KindNumber values compare numerically against numeric cells.
	KindNumber
)

// Value is the right-hand side of a filter expression.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64

	// raw keeps a number exactly as typed so text operators match "328"
	// rather than a reformatted float.
	raw string
}

// String returns a string-typed value.
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// IsNumber reports whether the value parsed as a number.
func (v Value) IsNumber() bool {
	return v.Kind == KindNumber
}

// Text returns the textual form used by the Contains and DateStartsWith
// operators.
func (v Value) Text() string {
	if v.Kind == KindNumber {
		if v.raw != "" {
			return v.raw
		}
		return FormatNumber(v.Num)
	}
	return v.Str
}

// Interface returns the value as a string or float64.
func (v Value) Interface() any {
	if v.Kind == KindNumber {
		return v.Num
	}
	return v.Str
}

// Equal reports whether two values have the same kind and content. The typed
// text of a number is ignored.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	if v.Kind == KindNumber {
		return v.Num == other.Num || (math.IsNaN(v.Num) && math.IsNaN(other.Num))
	}
	return v.Str == other.Str
}

// MarshalJSON encodes numbers as JSON numbers and strings as JSON strings.
// Non-finite numbers fall back to their text.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindNumber && (math.IsNaN(v.Num) || math.IsInf(v.Num, 0)) {
		return json.Marshal(v.Text())
	}
	return json.Marshal(v.Interface())
}

// quote renders the value so that Parse reads it back with the same kind.
func (v Value) quote() string {
	if v.Kind == KindNumber {
		return v.Text()
	}
	return `"` + strings.ReplaceAll(v.Str, `"`, `\"`) + `"`
}

// FormatNumber renders a float the way table cells display it: integral
// values without a fractional part, everything else in shortest form.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// parseValue interprets the text to the right of an operator.
func parseValue(text string) (Value, bool) {
	v := strings.TrimSpace(text)
	if v == "" {
		return Value{}, false
	}

	if len(v) >= 2 {
		q := v[0]
		if (q == '\'' || q == '"' || q == '`') && v[len(v)-1] == q {
			inner := v[1 : len(v)-1]
			return String(strings.ReplaceAll(inner, `\`+string(q), string(q))), true
		}
	}

	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return Value{Kind: KindNumber, Num: f, raw: v}, true
	}
	return String(v), true
}
