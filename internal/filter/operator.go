// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package filter

// OperatorKind identifies the comparison a filter expression performs.
type OperatorKind int

const (
	// GreaterOrEqual matches cells >= value.
	GreaterOrEqual OperatorKind = iota + 1
	// LessOrEqual matches cells <= value.
	LessOrEqual
	// LessThan matches cells < value.
	LessThan
	// GreaterThan matches cells > value.
	GreaterThan
	// NotEqual matches cells != value.
	NotEqual
	// Equal matches cells == value.
	Equal
	// Contains matches cells whose text contains the value text.
	Contains
	// DateStartsWith matches cells whose text starts with the value text.
	DateStartsWith
)

// operatorToken is one entry of the token registry.
type operatorToken struct {
	kind  OperatorKind
	token string
	alias string
	name  string
}

// registry lists operators in match priority order. Multi-character tokens
// come before their single-character prefixes. Word tokens carry a trailing
// space because the filter bar always separates them from the value.
var registry = []operatorToken{
	{kind: GreaterOrEqual, token: ">=", alias: "ge", name: "ge"},
	{kind: LessOrEqual, token: "<=", alias: "le", name: "le"},
	{kind: LessThan, token: "<", alias: "lt", name: "lt"},
	{kind: GreaterThan, token: ">", alias: "gt", name: "gt"},
	{kind: NotEqual, token: "!=", alias: "ne", name: "ne"},
	{kind: Equal, token: "=", alias: "eq", name: "eq"},
	{kind: Contains, token: "contains ", name: "contains"},
	{kind: DateStartsWith, token: "datestartswith ", name: "datestartswith"},
}

// Kinds returns every supported operator in match priority order.
func Kinds() []OperatorKind {
	kinds := make([]OperatorKind, len(registry))
	for i, tok := range registry {
		kinds[i] = tok.kind
	}
	return kinds
}

// String returns the short name of the operator (ge, le, lt, gt, ne, eq,
// contains, datestartswith).
func (k OperatorKind) String() string {
	for _, tok := range registry {
		if tok.kind == k {
			return tok.name
		}
	}
	return "unknown"
}

// Symbol returns the token used to write the operator in a query.
func (k OperatorKind) Symbol() string {
	for _, tok := range registry {
		if tok.kind == k {
			if tok.alias == "" {
				return tok.name
			}
			return tok.token
		}
	}
	return ""
}

// IsOrdering reports whether the operator compares values by equality or
// order, as opposed to matching on text.
func (k OperatorKind) IsOrdering() bool {
	switch k {
	case GreaterOrEqual, LessOrEqual, LessThan, GreaterThan, NotEqual, Equal:
		return true
	default:
		return false
	}
}

// MarshalText renders the operator name, so expressions serialize readably.
func (k OperatorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
