// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package filter

import (
	"strings"
)

// Separator joins the segments of a compound filter.
const Separator = " && "

// Expression is a single parsed condition.
type Expression struct {
	Column   string       `json:"column"`
	Operator OperatorKind `json:"operator"`
	Value    Value        `json:"value"`
}

// String renders the expression in query syntax.
func (e Expression) String() string {
	return "{" + e.Column + "} " + e.Operator.Symbol() + " " + e.Value.quote()
}

// Parse splits query on " && " and parses every segment. An empty or blank
// query yields no expressions. The first malformed segment rejects the whole
// query with a *SegmentError.
func Parse(query string) ([]Expression, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	segments := strings.Split(query, Separator)
	exprs := make([]Expression, 0, len(segments))
	for i, segment := range segments {
		expr, reason := parseSegment(segment)
		if reason != "" {
			return nil, &SegmentError{Index: i, Segment: segment, Reason: reason}
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

// Format renders expressions back into a query that Parse accepts.
func Format(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, Separator)
}

func parseSegment(segment string) (Expression, Reason) {
	if strings.TrimSpace(segment) == "" {
		return Expression{}, ReasonEmptySegment
	}

	kind, left, right, ok := splitOperator(segment)
	if !ok {
		return Expression{}, ReasonNoOperator
	}

	open := strings.Index(left, "{")
	closing := strings.LastIndex(left, "}")
	if open < 0 || closing < open {
		return Expression{}, ReasonMissingBraces
	}
	column := left[open+1 : closing]
	if column == "" {
		return Expression{}, ReasonEmptyColumn
	}

	value, ok := parseValue(right)
	if !ok {
		return Expression{}, ReasonEmptyValue
	}
	return Expression{Column: column, Operator: kind, Value: value}, ""
}

// splitOperator finds the first registry token present in segment and
// splits the segment at its first occurrence.
func splitOperator(segment string) (OperatorKind, string, string, bool) {
	for _, tok := range registry {
		if i := strings.Index(segment, tok.token); i >= 0 {
			return tok.kind, segment[:i], segment[i+len(tok.token):], true
		}
	}
	return splitAlias(segment)
}

// splitAlias accepts the word spellings (ge, le, ...) only when one directly
// follows the closing brace of the column reference.
func splitAlias(segment string) (OperatorKind, string, string, bool) {
	open := strings.Index(segment, "{")
	if open < 0 {
		return 0, "", "", false
	}
	closing := strings.Index(segment[open:], "}")
	if closing < 0 {
		return 0, "", "", false
	}
	closing += open

	rest := strings.TrimLeft(segment[closing+1:], " \t")
	for _, tok := range registry {
		if tok.alias == "" {
			continue
		}
		if strings.HasPrefix(rest, tok.alias+" ") {
			return tok.kind, segment[:closing+1], rest[len(tok.alias)+1:], true
		}
	}
	return 0, "", "", false
}
