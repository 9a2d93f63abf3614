// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package filter

import (
	"errors"
	"fmt"
)

// ErrUnparseableSegment is wrapped by every parse failure.
var ErrUnparseableSegment = errors.New("unparseable filter segment")

// Reason is a stable code describing why a segment was rejected.
type Reason string

const (
	ReasonEmptySegment  Reason = "empty_segment"
	ReasonNoOperator    Reason = "no_operator"
	ReasonMissingBraces Reason = "missing_braces"
	ReasonEmptyColumn   Reason = "empty_column"
	ReasonEmptyValue    Reason = "empty_value"
)

var reasonMessages = map[Reason]string{
	ReasonEmptySegment:  "segment is empty",
	ReasonNoOperator:    "no recognized operator",
	ReasonMissingBraces: "column must be written as {name}",
	ReasonEmptyColumn:   "column name is empty",
	ReasonEmptyValue:    "value is missing",
}

// SegmentError describes the first segment of a query that could not be
// parsed.
type SegmentError struct {
	Index   int
	Segment string
	Reason  Reason
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("filter segment %d %q: %s", e.Index, e.Segment, reasonMessages[e.Reason])
}

func (e *SegmentError) Unwrap() error {
	return ErrUnparseableSegment
}
