// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package charts

import (
	"fmt"
	"math"

	"github.com/tomtom215/recdash/internal/table"
)

// Bin is one histogram bucket. Every bin is half-open [Lower, Upper) except
// the last, which also holds Upper.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// HistogramData is an equal-width histogram of one numeric column.
type HistogramData struct {
	Column  string `json:"column"`
	Bins    []Bin  `json:"bins"`
	Total   int    `json:"total"`
	Skipped int    `json:"skipped"`
}

func buildHistogram(def Definition, t *table.Table) (*HistogramData, error) {
	col, err := t.Column(def.Column)
	if err != nil {
		return nil, err
	}
	if def.Bins < 1 {
		return nil, fmt.Errorf("histogram %s: bins must be positive", def.Name)
	}

	values := make([]float64, 0, t.Len())
	skipped := 0
	for i := 0; i < t.Len(); i++ {
		cell, _ := t.Cell(i, col.Name)
		f, ok := table.CellNumber(cell)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			skipped++
			continue
		}
		values = append(values, f)
	}

	return &HistogramData{
		Column:  col.Name,
		Bins:    Histogram(values, def.Bins),
		Total:   len(values),
		Skipped: skipped,
	}, nil
}

// Histogram splits values into n equal-width bins between their minimum and
// maximum. When every value is equal a single bin of width one is used. No
// values yields no bins.
func Histogram(values []float64, n int) []Bin {
	if len(values) == 0 || n < 1 {
		return []Bin{}
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if lo == hi {
		return []Bin{{Lower: lo, Upper: lo + 1, Count: len(values)}}
	}

	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lower = lo + float64(i)*width
		bins[i].Upper = lo + float64(i+1)*width
	}
	bins[n-1].Upper = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		bins[i].Count++
	}
	return bins
}
