// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package charts

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/tomtom215/recdash/internal/table"
)

// BarData is a horizontal bar series. Index i of every slice describes one
// bar, drawn bottom to top.
type BarData struct {
	Orientation string       `json:"orientation"`
	Labels      []string     `json:"labels"`
	Values      []float64    `json:"values"`
	Hover       [][]HoverRow `json:"hover,omitempty"`
}

// HoverRow is one formatted hover line.
type HoverRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type barPoint struct {
	row   int
	label string
	value float64
}

// buildBar ranks rows by value, keeps the top N and orders the bars
// ascending so the largest is drawn last (at the top). Rows with a null or
// non-numeric value are skipped.
func buildBar(def Definition, t *table.Table) (*BarData, error) {
	labelCol, err := t.Column(def.Label)
	if err != nil {
		return nil, err
	}
	valueCol, err := t.Column(def.Value)
	if err != nil {
		return nil, err
	}
	for _, h := range def.Hover {
		if _, err := t.Column(h.Column); err != nil {
			return nil, err
		}
	}

	points := make([]barPoint, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		v, _ := t.Cell(i, valueCol.Name)
		f, ok := table.CellNumber(v)
		if !ok || math.IsNaN(f) {
			continue
		}
		l, _ := t.Cell(i, labelCol.Name)
		text, _ := table.CellText(l)
		points = append(points, barPoint{row: i, label: text, value: f})
	}

	slices.SortStableFunc(points, func(a, b barPoint) int {
		return cmp.Compare(b.value, a.value)
	})
	if def.TopN > 0 && len(points) > def.TopN {
		points = points[:def.TopN]
	}
	if !def.Descending {
		slices.Reverse(points)
	}

	bar := &BarData{
		Orientation: "h",
		Labels:      make([]string, len(points)),
		Values:      make([]float64, len(points)),
	}
	if len(def.Hover) > 0 {
		bar.Hover = make([][]HoverRow, len(points))
	}
	for i, p := range points {
		bar.Labels[i] = p.label
		bar.Values[i] = p.value
		if bar.Hover == nil {
			continue
		}
		rows := make([]HoverRow, len(def.Hover))
		for j, h := range def.Hover {
			cell, _ := t.Cell(p.row, h.Column)
			rows[j] = HoverRow{Label: h.Label, Value: FormatHover(cell, h.Format)}
		}
		bar.Hover[i] = rows
	}
	return bar, nil
}

// FormatHover renders a cell for hover text. "int" truncates toward zero,
// "currency" renders dollars with two decimals, anything else is plain text.
// Nulls render empty; non-numeric cells fall back to text.
func FormatHover(cell any, format string) string {
	switch format {
	case FormatInt:
		if f, ok := table.CellNumber(cell); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return fmt.Sprintf("%d", int64(math.Trunc(f)))
		}
	case FormatCurrency:
		if f, ok := table.CellNumber(cell); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return fmt.Sprintf("$%.2f", f)
		}
	}
	text, _ := table.CellText(cell)
	return text
}
