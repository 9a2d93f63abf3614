// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

// Package charts turns catalog tables into chart figures: horizontal ranking
// bars with formatted hover text, and equal-width histograms.
package charts

import (
	"errors"
	"fmt"

	"github.com/tomtom215/recdash/internal/config"
	"github.com/tomtom215/recdash/internal/table"
)

// ErrUnsupportedType is returned for chart types other than bar and histogram.
var ErrUnsupportedType = errors.New("unsupported chart type")

// Chart types.
const (
	TypeBar       = config.ChartBar
	TypeHistogram = config.ChartHistogram
)

// DefaultColor is the bar and histogram fill.
const DefaultColor = "#FF9900"

// barMarginLeft leaves room for long product titles on the category axis.
const barMarginLeft = 500

// Hover formats.
const (
	FormatText     = "text"
	FormatInt      = "int"
	FormatCurrency = "currency"
)

// HoverField is one line of bar hover text.
type HoverField struct {
	Column string `json:"column"`
	Label  string `json:"label"`
	Format string `json:"format"`
}

// Definition describes one chart.
type Definition struct {
	Name       string       `json:"name"`
	Title      string       `json:"title"`
	Type       string       `json:"type"`
	Table      string       `json:"table"`
	Label      string       `json:"label,omitempty"`
	Value      string       `json:"value,omitempty"`
	TopN       int          `json:"top_n,omitempty"`
	Descending bool         `json:"descending,omitempty"`
	Hover      []HoverField `json:"hover,omitempty"`
	Column     string       `json:"column,omitempty"`
	Bins       int          `json:"bins,omitempty"`
	Color      string       `json:"color"`
	XAxisTitle string       `json:"x_axis_title,omitempty"`
	YAxisTitle string       `json:"y_axis_title,omitempty"`
}

// FromConfig converts configured charts, filling default colors.
func FromConfig(cfgs []config.ChartConfig) []Definition {
	defs := make([]Definition, len(cfgs))
	for i, c := range cfgs {
		hover := make([]HoverField, len(c.Hover))
		for j, h := range c.Hover {
			format := h.Format
			if format == "" {
				format = FormatText
			}
			label := h.Label
			if label == "" {
				label = h.Column
			}
			hover[j] = HoverField{Column: h.Column, Label: label, Format: format}
		}
		color := c.Color
		if color == "" {
			color = DefaultColor
		}
		title := c.Title
		if title == "" {
			title = c.Name
		}
		defs[i] = Definition{
			Name:       c.Name,
			Title:      title,
			Type:       c.Type,
			Table:      c.Table,
			Label:      c.Label,
			Value:      c.Value,
			TopN:       c.TopN,
			Descending: c.Descending,
			Hover:      hover,
			Column:     c.Column,
			Bins:       c.Bins,
			Color:      color,
			XAxisTitle: c.XAxisTitle,
			YAxisTitle: c.YAxisTitle,
		}
	}
	return defs
}

// Layout carries presentation hints for the renderer.
type Layout struct {
	Title      string `json:"title"`
	Color      string `json:"color"`
	XAxisTitle string `json:"x_axis_title,omitempty"`
	YAxisTitle string `json:"y_axis_title,omitempty"`
	MarginLeft int    `json:"margin_left,omitempty"`
}

// Figure is a built chart.
type Figure struct {
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Table     string         `json:"table"`
	Layout    Layout         `json:"layout"`
	Bar       *BarData       `json:"bar,omitempty"`
	Histogram *HistogramData `json:"histogram,omitempty"`
}

// Build computes the figure for def over t.
func Build(def Definition, t *table.Table) (Figure, error) {
	fig := Figure{
		Name:  def.Name,
		Type:  def.Type,
		Table: t.Name(),
		Layout: Layout{
			Title:      def.Title,
			Color:      def.Color,
			XAxisTitle: def.XAxisTitle,
			YAxisTitle: def.YAxisTitle,
		},
	}

	switch def.Type {
	case TypeBar:
		bar, err := buildBar(def, t)
		if err != nil {
			return Figure{}, err
		}
		fig.Bar = bar
		fig.Layout.MarginLeft = barMarginLeft
	case TypeHistogram:
		hist, err := buildHistogram(def, t)
		if err != nil {
			return Figure{}, err
		}
		fig.Histogram = hist
	default:
		return Figure{}, fmt.Errorf("%w: %q", ErrUnsupportedType, def.Type)
	}
	return fig, nil
}
