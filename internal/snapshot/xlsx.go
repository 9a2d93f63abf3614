// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package snapshot

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/recdash/internal/table"
)

// XLSXLoader reads the first (or configured) worksheet of an Excel file.
// The first row is the header. A column whose non-empty cells all parse as
// numbers becomes numeric; empty cells are nulls.
type XLSXLoader struct {
	limit rowLimit
}

// Load implements Loader.
func (l *XLSXLoader) Load(ctx context.Context, src Source) (*table.Table, error) {
	_, comp, err := Detect(src.Path)
	if err != nil && src.Format == "" {
		return nil, err
	}
	r, err := openFile(src.Path, comp)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrEmptySnapshot)
	}
	sheet := sheets[0]
	if src.Sheet != "" {
		if !slices.Contains(sheets, src.Sheet) {
			return nil, fmt.Errorf("sheet not found: %s", src.Sheet)
		}
		sheet = src.Sheet
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s is empty", ErrEmptySnapshot, sheet)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header := headerNames(rows[0])
	body := rows[1:]
	if err := l.limit.check(len(body)); err != nil {
		return nil, err
	}
	return table.New(src.Name, header, convertSheet(header, body))
}

// headerNames fills blank or repeated headers the way dataframe readers do
// ("Unnamed: 3", "price.1").
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = h + "." + strconv.Itoa(n+1)
		} else {
			seen[h] = 0
		}
		names[i] = h
	}
	return names
}

func convertSheet(header []string, body [][]string) [][]any {
	numeric := make([]bool, len(header))
	for c := range header {
		numeric[c] = true
		for _, row := range body {
			if c >= len(row) || row[c] == "" {
				continue
			}
			if _, err := strconv.ParseFloat(row[c], 64); err != nil {
				numeric[c] = false
				break
			}
		}
	}

	out := make([][]any, len(body))
	for r, row := range body {
		cells := make([]any, len(header))
		for c := range header {
			if c >= len(row) || row[c] == "" {
				continue
			}
			if numeric[c] {
				f, _ := strconv.ParseFloat(row[c], 64)
				cells[c] = f
			} else {
				cells[c] = row[c]
			}
		}
		out[r] = cells
	}
	return out
}
