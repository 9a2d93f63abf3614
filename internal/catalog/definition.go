// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package catalog

import (
	"fmt"

	"github.com/tomtom215/recdash/internal/config"
	"github.com/tomtom215/recdash/internal/reshape"
	"github.com/tomtom215/recdash/internal/snapshot"
)

// Definition describes how one table is built.
type Definition struct {
	Name  string
	Title string
	// Source is set for tables read from a snapshot file.
	Source *snapshot.Source
	// From names the parent table of a derived table.
	From   string
	Steps  []reshape.Step
	Hidden bool
}

// Dependencies returns the tables d reads from.
func (d Definition) Dependencies() []string {
	var deps []string
	if d.From != "" {
		deps = append(deps, d.From)
	}
	for _, s := range d.Steps {
		if j, ok := s.(reshape.Join); ok {
			deps = append(deps, j.Table)
		}
	}
	return deps
}

// DefinitionsFromConfig converts validated table configuration into
// definitions in build order. Text columns become a leading as_text step.
func DefinitionsFromConfig(cfg *config.Config) ([]Definition, error) {
	order, err := config.BuildOrder(cfg.Tables)
	if err != nil {
		return nil, err
	}

	defs := make([]Definition, 0, len(order))
	for _, name := range order {
		tc, _ := cfg.Table(name)
		d := Definition{
			Name:   tc.Name,
			Title:  tc.DisplayTitle(),
			From:   tc.From,
			Hidden: tc.Hidden,
		}
		if tc.File != "" {
			d.Source = &snapshot.Source{
				Name:    tc.Name,
				Path:    cfg.ResolvePath(tc.File),
				Format:  snapshot.Format(tc.Format),
				Sheet:   tc.Sheet,
				Columns: tc.Columns,
			}
		}
		if len(tc.TextColumns) > 0 {
			d.Steps = append(d.Steps, reshape.AsText{Columns: tc.TextColumns})
		}
		for i, sc := range tc.Steps {
			step, err := StepFromConfig(sc)
			if err != nil {
				return nil, fmt.Errorf("table %s step %d: %w", tc.Name, i, err)
			}
			d.Steps = append(d.Steps, step)
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// StepFromConfig converts one configured step.
func StepFromConfig(sc config.StepConfig) (reshape.Step, error) {
	switch sc.Type {
	case config.StepSelect:
		return reshape.Select{Columns: sc.Columns}, nil
	case config.StepRename:
		return reshape.Rename{Mapping: sc.Mapping}, nil
	case config.StepTruncate:
		return reshape.Truncate{Column: sc.Column, Length: sc.Length}, nil
	case config.StepAsText:
		return reshape.AsText{Columns: sc.Columns}, nil
	case config.StepFilter:
		return reshape.Filter{Query: sc.Query}, nil
	case config.StepSort:
		return reshape.Sort{Column: sc.Column, Descending: sc.Descending}, nil
	case config.StepHead:
		return reshape.Head{N: sc.N}, nil
	case config.StepCountBy:
		return reshape.CountBy{Column: sc.Column, As: sc.As}, nil
	case config.StepJoin:
		return reshape.Join{Table: sc.Table, On: sc.On, Columns: sc.Columns}, nil
	default:
		return nil, fmt.Errorf("%w: unknown step type %q", reshape.ErrInvalidStep, sc.Type)
	}
}
