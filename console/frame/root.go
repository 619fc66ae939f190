// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package frame implements the in-memory tabular frame used for
// script-backed tables, with a filter, group, aggregate, sort and head
// pipeline replacing SQL.
package frame

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"quarry/console/query"
)

// Frame is an ordered set of rows sharing a column set.
type Frame struct {
	Columns []string
	Rows    []map[string]any
}

// Aggregate describes one aggregated output column of a group-by.
type Aggregate struct {
	// Name of the output column.
	Name string
	// Column aggregated. Ignored for a bare count.
	Column string
	// Kind of aggregation.
	Kind query.Aggregation
}

// Filter keeps the rows matching a boolean expression evaluated with the row
// as environment. A row missing a referenced column does not match.
func (f *Frame) Filter(expression string) error {
	program, err := expr.Compile(expression, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return fmt.Errorf("invalid frame predicate %q: %w", expression, err)
	}
	kept := f.Rows[:0]
	for _, row := range f.Rows {
		if matchRow(program, row) {
			kept = append(kept, row)
		}
	}
	f.Rows = kept
	return nil
}

func matchRow(program *vm.Program, row map[string]any) bool {
	output, err := expr.Run(program, row)
	if err != nil {
		return false
	}
	result, ok := output.(bool)
	return ok && result
}

// GroupBy aggregates the frame over the given key columns, preserving the
// order of first appearance of each group.
func (f *Frame) GroupBy(keys []string, aggregates []Aggregate) {
	type group struct {
		row       map[string]any
		sums      map[string]float64
		counts    map[string]int
		distincts map[string]map[string]struct{}
	}
	groups := map[string]*group{}
	order := []string{}
	for _, row := range f.Rows {
		key := ""
		for _, k := range keys {
			key += fmt.Sprintf("%v\x00", row[k])
		}
		g, ok := groups[key]
		if !ok {
			g = &group{
				row:       make(map[string]any, len(keys)+len(aggregates)),
				sums:      make(map[string]float64),
				counts:    make(map[string]int),
				distincts: make(map[string]map[string]struct{}),
			}
			for _, k := range keys {
				g.row[k] = row[k]
			}
			groups[key] = g
			order = append(order, key)
		}
		for _, agg := range aggregates {
			switch agg.Kind {
			case query.AggregationCount:
				g.counts[agg.Name]++
			case query.AggregationCountDistinct:
				set, ok := g.distincts[agg.Name]
				if !ok {
					set = make(map[string]struct{})
					g.distincts[agg.Name] = set
				}
				set[fmt.Sprintf("%v", row[agg.Column])] = struct{}{}
			default:
				if value, ok := asNumber(row[agg.Column]); ok {
					g.sums[agg.Name] += value
					g.counts[agg.Name]++
				}
			}
		}
	}

	columns := append([]string{}, keys...)
	rows := make([]map[string]any, 0, len(order))
	for _, key := range order {
		g := groups[key]
		for _, agg := range aggregates {
			switch agg.Kind {
			case query.AggregationCount:
				g.row[agg.Name] = float64(g.counts[agg.Name])
			case query.AggregationCountDistinct:
				g.row[agg.Name] = float64(len(g.distincts[agg.Name]))
			case query.AggregationAvg:
				if g.counts[agg.Name] > 0 {
					g.row[agg.Name] = g.sums[agg.Name] / float64(g.counts[agg.Name])
				} else {
					g.row[agg.Name] = float64(0)
				}
			default:
				g.row[agg.Name] = g.sums[agg.Name]
			}
		}
		rows = append(rows, g.row)
	}
	for _, agg := range aggregates {
		columns = append(columns, agg.Name)
	}
	f.Columns = columns
	f.Rows = rows
}

// Sort orders the rows by the given sorts, numerically when both values are
// numbers and lexicographically otherwise. The sort is stable.
func (f *Frame) Sort(sorts []query.Sort) {
	if len(sorts) == 0 {
		return
	}
	sort.SliceStable(f.Rows, func(i, j int) bool {
		for _, s := range sorts {
			c := compareValues(f.Rows[i][s.Field], f.Rows[j][s.Field])
			if c == 0 {
				continue
			}
			if s.Direction == query.DirectionDesc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// Head truncates the frame to the first n rows. A non-positive n keeps
// everything.
func (f *Frame) Head(n int) {
	if n > 0 && len(f.Rows) > n {
		f.Rows = f.Rows[:n]
	}
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		return parsed, err == nil
	}
	return 0, false
}

func compareValues(a, b any) int {
	na, oka := asNumber(a)
	nb, okb := asNumber(b)
	if oka && okb {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	}
	sa := fmt.Sprintf("%v", a)
	sb := fmt.Sprintf("%v", b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}
