// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quarry/console/frame"
	"quarry/console/query"
)

// FrameProvider returns the in-memory frame backing a direct table.
type FrameProvider interface {
	Frame(ctx context.Context, store string) (*frame.Frame, error)
}

// frameBackend serves direct tables by running the whole pipeline on an
// in-memory frame: filter, group, aggregate, sort, head.
type frameBackend struct {
	c *Component
}

func (b *frameBackend) name() string {
	return "frame"
}

func (b *frameBackend) paginates() bool {
	return false
}

func (b *frameBackend) query(ctx context.Context, p *plan) ([]map[string]any, int, error) {
	conditions, err := conjunctiveConditions(p)
	if err != nil {
		return nil, 0, &CompilationError{err}
	}
	expression := frameExpression(conditions)

	b.c.metrics.backendQueries.WithLabelValues("frame").Inc()
	source, err := b.c.d.Frames.Frame(ctx, p.table.StoreName)
	if err != nil {
		return nil, 0, &BackendExecutionError{Backend: b.name(), Err: err}
	}
	f := copyFrame(source)

	if expression != "" {
		if err := f.Filter(expression); err != nil {
			return nil, 0, &CompilationError{err}
		}
	}

	keys := make([]string, len(p.dimensions))
	for i, d := range p.dimensions {
		keys[i] = d.Name()
		column := d.ResolvedField().Column
		for _, row := range f.Rows {
			row[d.Name()] = frameDimensionValue(row[column], d.Format)
		}
	}

	aggregates := make([]frame.Aggregate, 0, len(p.metrics))
	for _, m := range p.metrics {
		if m.Expression != "" {
			return nil, 0, &CompilationError{fmt.Errorf(
				"metric expression %q not supported on direct table %q",
				m.Expression, p.table.Name)}
		}
		aggregation := m.Aggregation
		if aggregation == query.AggregationCumulativeSum {
			aggregation = query.AggregationSum
		}
		column := ""
		if m.Field != "" {
			column = m.ResolvedField().Column
		}
		aggregates = append(aggregates, frame.Aggregate{
			Name:   m.Name(),
			Column: column,
			Kind:   aggregation,
		})
	}

	f.GroupBy(keys, aggregates)
	f.Sort(p.sorts)
	if p.limit > 0 {
		f.Head(p.limit)
	}
	return f.Rows, len(f.Rows), nil
}

func (b *frameBackend) preview(p *plan) (string, error) {
	conditions, err := conjunctiveConditions(p)
	if err != nil {
		return "", &CompilationError{err}
	}
	expression := frameExpression(conditions)
	if expression == "" {
		expression = "true"
	}
	return fmt.Sprintf("frame(%s).filter(%s).groupby(%s)",
		p.table.StoreName, expression, strings.Join(p.dimensionNames(), ", ")), nil
}

func copyFrame(source *frame.Frame) *frame.Frame {
	f := &frame.Frame{
		Columns: append([]string{}, source.Columns...),
		Rows:    make([]map[string]any, len(source.Rows)),
	}
	for i, row := range source.Rows {
		copied := make(map[string]any, len(row))
		for column, value := range row {
			copied[column] = value
		}
		f.Rows[i] = copied
	}
	return f
}

// frameDimensionValue renders the grouping value of a dimension cell. Dates
// get the canonical bucket label of their truncation.
func frameDimensionValue(value any, format query.TruncFormat) any {
	if format == query.TruncNone {
		return value
	}
	switch value := value.(type) {
	case time.Time:
		return bucketLabel(value, format)
	case string:
		for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05"} {
			if date, err := time.Parse(layout, value); err == nil {
				return bucketLabel(date, format)
			}
		}
		return value
	default:
		return value
	}
}

// frameExpression renders a conjunctive condition list as one boolean
// expression over a frame row.
func frameExpression(conditions []Condition) string {
	parts := make([]string, 0, len(conditions))
	for _, condition := range conditions {
		parts = append(parts, frameCondition(condition))
	}
	return strings.Join(parts, " && ")
}

func frameCondition(c Condition) string {
	switch c.Operator {
	case "=":
		return fmt.Sprintf("%s == %s", c.Field, frameLiteral(c.Value))
	case "in", "not in":
		values := flattenValues(c.Value)
		rendered := make([]string, len(values))
		for i, value := range values {
			rendered[i] = frameLiteral(value)
		}
		expression := fmt.Sprintf("%s in [%s]", c.Field, strings.Join(rendered, ", "))
		if c.Operator == "not in" {
			return fmt.Sprintf("not (%s)", expression)
		}
		return expression
	case "like", "not like":
		expression := fmt.Sprintf("indexOf(string(%s), %s) >= 0",
			c.Field, frameLiteral(toText(c.Value)))
		if c.Operator == "not like" {
			return fmt.Sprintf("not (%s)", expression)
		}
		return expression
	case "ilike", "not ilike":
		expression := fmt.Sprintf("indexOf(lower(string(%s)), %s) >= 0",
			c.Field, frameLiteral(strings.ToLower(toText(c.Value))))
		if c.Operator == "not ilike" {
			return fmt.Sprintf("not (%s)", expression)
		}
		return expression
	default:
		return fmt.Sprintf("%s %s %s", c.Field, c.Operator, frameLiteral(c.Value))
	}
}

func frameLiteral(value any) string {
	switch value := value.(type) {
	case string:
		return fmt.Sprintf("%q", value)
	case bool:
		return fmt.Sprintf("%v", value)
	case nil:
		return "nil"
	default:
		if number, ok := toFloat(value); ok {
			return toText(number)
		}
		return fmt.Sprintf("%q", fmt.Sprintf("%v", value))
	}
}
