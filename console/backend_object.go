// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"context"
	"fmt"
	"strings"

	"quarry/common/schema"
	"quarry/console/daterange"
	"quarry/console/query"
)

// Condition is one clause of an object store domain. Clauses combine
// conjunctively.
type Condition struct {
	Field    string
	Operator string
	Value    any
}

// ReadGroupRequest describes an aggregated read on an object store model.
// Fields are aggregate specifications of the form "alias:agg(column)", or
// "alias:count(*)" for a bare row count. GroupBy entries are column names,
// optionally suffixed with ":day", ":week", ":month", ":quarter" or
// ":year" for date columns.
type ReadGroupRequest struct {
	Model   string
	Domain  []Condition
	Fields  []string
	GroupBy []string
	Limit   int
	OrderBy string
}

// ObjectStore executes aggregated reads against a model-based store.
type ObjectStore interface {
	ReadGroup(ctx context.Context, req ReadGroupRequest) ([]map[string]any, error)
}

// objectBackend serves object tables through an object store. The domain is
// conjunctive: OR connectors and brackets of the clause list are not
// expressible and compile to an error.
type objectBackend struct {
	c *Component
}

func (b *objectBackend) name() string {
	return "object"
}

func (b *objectBackend) paginates() bool {
	return false
}

func (b *objectBackend) query(ctx context.Context, p *plan) ([]map[string]any, int, error) {
	req, err := b.compile(p)
	if err != nil {
		return nil, 0, &CompilationError{err}
	}
	b.c.metrics.backendQueries.WithLabelValues("object").Inc()
	rows, err := b.c.d.ObjectStore.ReadGroup(ctx, req)
	if err != nil {
		return nil, 0, &BackendExecutionError{Backend: b.name(), Err: err}
	}
	rows = b.relabel(p, rows)
	return rows, len(rows), nil
}

func (b *objectBackend) preview(p *plan) (string, error) {
	req, err := b.compile(p)
	if err != nil {
		return "", &CompilationError{err}
	}
	return fmt.Sprintf("read_group(%s, domain=%d conditions, fields=[%s], groupby=[%s])",
		req.Model, len(req.Domain),
		strings.Join(req.Fields, ", "), strings.Join(req.GroupBy, ", ")), nil
}

func (b *objectBackend) compile(p *plan) (ReadGroupRequest, error) {
	req := ReadGroupRequest{
		Model: p.table.Model,
		Limit: p.limit,
	}

	for _, m := range p.metrics {
		if m.Expression != "" {
			return ReadGroupRequest{}, fmt.Errorf(
				"metric expression %q not supported on object table %q",
				m.Expression, p.table.Name)
		}
		aggregation := m.Aggregation
		if aggregation == query.AggregationCumulativeSum {
			aggregation = query.AggregationSum
		}
		if m.Field == "" {
			req.Fields = append(req.Fields, fmt.Sprintf("%s:count(*)", m.Name()))
			continue
		}
		req.Fields = append(req.Fields, fmt.Sprintf("%s:%s(%s)",
			m.Name(), aggregation, m.ResolvedField().Column))
	}

	for _, d := range p.dimensions {
		req.GroupBy = append(req.GroupBy, objectGroupKey(d))
	}

	domain, err := conjunctiveConditions(p)
	if err != nil {
		return ReadGroupRequest{}, err
	}
	req.Domain = domain

	orders := make([]string, 0, len(p.sorts))
	for _, s := range p.sorts {
		column, ok := b.sortColumn(p, s.Field)
		if !ok {
			continue
		}
		direction := "asc"
		if s.Direction == query.DirectionDesc {
			direction = "desc"
		}
		orders = append(orders, fmt.Sprintf("%s %s", column, direction))
	}
	req.OrderBy = strings.Join(orders, ", ")
	return req, nil
}

// conjunctiveConditions flattens every request filter into one conjunctive
// condition list, shared by the object and frame backends.
func conjunctiveConditions(p *plan) ([]Condition, error) {
	domain := []Condition{}
	resolve := func(name string) (schema.Field, error) {
		if field, ok := p.aliases[name]; ok {
			return field, nil
		}
		if field, ok := p.table.LookupField(name); ok {
			return field, nil
		}
		return schema.Field{}, fmt.Errorf("%w: %q in table %q",
			query.ErrUnresolvedFilterField, name, p.table.Name)
	}

	for _, f := range p.filters.static {
		if f.Connector == query.ConnectorOr || f.OpenBracket || f.CloseBracket {
			return nil, fmt.Errorf(
				"disjunctive filter on %q not supported on object table %q",
				f.Field, p.table.Name)
		}
		domain = append(domain, Condition{
			Field:    f.ResolvedField().Column,
			Operator: f.Operator.String(),
			Value:    f.Value,
		})
	}

	for _, f := range p.filters.dynamic {
		if f.Variable != "" {
			continue
		}
		field, err := resolve(f.Field)
		if err != nil {
			return nil, err
		}
		operator := f.Operator
		if operator == query.OperatorUnknown {
			operator = query.OperatorEqual
		}
		var value any = f.Values
		if len(f.Values) == 1 {
			value = f.Values[0]
		} else if operator == query.OperatorEqual {
			operator = query.OperatorIn
		}
		domain = append(domain, Condition{field.Column, operator.String(), value})
	}

	for _, f := range p.filters.action {
		field, err := resolve(f.Field)
		if err != nil {
			return nil, err
		}
		operator := f.Operator
		if operator == query.OperatorUnknown {
			operator = query.OperatorEqual
		}
		domain = append(domain, Condition{field.Column, operator.String(), f.Value})
	}

	for _, f := range p.filters.temp {
		field, err := resolve(f.Field)
		if err != nil {
			return nil, err
		}
		switch f.Kind {
		case TempFilterStringSearch:
			if len(f.Values) > 0 {
				domain = append(domain, Condition{field.Column, "in", f.Values})
			}
		case TempFilterDateRange:
			if f.Start != "" {
				domain = append(domain, Condition{field.Column, ">=",
					objectDateLiteral(field, f.Start, false, p.context.Timezone)})
			}
			if f.End != "" {
				domain = append(domain, Condition{field.Column, "<=",
					objectDateLiteral(field, f.End, true, p.context.Timezone)})
			}
		case TempFilterDateFormat:
			rng, err := daterange.Resolve(f.Keyword, p.now)
			if err != nil {
				return nil, err
			}
			domain = append(domain,
				Condition{field.Column, ">=",
					objectDateLiteral(field, rng.StartDate(), false, p.context.Timezone)},
				Condition{field.Column, "<=",
					objectDateLiteral(field, rng.EndDate(), true, p.context.Timezone)})
		default:
			return nil, fmt.Errorf("unknown temp filter kind %q", f.Kind)
		}
	}

	if df := p.filters.date; df != nil {
		field := df.ResolvedField()
		startDate, endDate := df.Start, df.End
		if df.Keyword != "custom" {
			rng, err := daterange.Resolve(df.Keyword, p.now)
			if err != nil {
				return nil, err
			}
			startDate, endDate = rng.StartDate(), rng.EndDate()
		}
		if endDate != "" {
			domain = append(domain, Condition{field.Column, "<=",
				objectDateLiteral(field, endDate, true, p.context.Timezone)})
		}
		// In until mode the lower bound is applied by post-filtering.
		if startDate != "" && df.Mode != query.BoundaryUntil {
			domain = append(domain, Condition{field.Column, ">=",
				objectDateLiteral(field, startDate, false, p.context.Timezone)})
		}
	}
	return domain, nil
}

func (b *objectBackend) sortColumn(p *plan, name string) (string, bool) {
	for _, m := range p.metrics {
		if m.Name() == name {
			return m.Name(), true
		}
	}
	for _, d := range p.dimensions {
		if d.Name() == name {
			return d.ResolvedField().Column, true
		}
	}
	return "", false
}

// relabel renames the store keys to the result column names, flattens
// (id, label) pairs and renders canonical bucket labels for truncated
// dates.
func (b *objectBackend) relabel(p *plan, rows []map[string]any) []map[string]any {
	relabeled := make([]map[string]any, len(rows))
	for i, row := range rows {
		out := make(map[string]any, len(p.dimensions)+len(p.metrics))
		for _, d := range p.dimensions {
			value := row[objectGroupKey(d)]
			if pair, ok := value.([]any); ok && len(pair) == 2 {
				value = pair[1]
			}
			if d.Format != query.TruncNone {
				if label, ok := value.(string); ok {
					if date, parsed := parseBucketDate(label); parsed {
						value = bucketLabel(date, d.Format)
					}
				}
			}
			out[d.Name()] = value
		}
		for _, m := range p.metrics {
			out[m.Name()] = row[m.Name()]
		}
		relabeled[i] = out
	}
	return relabeled
}

func objectGroupKey(d query.Dimension) string {
	column := d.ResolvedField().Column
	if d.Format != query.TruncNone {
		return fmt.Sprintf("%s:%s", column, d.Format)
	}
	return column
}

func objectDateLiteral(field schema.Field, date string, endOfDay bool, tz string) string {
	if field.Type != schema.FieldTypeDatetime || len(date) != len("2006-01-02") {
		return date
	}
	timestamp := date + " 00:00:00"
	if endOfDay {
		timestamp = date + " 23:59:59"
	}
	if converted, err := daterange.ConvertToUTC(timestamp, tz); err == nil {
		return converted
	}
	return timestamp
}
