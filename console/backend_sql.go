// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"context"
	"fmt"
	"strings"

	"quarry/common/schema"
	"quarry/console/query"
)

// SQLExecutor runs a query against a named SQL source.
type SQLExecutor interface {
	Execute(ctx context.Context, source string, query string) ([]map[string]any, error)
}

// ClickHouseExecutor runs a query against ClickHouse.
type ClickHouseExecutor interface {
	QueryRows(ctx context.Context, query string) ([]map[string]any, error)
}

// sqlBackend serves mart tables and raw SQL sources. Pagination is native:
// the aggregate query is wrapped as a subquery with LIMIT/OFFSET and a
// second query counts the full result. With a cumulative metric a third,
// unpaginated query provides the running totals which are transplanted into
// the paginated window by dimension key.
type sqlBackend struct {
	c *Component
}

func (b *sqlBackend) name() string {
	return "sql"
}

func (b *sqlBackend) paginates() bool {
	return true
}

// compiledSQL holds the query variants of one plan.
type compiledSQL struct {
	query      string
	pagedQuery string
	countQuery string
	fullQuery  string
}

func (b *sqlBackend) compile(p *plan) (compiledSQL, error) {
	dialect := dialectFor(p.table.Dialect)
	builder := &whereBuilder{
		table:      p.table,
		dialect:    dialect,
		locales:    p.locales,
		tz:         p.context.Timezone,
		now:        p.now,
		aliases:    p.aliases,
		searchable: searchableExpressions(dialect, p),
	}
	where, special, err := builder.compile(p.filters)
	if err != nil {
		return compiledSQL{}, err
	}

	from := p.table.StoreName
	if p.table.Kind == schema.SourceKindSQL {
		from = expandSourceQuery(p.table.Query, substitutions{
			context:   p.context,
			values:    special,
			startDate: where.startDate,
			endDate:   where.endDate,
			testMode:  p.testMode,
		})
	}

	selects := make([]string, 0, len(p.dimensions)+len(p.metrics))
	groups := make([]string, 0, len(p.dimensions))
	for _, d := range p.dimensions {
		selects = append(selects, fmt.Sprintf("%s AS %s",
			dimensionExpression(dialect, d), dialect.quoteIdentifier(d.Name())))
		groups = append(groups, dimensionBucket(dialect, d))
	}
	for _, m := range p.metrics {
		selects = append(selects, fmt.Sprintf("%s AS %s",
			metricExpression(dialect, m), dialect.quoteIdentifier(m.Name())))
	}

	orders := make([]string, 0, len(p.sorts))
	for _, s := range p.sorts {
		expr, ok := b.sortExpression(dialect, p, s.Field)
		if !ok {
			continue
		}
		direction := "asc"
		if s.Direction == query.DirectionDesc {
			direction = "desc"
		}
		orders = append(orders, fmt.Sprintf("%s %s", expr, direction))
	}

	build := func(clause string) string {
		parts := []string{
			fmt.Sprintf("SELECT %s", strings.Join(selects, ", ")),
			fmt.Sprintf("FROM %s", from),
			fmt.Sprintf("WHERE %s", clause),
		}
		if len(groups) > 0 {
			parts = append(parts, fmt.Sprintf("GROUP BY %s", strings.Join(groups, ", ")))
		}
		if len(orders) > 0 {
			parts = append(parts, fmt.Sprintf("ORDER BY %s", strings.Join(orders, ", ")))
		}
		if p.limit > 0 {
			parts = append(parts, fmt.Sprintf("LIMIT %d", p.limit))
		}
		return strings.Join(parts, " ")
	}

	compiled := compiledSQL{
		query:     build(where.clause),
		fullQuery: build(where.clause),
	}
	if p.page.enabled() {
		paged := build(where.pagedClause)
		compiled.pagedQuery = fmt.Sprintf("SELECT * FROM (%s) original_query LIMIT %d OFFSET %d",
			paged, p.page.Limit, p.page.Offset)
		compiled.countQuery = fmt.Sprintf("SELECT count(*) AS count FROM (%s) count_query", paged)
	}
	return compiled, nil
}

func (b *sqlBackend) query(ctx context.Context, p *plan) ([]map[string]any, int, error) {
	compiled, err := b.compile(p)
	if err != nil {
		return nil, 0, &CompilationError{err}
	}
	if !p.page.enabled() {
		rows, err := b.execute(ctx, p, compiled.query)
		if err != nil {
			return nil, 0, err
		}
		return rows, len(rows), nil
	}

	rows, err := b.execute(ctx, p, compiled.pagedQuery)
	if err != nil {
		return nil, 0, err
	}
	countRows, err := b.execute(ctx, p, compiled.countQuery)
	if err != nil {
		return nil, 0, err
	}
	total := len(rows)
	if len(countRows) == 1 {
		if count, ok := toFloat(countRows[0]["count"]); ok {
			total = int(count)
		}
	}
	if p.hasCumulative() {
		fullRows, err := b.execute(ctx, p, compiled.fullQuery)
		if err != nil {
			return nil, 0, err
		}
		applyCumulativeSums(fullRows, p.metrics, p.dimensionNames())
		transplantMetrics(rows, fullRows, p.metricNames(), p.dimensionNames())
	}
	return rows, total, nil
}

func (b *sqlBackend) preview(p *plan) (string, error) {
	compiled, err := b.compile(p)
	if err != nil {
		return "", &CompilationError{err}
	}
	return compiled.query, nil
}

func (b *sqlBackend) execute(ctx context.Context, p *plan, query string) ([]map[string]any, error) {
	var rows []map[string]any
	var err error
	if p.table.Dialect == schema.DialectClickHouse {
		b.c.metrics.backendQueries.WithLabelValues("clickhouse").Inc()
		rows, err = b.c.d.ClickHouse.QueryRows(ctx, query)
	} else {
		b.c.metrics.backendQueries.WithLabelValues("sql").Inc()
		rows, err = b.c.d.SQL.Execute(ctx, b.c.config.Source, query)
	}
	if err != nil {
		return nil, &BackendExecutionError{Backend: b.name(), Err: err}
	}
	return rows, nil
}

// sortExpression maps a sort field to the expression computing it. Sorting
// a metric reuses its aggregate so every dialect accepts it.
func (b *sqlBackend) sortExpression(dialect sqlDialect, p *plan, name string) (string, bool) {
	for _, m := range p.metrics {
		if m.Name() == name {
			return metricExpression(dialect, m), true
		}
	}
	for _, d := range p.dimensions {
		if d.Name() == name {
			return dimensionBucket(dialect, d), true
		}
	}
	return "", false
}

func dimensionExpression(dialect sqlDialect, d query.Dimension) string {
	field := d.ResolvedField()
	if field.Type.IsDate() && d.Format != query.TruncNone {
		return dialect.dateLabel(field.Column, d.Format)
	}
	return field.Column
}

func dimensionBucket(dialect sqlDialect, d query.Dimension) string {
	field := d.ResolvedField()
	if field.Type.IsDate() && d.Format != query.TruncNone {
		return dialect.dateBucket(field.Column, d.Format)
	}
	return field.Column
}

func metricExpression(dialect sqlDialect, m query.Metric) string {
	if m.Expression != "" {
		return m.Expression
	}
	if m.Field == "" {
		return "count(*)"
	}
	column := m.ResolvedField().Column
	switch m.Aggregation {
	case query.AggregationCountDistinct:
		return fmt.Sprintf("count(distinct %s)", column)
	case query.AggregationSum, query.AggregationCumulativeSum:
		return fmt.Sprintf("sum(%s)", column)
	case query.AggregationAvg:
		return fmt.Sprintf("avg(%s)", column)
	default:
		return fmt.Sprintf("count(%s)", column)
	}
}

// searchableExpressions lists the textual expressions probed by the
// pagination search: dimension and metric columns, not aggregates.
func searchableExpressions(dialect sqlDialect, p *plan) []string {
	expressions := []string{}
	seen := map[string]bool{}
	add := func(field schema.Field) {
		if field.Name == "" || seen[field.Column] {
			return
		}
		seen[field.Column] = true
		expressions = append(expressions, dialect.castText(field.Column))
	}
	for _, d := range p.dimensions {
		add(d.ResolvedField())
	}
	for _, m := range p.metrics {
		if m.Field != "" {
			add(m.ResolvedField())
		}
	}
	return expressions
}
