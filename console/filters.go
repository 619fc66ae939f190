// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"quarry/common/schema"
	"quarry/console/daterange"
	"quarry/console/query"
)

// filterInput gathers everything restricting an analysis beyond its metrics
// and dimensions.
type filterInput struct {
	static  []query.Filter
	date    *query.DateFilter
	dynamic []DynamicFilter
	action  []ActionFilter
	temp    []TempFilter
	search  string
}

// compiledWhere is the SQL predicate of an analysis. In until mode the lower
// date bound is excluded from the main clause: cumulative metrics must
// aggregate the full history and recent buckets are kept by post-filtering.
// The paged clause keeps the bound since a paginated window cannot be
// post-filtered.
type compiledWhere struct {
	clause      string
	pagedClause string
	// untilStart is the lower bound excluded from clause (YYYY-MM-DD).
	untilStart string
	// startDate and endDate feed the date special variables.
	startDate, endDate string
}

// whereBuilder compiles filters into a SQL predicate for one table.
type whereBuilder struct {
	table   *schema.Table
	dialect sqlDialect
	locales []string
	tz      string
	now     time.Time
	// aliases maps dimension and metric result names to their fields, so
	// action filters can reference what the user clicked.
	aliases map[string]schema.Field
	// searchable lists the expressions probed by the pagination search.
	searchable []string
}

// compile builds the SQL predicate and collects the special variable values
// routed by dynamic filters.
func (b *whereBuilder) compile(in filterInput) (compiledWhere, map[string]any, error) {
	var parts, pagedParts []string
	appendBoth := func(clause string) {
		parts = append(parts, clause)
		pagedParts = append(pagedParts, clause)
	}
	appendBoth("1 = 1")
	special := map[string]any{}

	for _, f := range in.static {
		clause := fmt.Sprintf("%s %s(%s)%s",
			f.Connector, bracket(f.OpenBracket, "("),
			b.condition(f.ResolvedField(), f.Operator, f.Value),
			bracket(f.CloseBracket, ")"))
		appendBoth(clause)
	}

	for _, f := range in.dynamic {
		if f.Variable != "" {
			special[f.Variable] = f.Values
			continue
		}
		field, err := b.resolveField(f.Field)
		if err != nil {
			return compiledWhere{}, nil, err
		}
		op := f.Operator
		if op == query.OperatorUnknown {
			op = query.OperatorEqual
		}
		var value any = f.Values
		if len(f.Values) == 1 {
			value = f.Values[0]
		}
		appendBoth(fmt.Sprintf("AND (%s)", b.condition(field, op, value)))
	}

	for _, f := range in.action {
		field, err := b.resolveField(f.Field)
		if err != nil {
			return compiledWhere{}, nil, err
		}
		op := f.Operator
		if op == query.OperatorUnknown {
			op = query.OperatorEqual
		}
		appendBoth(fmt.Sprintf("AND (%s)", b.condition(field, op, f.Value)))
	}

	for _, f := range in.temp {
		clause, err := b.tempClause(f)
		if err != nil {
			return compiledWhere{}, nil, err
		}
		if clause != "" {
			appendBoth(clause)
		}
	}

	where := compiledWhere{}
	if in.date != nil {
		bounds, err := b.dateBounds(in.date)
		if err != nil {
			return compiledWhere{}, nil, err
		}
		where.startDate = bounds.startDate
		where.endDate = bounds.endDate
		if bounds.upper != "" {
			appendBoth(bounds.upper)
		}
		if bounds.lower != "" {
			if in.date.Mode == query.BoundaryUntil {
				pagedParts = append(pagedParts, bounds.lower)
				where.untilStart = bounds.startDate
			} else {
				appendBoth(bounds.lower)
			}
		}
	}

	if in.search != "" && len(b.searchable) > 0 {
		matches := make([]string, len(b.searchable))
		pattern := b.dialect.quoteString("%" + in.search + "%")
		for i, expr := range b.searchable {
			matches[i] = fmt.Sprintf("%s %s %s",
				expr, b.dialect.likeOperator(query.OperatorILike), pattern)
		}
		appendBoth(fmt.Sprintf("AND (%s)", strings.Join(matches, " OR ")))
	}

	where.clause = strings.Join(parts, " ")
	where.pagedClause = strings.Join(pagedParts, " ")
	return where, special, nil
}

func bracket(enabled bool, symbol string) string {
	if enabled {
		return symbol
	}
	return ""
}

// resolveField maps a filter field to the catalog, accepting result aliases
// of the analysis.
func (b *whereBuilder) resolveField(name string) (schema.Field, error) {
	if field, ok := b.aliases[name]; ok {
		return field, nil
	}
	if field, ok := b.table.LookupField(name); ok {
		return field, nil
	}
	return schema.Field{}, fmt.Errorf("%w: %q in table %q",
		query.ErrUnresolvedFilterField, name, b.table.Name)
}

func (b *whereBuilder) tempClause(f TempFilter) (string, error) {
	field, err := b.resolveField(f.Field)
	if err != nil {
		return "", err
	}
	switch f.Kind {
	case TempFilterStringSearch:
		if len(f.Values) == 0 {
			return "", nil
		}
		return fmt.Sprintf("AND (%s)",
			b.condition(field, query.OperatorIn, f.Values)), nil
	case TempFilterDateRange:
		clauses := []string{}
		if f.Start != "" {
			clauses = append(clauses,
				b.condition(field, query.OperatorGreaterEqual, b.dateLiteral(field, f.Start, false)))
		}
		if f.End != "" {
			clauses = append(clauses,
				b.condition(field, query.OperatorLessEqual, b.dateLiteral(field, f.End, true)))
		}
		if len(clauses) == 0 {
			return "", nil
		}
		return fmt.Sprintf("AND (%s)", strings.Join(clauses, " AND ")), nil
	case TempFilterDateFormat:
		rng, err := daterange.Resolve(f.Keyword, b.now)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("AND (%s AND %s)",
			b.condition(field, query.OperatorGreaterEqual, b.dateLiteral(field, rng.StartDate(), false)),
			b.condition(field, query.OperatorLessEqual, b.dateLiteral(field, rng.EndDate(), true)),
		), nil
	}
	return "", fmt.Errorf("unknown temp filter kind %q", f.Kind)
}

type dateBounds struct {
	lower, upper       string
	startDate, endDate string
}

// dateBounds turns the date filter into boundary clauses. Bounds of datetime
// fields cover whole days and are converted from the caller timezone.
func (b *whereBuilder) dateBounds(df *query.DateFilter) (dateBounds, error) {
	field := df.ResolvedField()
	var startDate, endDate string
	if df.Keyword == "custom" {
		startDate, endDate = df.Start, df.End
	} else {
		rng, err := daterange.Resolve(df.Keyword, b.now)
		if err != nil {
			return dateBounds{}, err
		}
		startDate, endDate = rng.StartDate(), rng.EndDate()
	}
	bounds := dateBounds{startDate: startDate, endDate: endDate}
	if startDate != "" {
		bounds.lower = fmt.Sprintf("AND (%s)",
			b.condition(field, query.OperatorGreaterEqual, b.dateLiteral(field, startDate, false)))
	}
	if endDate != "" {
		bounds.upper = fmt.Sprintf("AND (%s)",
			b.condition(field, query.OperatorLessEqual, b.dateLiteral(field, endDate, true)))
	}
	return bounds, nil
}

// dateLiteral expands a date to the boundary timestamp of its day for
// datetime fields. The timezone conversion happens when the comparison is
// rendered.
func (b *whereBuilder) dateLiteral(field schema.Field, date string, endOfDay bool) string {
	if field.Type != schema.FieldTypeDatetime || len(date) != len("2006-01-02") {
		return date
	}
	if endOfDay {
		return date + " 23:59:59"
	}
	return date + " 00:00:00"
}

// condition renders one comparison. The rendering follows the value: numeric
// values compare bare, strings are quoted, lists route to IN, pattern
// operators wrap the value with wildcards and localized columns expand to
// one comparison per locale.
func (b *whereBuilder) condition(field schema.Field, op query.Operator, value any) string {
	values := flattenValues(value)
	numeric := allNumeric(values)
	column := field.Column
	if field.Type == schema.FieldTypeDatetime {
		values = b.convertTimestamps(values)
	}

	if op == query.OperatorIn || op == query.OperatorNotIn || len(values) > 1 {
		if op != query.OperatorIn && op != query.OperatorNotIn {
			if op.Negated() {
				op = query.OperatorNotIn
			} else {
				op = query.OperatorIn
			}
		}
		if len(values) == 0 {
			if op == query.OperatorNotIn {
				return "1 = 1"
			}
			return "1 = 0"
		}
		list := b.renderList(values, numeric)
		if field.Origin == schema.FieldOriginJSONB && !numeric {
			return b.perLocale(column, func(expr string) string {
				return fmt.Sprintf("%s %s %s", expr, op, list)
			})
		}
		return fmt.Sprintf("%s %s %s", column, op, list)
	}

	switch op {
	case query.OperatorLike, query.OperatorILike, query.OperatorNotLike, query.OperatorNotILike:
		pattern := b.dialect.quoteString("%" + toText(values[0]) + "%")
		return fmt.Sprintf("%s %s %s",
			b.dialect.castText(column), b.dialect.likeOperator(op), pattern)
	}
	if numeric {
		return fmt.Sprintf("%s %s %s", column, op, toText(values[0]))
	}
	quoted := b.dialect.quoteString(toText(values[0]))
	if field.Origin == schema.FieldOriginJSONB {
		return b.perLocale(column, func(expr string) string {
			return fmt.Sprintf("%s %s %s", expr, op, quoted)
		})
	}
	return fmt.Sprintf("%s %s %s", column, op, quoted)
}

// perLocale expands a comparison over every configured locale of a
// localized column.
func (b *whereBuilder) perLocale(column string, render func(expr string) string) string {
	locales := b.locales
	if len(locales) == 0 {
		locales = []string{"en_US"}
	}
	comparisons := make([]string, len(locales))
	for i, locale := range locales {
		comparisons[i] = render(b.dialect.jsonLocale(column, locale))
	}
	return strings.Join(comparisons, " OR ")
}

func (b *whereBuilder) renderList(values []any, numeric bool) string {
	rendered := make([]string, len(values))
	for i, value := range values {
		if numeric {
			rendered[i] = toText(value)
		} else {
			rendered[i] = b.dialect.quoteString(toText(value))
		}
	}
	return fmt.Sprintf("(%s)", strings.Join(rendered, ", "))
}

func (b *whereBuilder) convertTimestamps(values []any) []any {
	converted := make([]any, len(values))
	for i, value := range values {
		if text, ok := value.(string); ok && len(text) == len("2006-01-02 15:04:05") {
			if utc, err := daterange.ConvertToUTC(text, b.tz); err == nil {
				converted[i] = utc
				continue
			}
		}
		converted[i] = value
	}
	return converted
}

// flattenValues normalizes a filter value to a list.
func flattenValues(value any) []any {
	switch value := value.(type) {
	case nil:
		return []any{}
	case []any:
		return value
	case []string:
		values := make([]any, len(value))
		for i, item := range value {
			values[i] = item
		}
		return values
	default:
		return []any{value}
	}
}

// allNumeric tells if every value is a number or a numeric string.
func allNumeric(values []any) bool {
	if len(values) == 0 {
		return false
	}
	for _, value := range values {
		switch value := value.(type) {
		case int, int32, int64, uint, uint32, uint64, float32, float64:
		case string:
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// toText renders a scalar value as bare query text.
func toText(value any) string {
	switch value := value.(type) {
	case string:
		// Only the $$ delimiter sequence is stripped, not lone dollar
		// signs that are part of the value.
		return strings.ReplaceAll(value, "$$", "")
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}
