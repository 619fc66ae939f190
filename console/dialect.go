// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"fmt"
	"strings"

	"quarry/common/schema"
	"quarry/console/query"
)

// sqlDialect renders the dialect-specific fragments of a compiled query.
// The bucket expression of a truncated date must evaluate to the same
// grouping as its label expression.
type sqlDialect interface {
	// quoteString quotes a string literal.
	quoteString(s string) string
	// quoteIdentifier quotes a result column name.
	quoteIdentifier(s string) string
	// castText renders an expression as text.
	castText(expr string) string
	// likeOperator maps a pattern-matching operator.
	likeOperator(op query.Operator) string
	// jsonLocale extracts one locale from a localized column.
	jsonLocale(column, locale string) string
	// dateLabel renders the displayed label of a truncated date.
	dateLabel(column string, format query.TruncFormat) string
	// dateBucket renders the expression grouping rows into the same
	// buckets as dateLabel.
	dateBucket(column string, format query.TruncFormat) string
}

// dialectFor returns the SQL dialect of a table.
func dialectFor(d schema.Dialect) sqlDialect {
	switch d {
	case schema.DialectMySQL:
		return mysqlDialect{}
	case schema.DialectClickHouse:
		return clickhouseDialect{}
	default:
		return postgresDialect{}
	}
}

type postgresDialect struct{}

func (postgresDialect) quoteString(s string) string {
	if strings.Contains(s, "$$") {
		return fmt.Sprintf("'%s'", strings.ReplaceAll(s, "'", "''"))
	}
	return fmt.Sprintf("$$%s$$", s)
}

func (postgresDialect) quoteIdentifier(s string) string {
	return fmt.Sprintf(`"%s"`, s)
}

func (postgresDialect) castText(expr string) string {
	return fmt.Sprintf("%s::TEXT", expr)
}

func (postgresDialect) likeOperator(op query.Operator) string {
	return op.String()
}

func (postgresDialect) jsonLocale(column, locale string) string {
	return fmt.Sprintf("%s->>'%s'", column, locale)
}

func (postgresDialect) dateLabel(column string, format query.TruncFormat) string {
	switch format {
	case query.TruncWeek:
		return fmt.Sprintf("to_char(date_trunc('week', %s), 'DD MON YYYY')", column)
	case query.TruncMonth:
		return fmt.Sprintf("to_char(date_trunc('month', %s), 'MON YYYY')", column)
	case query.TruncQuarter:
		return fmt.Sprintf(`to_char(date_trunc('quarter', %s), '"Q"Q YYYY')`, column)
	case query.TruncYear:
		return fmt.Sprintf("to_char(date_trunc('year', %s), 'YYYY')", column)
	default:
		return fmt.Sprintf("to_char(date_trunc('day', %s), 'DD MON YYYY')", column)
	}
}

func (postgresDialect) dateBucket(column string, format query.TruncFormat) string {
	return fmt.Sprintf("date_trunc('%s', %s)", truncUnit(format), column)
}

func truncUnit(format query.TruncFormat) string {
	switch format {
	case query.TruncWeek:
		return "week"
	case query.TruncMonth:
		return "month"
	case query.TruncQuarter:
		return "quarter"
	case query.TruncYear:
		return "year"
	default:
		return "day"
	}
}

type mysqlDialect struct{}

func (mysqlDialect) quoteString(s string) string {
	return fmt.Sprintf("'%s'", strings.ReplaceAll(s, "'", "''"))
}

func (mysqlDialect) quoteIdentifier(s string) string {
	return fmt.Sprintf("`%s`", s)
}

func (mysqlDialect) castText(expr string) string {
	return fmt.Sprintf("CAST(%s AS CHAR)", expr)
}

func (mysqlDialect) likeOperator(op query.Operator) string {
	// MySQL collations make LIKE case-insensitive already.
	switch op {
	case query.OperatorILike:
		return "like"
	case query.OperatorNotILike:
		return "not like"
	default:
		return op.String()
	}
}

func (mysqlDialect) jsonLocale(column, locale string) string {
	return fmt.Sprintf(`JSON_UNQUOTE(JSON_EXTRACT(%s, '$."%s"'))`, column, locale)
}

func (mysqlDialect) dateLabel(column string, format query.TruncFormat) string {
	switch format {
	case query.TruncWeek:
		return fmt.Sprintf(
			"DATE_FORMAT(DATE_SUB(%s, INTERVAL WEEKDAY(%s) DAY), '%%d %%b %%Y')",
			column, column)
	case query.TruncMonth:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%b %%Y')", column)
	case query.TruncQuarter:
		return fmt.Sprintf("CONCAT('Q', QUARTER(%s), ' ', YEAR(%s))", column, column)
	case query.TruncYear:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y')", column)
	default:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%d %%b %%Y')", column)
	}
}

func (mysqlDialect) dateBucket(column string, format query.TruncFormat) string {
	switch format {
	case query.TruncWeek:
		return fmt.Sprintf("DATE_SUB(DATE(%s), INTERVAL WEEKDAY(%s) DAY)", column, column)
	case query.TruncMonth:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-01')", column)
	case query.TruncQuarter:
		return fmt.Sprintf("CONCAT(YEAR(%s), '-', QUARTER(%s))", column, column)
	case query.TruncYear:
		return fmt.Sprintf("YEAR(%s)", column)
	default:
		return fmt.Sprintf("DATE(%s)", column)
	}
}

type clickhouseDialect struct{}

func (clickhouseDialect) quoteString(s string) string {
	return fmt.Sprintf("'%s'", strings.ReplaceAll(s, "'", "\\'"))
}

func (clickhouseDialect) quoteIdentifier(s string) string {
	return fmt.Sprintf(`"%s"`, s)
}

func (clickhouseDialect) castText(expr string) string {
	return fmt.Sprintf("toString(%s)", expr)
}

func (clickhouseDialect) likeOperator(op query.Operator) string {
	return op.String()
}

func (clickhouseDialect) jsonLocale(column, locale string) string {
	return fmt.Sprintf("JSONExtractString(%s, '%s')", column, locale)
}

func (clickhouseDialect) dateLabel(column string, format query.TruncFormat) string {
	switch format {
	case query.TruncWeek:
		return fmt.Sprintf("formatDateTime(toStartOfWeek(%s, 1), '%%d %%b %%Y')", column)
	case query.TruncMonth:
		return fmt.Sprintf("formatDateTime(toStartOfMonth(%s), '%%b %%Y')", column)
	case query.TruncQuarter:
		return fmt.Sprintf("concat('Q', toString(toQuarter(%s)), ' ', toString(toYear(%s)))",
			column, column)
	case query.TruncYear:
		return fmt.Sprintf("toString(toYear(%s))", column)
	default:
		return fmt.Sprintf("formatDateTime(%s, '%%d %%b %%Y')", column)
	}
}

func (clickhouseDialect) dateBucket(column string, format query.TruncFormat) string {
	switch format {
	case query.TruncWeek:
		return fmt.Sprintf("toStartOfWeek(%s, 1)", column)
	case query.TruncMonth:
		return fmt.Sprintf("toStartOfMonth(%s)", column)
	case query.TruncQuarter:
		return fmt.Sprintf("toStartOfQuarter(%s)", column)
	case query.TruncYear:
		return fmt.Sprintf("toStartOfYear(%s)", column)
	default:
		return fmt.Sprintf("toDate(%s)", column)
	}
}
