// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	specialVariableRegexp = regexp.MustCompile(`\B#\w+`)
	limitClauseRegexp     = regexp.MustCompile(`(?i)limit\s+\d+`)
)

// Sentinels used when no date filter bounds a raw source query. They keep
// a literal "between #start and #end" clause always true.
const (
	openStartDate     = "1000-01-01"
	openEndDate       = "3000-01-01"
	openStartDatetime = "1000-01-01 00:00:00"
	openEndDatetime   = "3000-01-01 23:59:59"
)

// substitutions holds everything a raw source query can reference through
// special variables.
type substitutions struct {
	context RequestContext
	// values are caller-supplied variables. They win over the builtins.
	values map[string]any
	// startDate and endDate override the date sentinels when the analysis
	// carries a date filter.
	startDate, endDate string
	// testMode clamps the query to one row.
	testMode bool
}

// resolve returns the replacement text for one special variable, without
// the leading hash. Unknown variables resolve to the NULL literal.
func (s substitutions) resolve(name string) string {
	if value, ok := s.values[name]; ok {
		return renderVariable(value)
	}
	switch name {
	case "user_id":
		return strconv.FormatUint(s.context.UserID, 10)
	case "user_name":
		return s.context.UserName
	case "user_tz":
		return s.context.Timezone
	case "company_id":
		return strconv.FormatUint(s.context.CompanyID, 10)
	case "company_ids":
		if len(s.context.CompanyIDs) == 0 {
			return "(NULL)"
		}
		ids := make([]string, len(s.context.CompanyIDs))
		for i, id := range s.context.CompanyIDs {
			ids[i] = strconv.FormatUint(id, 10)
		}
		return fmt.Sprintf("(%s)", strings.Join(ids, ","))
	case "company_name":
		return s.context.CompanyName
	case "izi_start_date":
		if s.startDate != "" {
			return s.startDate
		}
		return openStartDate
	case "izi_end_date":
		if s.endDate != "" {
			return s.endDate
		}
		return openEndDate
	case "izi_start_datetime":
		if s.startDate != "" {
			return s.startDate + " 00:00:00"
		}
		return openStartDatetime
	case "izi_end_datetime":
		if s.endDate != "" {
			return s.endDate + " 23:59:59"
		}
		return openEndDatetime
	}
	return "NULL"
}

// renderVariable turns a caller-supplied variable into query text. Lists
// render as a parenthesized comma-joined sequence, strings are quoted.
func renderVariable(value any) string {
	switch value := value.(type) {
	case []any:
		rendered := make([]string, len(value))
		for i, item := range value {
			rendered[i] = renderVariableItem(item)
		}
		return fmt.Sprintf("(%s)", strings.Join(rendered, ","))
	case []string:
		rendered := make([]string, len(value))
		for i, item := range value {
			rendered[i] = renderVariableItem(item)
		}
		return fmt.Sprintf("(%s)", strings.Join(rendered, ","))
	default:
		return renderVariableItem(value)
	}
}

func renderVariableItem(value any) string {
	switch value := value.(type) {
	case string:
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			return value
		}
		return fmt.Sprintf("'%s'", strings.ReplaceAll(value, "'", "''"))
	case nil:
		return "NULL"
	default:
		return fmt.Sprintf("%v", value)
	}
}

// expandSourceQuery substitutes the special variables of a raw source
// query and wraps the result into a subquery usable as a FROM clause.
func expandSourceQuery(source string, s substitutions) string {
	expanded := specialVariableRegexp.ReplaceAllStringFunc(source, func(token string) string {
		return s.resolve(token[1:])
	})
	if s.testMode {
		if limitClauseRegexp.MatchString(expanded) {
			expanded = limitClauseRegexp.ReplaceAllString(expanded, "limit 1")
		} else {
			expanded += " limit 1"
		}
	}
	if strings.Contains(expanded, "table_query") {
		return expanded
	}
	return fmt.Sprintf("(%s) table_query", expanded)
}
