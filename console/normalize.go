// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"quarry/console/query"
)

// Result is the canonical shape of an analysis result. Fields lists the
// dimension names followed by the metric names; Values projects every row
// onto Fields in order.
type Result struct {
	Data       []map[string]any `json:"data"`
	Metrics    []string         `json:"metrics"`
	Dimensions []string         `json:"dimensions"`
	Fields     []string         `json:"fields"`
	Values     [][]any          `json:"values"`
	// Count is the total number of rows before pagination.
	Count int `json:"count"`
}

func emptyResult() *Result {
	return &Result{
		Data:       []map[string]any{},
		Metrics:    []string{},
		Dimensions: []string{},
		Fields:     []string{},
		Values:     [][]any{},
	}
}

// newResult assembles the canonical result from normalized rows.
func newResult(rows []map[string]any, metrics []query.Metric, dimensions []query.Dimension, total int) *Result {
	result := emptyResult()
	for _, m := range metrics {
		result.Metrics = append(result.Metrics, m.Name())
	}
	for _, d := range dimensions {
		result.Dimensions = append(result.Dimensions, d.Name())
	}
	result.Fields = append(append(result.Fields, result.Dimensions...), result.Metrics...)
	result.Data = rows
	result.Count = total
	for _, row := range rows {
		values := make([]any, len(result.Fields))
		for i, field := range result.Fields {
			values[i] = row[field]
		}
		result.Values = append(result.Values, values)
	}
	return result
}

// flattenLocalizedColumns replaces map-valued cells by the value of one
// locale, chosen once per column: the first configured locale populated
// anywhere in the column, else the first populated locale of the first
// localized cell.
func flattenLocalizedColumns(rows []map[string]any, locales []string) {
	chosen := map[string]string{}
	for _, row := range rows {
		for column, value := range row {
			localized, ok := value.(map[string]any)
			if !ok || chosen[column] != "" {
				continue
			}
			for _, locale := range locales {
				if text, ok := localized[locale].(string); ok && text != "" {
					chosen[column] = locale
					break
				}
			}
			if chosen[column] == "" {
				for locale, item := range localized {
					if text, ok := item.(string); ok && text != "" {
						chosen[column] = locale
						break
					}
				}
			}
		}
	}
	for _, row := range rows {
		for column, value := range row {
			localized, ok := value.(map[string]any)
			if !ok {
				continue
			}
			row[column] = localized[chosen[column]]
			if row[column] == nil {
				row[column] = ""
			}
		}
	}
}

// applySelectionLabels maps stored selection codes to their labels.
func applySelectionLabels(rows []map[string]any, dimensions []query.Dimension) {
	for _, d := range dimensions {
		selection := d.ResolvedField().Selection
		if selection == nil {
			continue
		}
		name := d.Name()
		for _, row := range rows {
			if code, ok := row[name].(string); ok {
				if label, ok := selection[code]; ok {
					row[name] = label
				}
			}
		}
	}
}

// applyDefaults replaces missing metric values by 0 and missing dimension
// values by an empty string.
func applyDefaults(rows []map[string]any, metricNames, dimensionNames []string) {
	for _, row := range rows {
		for _, name := range metricNames {
			if row[name] == nil {
				row[name] = 0
			}
		}
		for _, name := range dimensionNames {
			if row[name] == nil {
				row[name] = ""
			}
		}
	}
}

// applyCumulativeSums turns cumulative metrics into running totals. Rows
// accumulate in backend order, independently for each combination of the
// dimensions after the first: the first dimension is the axis the total
// runs along.
func applyCumulativeSums(rows []map[string]any, metrics []query.Metric, dimensionNames []string) {
	groupKey := func(row map[string]any) string {
		if len(dimensionNames) < 2 {
			return ""
		}
		parts := make([]string, len(dimensionNames)-1)
		for i, name := range dimensionNames[1:] {
			parts[i] = fmt.Sprintf("%v", row[name])
		}
		return strings.Join(parts, "\x00")
	}
	for _, m := range metrics {
		if !m.IsCumulative() {
			continue
		}
		name := m.Name()
		totals := map[string]float64{}
		for _, row := range rows {
			key := groupKey(row)
			if value, ok := toFloat(row[name]); ok {
				totals[key] += value
			}
			row[name] = totals[key]
		}
	}
}

// transplantMetrics overwrites the metric values of a paginated window with
// the values computed over the full result, matched by dimension key.
func transplantMetrics(window, full []map[string]any, metricNames, dimensionNames []string) {
	rowKey := func(row map[string]any) string {
		parts := make([]string, len(dimensionNames))
		for i, name := range dimensionNames {
			parts[i] = fmt.Sprintf("%v", row[name])
		}
		return strings.Join(parts, "\x00")
	}
	index := make(map[string]map[string]any, len(full))
	for _, row := range full {
		index[rowKey(row)] = row
	}
	for _, row := range window {
		source, ok := index[rowKey(row)]
		if !ok {
			continue
		}
		for _, name := range metricNames {
			row[name] = source[name]
		}
	}
}

// filterRowsSince keeps the rows whose bucket label is on or after the
// period containing the cutoff date. Rows with an unparseable label are
// kept.
func filterRowsSince(rows []map[string]any, column, cutoff string, format query.TruncFormat) []map[string]any {
	cutoffDate, err := time.Parse("2006-01-02", cutoff)
	if err != nil {
		return rows
	}
	cutoffDate = bucketStart(cutoffDate, format)
	kept := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		label, ok := row[column].(string)
		if ok {
			if date, parsed := parseBucketDate(label); parsed && date.Before(cutoffDate) {
				continue
			}
		}
		kept = append(kept, row)
	}
	return kept
}

// bucketStart normalizes a date to the first day of its bucket.
func bucketStart(date time.Time, format query.TruncFormat) time.Time {
	switch format {
	case query.TruncWeek:
		return date.AddDate(0, 0, -((int(date.Weekday()) + 6) % 7))
	case query.TruncMonth:
		return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	case query.TruncQuarter:
		quarter := (int(date.Month()) - 1) / 3
		return time.Date(date.Year(), time.Month(quarter*3+1), 1, 0, 0, 0, 0, date.Location())
	case query.TruncYear:
		return time.Date(date.Year(), 1, 1, 0, 0, 0, 0, date.Location())
	default:
		return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	}
}

// bucketLabel renders the displayed label of a bucket, consistent with what
// the SQL dialects produce.
func bucketLabel(date time.Time, format query.TruncFormat) string {
	switch format {
	case query.TruncWeek:
		return bucketStart(date, format).Format("02 Jan 2006")
	case query.TruncMonth:
		return date.Format("Jan 2006")
	case query.TruncQuarter:
		return fmt.Sprintf("Q%d %d", (int(date.Month())-1)/3+1, date.Year())
	case query.TruncYear:
		return date.Format("2006")
	default:
		return date.Format("02 Jan 2006")
	}
}

var (
	yearLabelRegexp    = regexp.MustCompile(`^\d{4}$`)
	quarterLabelRegexp = regexp.MustCompile(`(?i)^(?:q\s*([1-4])|([1-4])\s*q|quarter\s+([1-4]))\s+(\d{4})$`)
)

// parseBucketDate parses a bucket label back into the first day of its
// period. Labels are matched case-insensitively since dialects disagree on
// month capitalization.
func parseBucketDate(label string) (time.Time, bool) {
	label = strings.TrimSpace(label)
	if yearLabelRegexp.MatchString(label) {
		year, _ := strconv.Atoi(label)
		return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC), true
	}
	if match := quarterLabelRegexp.FindStringSubmatch(label); match != nil {
		quarter := 0
		for _, group := range match[1:4] {
			if group != "" {
				quarter, _ = strconv.Atoi(group)
			}
		}
		year, _ := strconv.Atoi(match[4])
		return time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC), true
	}
	normalized := normalizeMonthCase(label)
	for _, layout := range []string{"Jan 2006", "January 2006", "02 Jan 2006", "02 January 2006",
		"2006-01-02", "2006-01-02 15:04:05"} {
		if date, err := time.Parse(layout, normalized); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}

// normalizeMonthCase title-cases the alphabetic words of a label so that
// "JAN 2024" and "jan 2024" both parse with Go layouts.
func normalizeMonthCase(label string) string {
	words := strings.Fields(label)
	for i, word := range words {
		if word == "" || word[0] < 'A' {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}

// toFloat coerces the numeric types the drivers may return.
func toFloat(value any) (float64, bool) {
	switch value := value.(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int8:
		return float64(value), true
	case int16:
		return float64(value), true
	case int32:
		return float64(value), true
	case int64:
		return float64(value), true
	case uint:
		return float64(value), true
	case uint8:
		return float64(value), true
	case uint16:
		return float64(value), true
	case uint32:
		return float64(value), true
	case uint64:
		return float64(value), true
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		return parsed, err == nil
	}
	return 0, false
}
