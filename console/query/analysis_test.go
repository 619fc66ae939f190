// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package query

import (
	"errors"
	"strings"
	"testing"

	"quarry/common/schema"
)

func TestAnalysisValidate(t *testing.T) {
	catalog := schema.NewMock(t)
	cases := []struct {
		Description string
		Analysis    Analysis
		Error       string
	}{
		{
			Description: "valid analysis",
			Analysis: Analysis{
				Table: "bookings",
				Metrics: []Metric{
					{Field: "amount", Aggregation: AggregationSum},
					{Aggregation: AggregationCount, Alias: "orders"},
				},
				Dimensions: []Dimension{
					{Field: "city"},
					{Field: "check_in", Format: TruncMonth},
				},
				Sorts: []Sort{{Field: "amount", Direction: DirectionDesc}},
			},
		}, {
			Description: "unknown table",
			Analysis:    Analysis{Table: "nope"},
			Error:       "unknown table",
		}, {
			Description: "unknown metric field",
			Analysis: Analysis{
				Table:   "bookings",
				Metrics: []Metric{{Field: "nope", Aggregation: AggregationSum}},
			},
			Error: "unknown field",
		}, {
			Description: "sum of non-numeric field",
			Analysis: Analysis{
				Table:   "bookings",
				Metrics: []Metric{{Field: "city", Aggregation: AggregationSum}},
			},
			Error: "requires a numeric field",
		}, {
			Description: "metric without aggregation",
			Analysis: Analysis{
				Table:   "bookings",
				Metrics: []Metric{{Field: "amount"}},
			},
			Error: "no aggregation",
		}, {
			Description: "expression without alias",
			Analysis: Analysis{
				Table:   "bookings",
				Metrics: []Metric{{Expression: "SUM(amount_total) / COUNT(*)"}},
			},
			Error: "needs an alias",
		}, {
			Description: "date format on non-date dimension",
			Analysis: Analysis{
				Table:      "bookings",
				Dimensions: []Dimension{{Field: "city", Format: TruncMonth}},
			},
			Error: "non-date field",
		}, {
			Description: "unresolved filter field",
			Analysis: Analysis{
				Table:   "bookings",
				Filters: []Filter{{Field: "nope", Operator: OperatorEqual, Value: "x"}},
			},
			Error: "unresolved filter field",
		}, {
			Description: "sort on unknown column",
			Analysis: Analysis{
				Table: "bookings",
				Sorts: []Sort{{Field: "nope", Direction: DirectionAsc}},
			},
			Error: "neither a metric nor a dimension",
		}, {
			Description: "date filter with default field",
			Analysis: Analysis{
				Table:      "bookings",
				DateFilter: &DateFilter{Keyword: "this_month"},
			},
		}, {
			Description: "date filter with unknown keyword",
			Analysis: Analysis{
				Table:      "bookings",
				DateFilter: &DateFilter{Keyword: "someday"},
			},
			Error: "invalid date format",
		}, {
			Description: "custom date filter without bounds",
			Analysis: Analysis{
				Table:      "bookings",
				DateFilter: &DateFilter{Keyword: "custom"},
			},
			Error: "no bounds",
		},
	}
	for _, tc := range cases {
		t.Run(tc.Description, func(t *testing.T) {
			analysis := tc.Analysis
			_, err := analysis.Validate(catalog)
			if tc.Error == "" {
				if err != nil {
					t.Fatalf("Validate() error:\n%+v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() did not error")
			}
			if !strings.Contains(err.Error(), tc.Error) {
				t.Errorf("Validate() error %q does not contain %q", err, tc.Error)
			}
		})
	}
}

func TestSortDependency(t *testing.T) {
	catalog := schema.NewMock(t)
	analysis := Analysis{
		Table: "bookings",
		Metrics: []Metric{
			{Field: "amount", Aggregation: AggregationSum},
		},
		Dimensions: []Dimension{{Field: "city"}},
		Sorts:      []Sort{{Field: "amount", Direction: DirectionDesc}},
	}
	if _, err := analysis.Validate(catalog); err != nil {
		t.Fatalf("Validate() error:\n%+v", err)
	}

	if err := analysis.SetMetricField(0, "nights"); !errors.Is(err, ErrSortDependency) {
		t.Errorf("SetMetricField() error is %v, expected ErrSortDependency", err)
	}
	if err := analysis.RemoveMetric(0); !errors.Is(err, ErrSortDependency) {
		t.Errorf("RemoveMetric() error is %v, expected ErrSortDependency", err)
	}

	// Removing the sort first unlocks the mutation.
	analysis.RemoveSort("amount")
	if err := analysis.SetMetricField(0, "nights"); err != nil {
		t.Errorf("SetMetricField() error:\n%+v", err)
	}
	if err := analysis.RemoveDimension(0); err != nil {
		t.Errorf("RemoveDimension() error:\n%+v", err)
	}
}

func TestMetricName(t *testing.T) {
	cases := []struct {
		Metric   Metric
		Expected string
	}{
		{Metric{Field: "amount", Aggregation: AggregationSum}, "amount"},
		{Metric{Field: "amount", Aggregation: AggregationSum, Alias: "total"}, "total"},
		{Metric{Aggregation: AggregationCount}, "count"},
	}
	for _, tc := range cases {
		if got := tc.Metric.Name(); got != tc.Expected {
			t.Errorf("Name() == %q but expected %q", got, tc.Expected)
		}
	}
}
