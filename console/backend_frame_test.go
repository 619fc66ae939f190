// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"context"
	"errors"
	"testing"

	"quarry/common/helpers"
	"quarry/console/frame"
	"quarry/console/query"
)

func TestFrameAnalysisData(t *testing.T) {
	c, _, mocks := NewMock(t, DefaultConfiguration())
	mocks.Frames.Frames["forecast"] = &frame.Frame{
		Columns: []string{"month", "city", "projected"},
		Rows: []map[string]any{
			{"month": "2024-01-10", "city": "Bali", "projected": 10.0},
			{"month": "2024-01-20", "city": "Ubud", "projected": 5.0},
			{"month": "2024-02-01", "city": "Bali", "projected": 7.0},
		},
	}

	got, err := c.GetAnalysisData(context.Background(), query.Analysis{
		Table: "forecast",
		Metrics: []query.Metric{
			{Field: "projected", Aggregation: query.AggregationSum, Alias: "total"},
		},
		Dimensions: []query.Dimension{
			{Field: "month", Format: query.TruncMonth, Alias: "period"},
		},
		Sorts: []query.Sort{
			{Field: "total", Direction: query.DirectionDesc},
		},
	}, AnalysisRequest{
		Dynamic: []DynamicFilter{
			{Field: "city", Values: []any{"Bali"}},
		},
	})
	if err != nil {
		t.Fatalf("GetAnalysisData() error:\n%+v", err)
	}
	expected := &Result{
		Data: []map[string]any{
			{"period": "Jan 2024", "total": 10.0},
			{"period": "Feb 2024", "total": 7.0},
		},
		Metrics:    []string{"total"},
		Dimensions: []string{"period"},
		Fields:     []string{"period", "total"},
		Values: [][]any{
			{"Jan 2024", 10.0},
			{"Feb 2024", 7.0},
		},
		Count: 2,
	}
	if diff := helpers.Diff(got, expected); diff != "" {
		t.Fatalf("GetAnalysisData() (-got, +want):\n%s", diff)
	}

	// The source frame must not be mutated by the run.
	if diff := helpers.Diff(mocks.Frames.Frames["forecast"].Rows[0],
		map[string]any{"month": "2024-01-10", "city": "Bali", "projected": 10.0}); diff != "" {
		t.Fatalf("source frame mutated (-got, +want):\n%s", diff)
	}
}

func TestFrameExpression(t *testing.T) {
	cases := []struct {
		Pos      helpers.Pos
		Input    []Condition
		Expected string
	}{
		{
			helpers.Mark(),
			[]Condition{{"city", "=", "Bali"}},
			`city == "Bali"`,
		}, {
			helpers.Mark(),
			[]Condition{{"city", "in", []any{"Bali", "Ubud"}}},
			`city in ["Bali", "Ubud"]`,
		}, {
			helpers.Mark(),
			[]Condition{{"city", "not in", []any{"Bali"}}},
			`not (city in ["Bali"])`,
		}, {
			helpers.Mark(),
			[]Condition{{"city", "ilike", "BALI"}},
			`indexOf(lower(string(city)), "bali") >= 0`,
		}, {
			helpers.Mark(),
			[]Condition{{"nights", ">=", 2}},
			"nights >= 2",
		}, {
			helpers.Mark(),
			[]Condition{{"cancelled", "=", true}, {"nights", "<", 4.5}},
			"cancelled == true && nights < 4.5",
		},
	}
	for _, tc := range cases {
		got := frameExpression(tc.Input)
		if diff := helpers.Diff(got, tc.Expected); diff != "" {
			t.Errorf("%sframeExpression() (-got, +want):\n%s", tc.Pos, diff)
		}
	}
}

func TestFrameUnknownStore(t *testing.T) {
	c, _, _ := NewMock(t, DefaultConfiguration())
	_, err := c.GetAnalysisData(context.Background(), query.Analysis{
		Table: "forecast",
		Metrics: []query.Metric{
			{Aggregation: query.AggregationCount},
		},
	}, AnalysisRequest{})
	var backendErr *BackendExecutionError
	if !errors.As(err, &backendErr) {
		t.Fatalf("GetAnalysisData() error %v, expected a backend execution error", err)
	}
	if backendErr.Backend != "frame" {
		t.Errorf("GetAnalysisData() backend == %q", backendErr.Backend)
	}
}
