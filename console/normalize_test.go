// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"testing"
	"time"

	"quarry/common/helpers"
	"quarry/common/schema"
	"quarry/console/query"
)

func TestNewResult(t *testing.T) {
	catalog := schema.NewMock(t)
	table, _ := catalog.LookupTable("bookings")
	metric := query.Metric{Field: "amount", Aggregation: query.AggregationSum, Alias: "revenue"}
	if err := metric.Validate(table); err != nil {
		t.Fatalf("Validate() error:\n%+v", err)
	}
	dimension := query.Dimension{Field: "city"}
	if err := dimension.Validate(table); err != nil {
		t.Fatalf("Validate() error:\n%+v", err)
	}
	rows := []map[string]any{
		{"city": "Bali", "revenue": 100.0},
		{"city": "Ubud", "revenue": 50.0},
	}
	got := newResult(rows, []query.Metric{metric}, []query.Dimension{dimension}, 12)
	expected := &Result{
		Data:       rows,
		Metrics:    []string{"revenue"},
		Dimensions: []string{"city"},
		Fields:     []string{"city", "revenue"},
		Values: [][]any{
			{"Bali", 100.0},
			{"Ubud", 50.0},
		},
		Count: 12,
	}
	if diff := helpers.Diff(got, expected); diff != "" {
		t.Fatalf("newResult() (-got, +want):\n%s", diff)
	}
}

func TestFlattenLocalizedColumns(t *testing.T) {
	cases := []struct {
		Pos      helpers.Pos
		Descr    string
		Locales  []string
		Rows     []map[string]any
		Expected []map[string]any
	}{
		{
			Pos:     helpers.Mark(),
			Descr:   "first configured locale wins",
			Locales: []string{"id_ID", "en_US"},
			Rows: []map[string]any{
				{"name": map[string]any{"en_US": "John", "id_ID": "Joko"}},
				{"name": map[string]any{"en_US": "Jane", "id_ID": "Jeni"}},
			},
			Expected: []map[string]any{
				{"name": "Joko"},
				{"name": "Jeni"},
			},
		}, {
			Pos:     helpers.Mark(),
			Descr:   "locale chosen once per column",
			Locales: []string{"id_ID", "en_US"},
			Rows: []map[string]any{
				{"name": map[string]any{"en_US": "John"}},
				{"name": map[string]any{"en_US": "Jane", "id_ID": "Jeni"}},
			},
			Expected: []map[string]any{
				{"name": "John"},
				{"name": "Jane"},
			},
		}, {
			Pos:     helpers.Mark(),
			Descr:   "fallback on any populated locale",
			Locales: []string{"fr_FR"},
			Rows: []map[string]any{
				{"name": map[string]any{"en_US": "John"}, "city": "Bali"},
			},
			Expected: []map[string]any{
				{"name": "John", "city": "Bali"},
			},
		}, {
			Pos:     helpers.Mark(),
			Descr:   "empty localized cell becomes empty string",
			Locales: []string{"en_US"},
			Rows: []map[string]any{
				{"name": map[string]any{"en_US": "John"}},
				{"name": map[string]any{}},
			},
			Expected: []map[string]any{
				{"name": "John"},
				{"name": ""},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.Descr, func(t *testing.T) {
			flattenLocalizedColumns(tc.Rows, tc.Locales)
			if diff := helpers.Diff(tc.Rows, tc.Expected); diff != "" {
				t.Errorf("%sflattenLocalizedColumns() (-got, +want):\n%s", tc.Pos, diff)
			}
		})
	}
}

func TestApplySelectionLabels(t *testing.T) {
	catalog := schema.NewMock(t)
	table, _ := catalog.LookupTable("bookings")
	dimension := query.Dimension{Field: "status"}
	if err := dimension.Validate(table); err != nil {
		t.Fatalf("Validate() error:\n%+v", err)
	}
	rows := []map[string]any{
		{"status": "confirmed", "count": 3},
		{"status": "draft", "count": 1},
		{"status": "unknown_code", "count": 1},
	}
	applySelectionLabels(rows, []query.Dimension{dimension})
	expected := []map[string]any{
		{"status": "Confirmed", "count": 3},
		{"status": "Draft", "count": 1},
		{"status": "unknown_code", "count": 1},
	}
	if diff := helpers.Diff(rows, expected); diff != "" {
		t.Fatalf("applySelectionLabels() (-got, +want):\n%s", diff)
	}
}

func TestApplyDefaults(t *testing.T) {
	rows := []map[string]any{
		{"city": "Bali", "revenue": 100.0},
		{"city": nil, "revenue": nil},
	}
	applyDefaults(rows, []string{"revenue"}, []string{"city"})
	expected := []map[string]any{
		{"city": "Bali", "revenue": 100.0},
		{"city": "", "revenue": 0},
	}
	if diff := helpers.Diff(rows, expected); diff != "" {
		t.Fatalf("applyDefaults() (-got, +want):\n%s", diff)
	}
}

func TestApplyCumulativeSums(t *testing.T) {
	metric := query.Metric{
		Field: "amount", Aggregation: query.AggregationCumulativeSum, Alias: "running",
	}

	t.Run("single dimension", func(t *testing.T) {
		rows := []map[string]any{
			{"month": "Jan 2024", "running": 3.0},
			{"month": "Feb 2024", "running": 2.0},
			{"month": "Mar 2024", "running": 0.0},
		}
		applyCumulativeSums(rows, []query.Metric{metric}, []string{"month"})
		expected := []map[string]any{
			{"month": "Jan 2024", "running": 3.0},
			{"month": "Feb 2024", "running": 5.0},
			{"month": "Mar 2024", "running": 5.0},
		}
		if diff := helpers.Diff(rows, expected); diff != "" {
			t.Errorf("applyCumulativeSums() (-got, +want):\n%s", diff)
		}
	})

	t.Run("totals run independently per secondary dimension", func(t *testing.T) {
		rows := []map[string]any{
			{"month": "Jan 2024", "city": "Bali", "running": 3.0},
			{"month": "Jan 2024", "city": "Ubud", "running": 1.0},
			{"month": "Feb 2024", "city": "Bali", "running": 2.0},
			{"month": "Feb 2024", "city": "Ubud", "running": 4.0},
		}
		applyCumulativeSums(rows, []query.Metric{metric}, []string{"month", "city"})
		expected := []map[string]any{
			{"month": "Jan 2024", "city": "Bali", "running": 3.0},
			{"month": "Jan 2024", "city": "Ubud", "running": 1.0},
			{"month": "Feb 2024", "city": "Bali", "running": 5.0},
			{"month": "Feb 2024", "city": "Ubud", "running": 5.0},
		}
		if diff := helpers.Diff(rows, expected); diff != "" {
			t.Errorf("applyCumulativeSums() (-got, +want):\n%s", diff)
		}
	})

	t.Run("non-cumulative metrics untouched", func(t *testing.T) {
		plain := query.Metric{Field: "amount", Aggregation: query.AggregationSum, Alias: "revenue"}
		rows := []map[string]any{
			{"month": "Jan 2024", "revenue": 3.0},
			{"month": "Feb 2024", "revenue": 2.0},
		}
		applyCumulativeSums(rows, []query.Metric{plain}, []string{"month"})
		expected := []map[string]any{
			{"month": "Jan 2024", "revenue": 3.0},
			{"month": "Feb 2024", "revenue": 2.0},
		}
		if diff := helpers.Diff(rows, expected); diff != "" {
			t.Errorf("applyCumulativeSums() (-got, +want):\n%s", diff)
		}
	})
}

func TestTransplantMetrics(t *testing.T) {
	// Second page of a paginated cumulative result: the window carries the
	// totals of its own page, the full result carries the real ones.
	window := []map[string]any{
		{"month": "Mar 2024", "running": 1.0},
		{"month": "Apr 2024", "running": 4.0},
	}
	full := []map[string]any{
		{"month": "Jan 2024", "running": 3.0},
		{"month": "Feb 2024", "running": 5.0},
		{"month": "Mar 2024", "running": 6.0},
		{"month": "Apr 2024", "running": 10.0},
	}
	transplantMetrics(window, full, []string{"running"}, []string{"month"})
	expected := []map[string]any{
		{"month": "Mar 2024", "running": 6.0},
		{"month": "Apr 2024", "running": 10.0},
	}
	if diff := helpers.Diff(window, expected); diff != "" {
		t.Fatalf("transplantMetrics() (-got, +want):\n%s", diff)
	}
}

func TestFilterRowsSince(t *testing.T) {
	rows := []map[string]any{
		{"month": "Dec 2023"},
		{"month": "Jan 2024"},
		{"month": "Feb 2024"},
		{"month": "not a date"},
	}
	got := filterRowsSince(rows, "month", "2024-01-15", query.TruncMonth)
	expected := []map[string]any{
		{"month": "Jan 2024"},
		{"month": "Feb 2024"},
		{"month": "not a date"},
	}
	if diff := helpers.Diff(got, expected); diff != "" {
		t.Fatalf("filterRowsSince() (-got, +want):\n%s", diff)
	}

	t.Run("unparseable cutoff keeps everything", func(t *testing.T) {
		got := filterRowsSince(rows, "month", "someday", query.TruncMonth)
		if diff := helpers.Diff(got, rows); diff != "" {
			t.Errorf("filterRowsSince() (-got, +want):\n%s", diff)
		}
	})
}

func TestParseBucketDate(t *testing.T) {
	cases := []struct {
		Pos      helpers.Pos
		Input    string
		Expected string
		OK       bool
	}{
		{helpers.Mark(), "Jan 2024", "2024-01-01", true},
		{helpers.Mark(), "JAN 2024", "2024-01-01", true},
		{helpers.Mark(), "01 JAN 2024", "2024-01-01", true},
		{helpers.Mark(), "15 Feb 2024", "2024-02-15", true},
		{helpers.Mark(), "Q3 2024", "2024-07-01", true},
		{helpers.Mark(), "q3 2024", "2024-07-01", true},
		{helpers.Mark(), "2024", "2024-01-01", true},
		{helpers.Mark(), "2024-03-13", "2024-03-13", true},
		{helpers.Mark(), "2024-03-13 10:00:00", "2024-03-13", true},
		{helpers.Mark(), "Bali", "", false},
	}
	for _, tc := range cases {
		got, ok := parseBucketDate(tc.Input)
		if ok != tc.OK {
			t.Errorf("%sparseBucketDate(%q) ok == %v", tc.Pos, tc.Input, ok)
			continue
		}
		if !ok {
			continue
		}
		if diff := helpers.Diff(got.Format("2006-01-02"), tc.Expected); diff != "" {
			t.Errorf("%sparseBucketDate(%q) (-got, +want):\n%s", tc.Pos, tc.Input, diff)
		}
	}
}

func TestBucketStartAndLabel(t *testing.T) {
	date := time.Date(2024, 3, 13, 10, 30, 0, 0, time.UTC)
	cases := []struct {
		Pos           helpers.Pos
		Format        query.TruncFormat
		ExpectedStart string
		ExpectedLabel string
	}{
		{helpers.Mark(), query.TruncDay, "2024-03-13", "13 Mar 2024"},
		{helpers.Mark(), query.TruncWeek, "2024-03-11", "11 Mar 2024"},
		{helpers.Mark(), query.TruncMonth, "2024-03-01", "Mar 2024"},
		{helpers.Mark(), query.TruncQuarter, "2024-01-01", "Q1 2024"},
		{helpers.Mark(), query.TruncYear, "2024-01-01", "2024"},
	}
	for _, tc := range cases {
		start := bucketStart(date, tc.Format)
		if diff := helpers.Diff(start.Format("2006-01-02"), tc.ExpectedStart); diff != "" {
			t.Errorf("%sbucketStart(%s) (-got, +want):\n%s", tc.Pos, tc.Format, diff)
		}
		label := bucketLabel(date, tc.Format)
		if diff := helpers.Diff(label, tc.ExpectedLabel); diff != "" {
			t.Errorf("%sbucketLabel(%s) (-got, +want):\n%s", tc.Pos, tc.Format, diff)
		}
	}
}

func TestToFloat(t *testing.T) {
	cases := []struct {
		Pos      helpers.Pos
		Input    any
		Expected float64
		OK       bool
	}{
		{helpers.Mark(), 42, 42, true},
		{helpers.Mark(), int64(42), 42, true},
		{helpers.Mark(), uint8(3), 3, true},
		{helpers.Mark(), 4.5, 4.5, true},
		{helpers.Mark(), "4.5", 4.5, true},
		{helpers.Mark(), "nope", 0, false},
		{helpers.Mark(), nil, 0, false},
		{helpers.Mark(), true, 0, false},
	}
	for _, tc := range cases {
		got, ok := toFloat(tc.Input)
		if ok != tc.OK || got != tc.Expected {
			t.Errorf("%stoFloat(%v) == (%v, %v), expected (%v, %v)",
				tc.Pos, tc.Input, got, ok, tc.Expected, tc.OK)
		}
	}
}
