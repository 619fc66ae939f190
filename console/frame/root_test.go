// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package frame_test

import (
	"testing"

	"quarry/common/helpers"
	"quarry/console/frame"
	"quarry/console/query"
)

func testFrame() *frame.Frame {
	return &frame.Frame{
		Columns: []string{"city", "status", "amount"},
		Rows: []map[string]any{
			{"city": "Paris", "status": "confirmed", "amount": float64(100)},
			{"city": "Paris", "status": "draft", "amount": float64(50)},
			{"city": "Lyon", "status": "confirmed", "amount": float64(30)},
			{"city": "Lyon", "status": "confirmed", "amount": float64(20)},
		},
	}
}

func TestFilter(t *testing.T) {
	f := testFrame()
	if err := f.Filter(`status == "confirmed" and amount >= 30`); err != nil {
		t.Fatalf("Filter() error:\n%+v", err)
	}
	expected := []map[string]any{
		{"city": "Paris", "status": "confirmed", "amount": float64(100)},
		{"city": "Lyon", "status": "confirmed", "amount": float64(30)},
	}
	if diff := helpers.Diff(f.Rows, expected); diff != "" {
		t.Fatalf("Filter() (-got, +want):\n%s", diff)
	}
}

func TestFilterInvalidExpression(t *testing.T) {
	f := testFrame()
	if err := f.Filter(`status ==`); err == nil {
		t.Fatalf("Filter() did not error on invalid expression")
	}
}

func TestGroupBy(t *testing.T) {
	f := testFrame()
	f.GroupBy([]string{"city"}, []frame.Aggregate{
		{Name: "amount", Column: "amount", Kind: query.AggregationSum},
		{Name: "bookings", Kind: query.AggregationCount},
		{Name: "statuses", Column: "status", Kind: query.AggregationCountDistinct},
		{Name: "average", Column: "amount", Kind: query.AggregationAvg},
	})
	expected := []map[string]any{
		{"city": "Paris", "amount": float64(150), "bookings": float64(2), "statuses": float64(2), "average": float64(75)},
		{"city": "Lyon", "amount": float64(50), "bookings": float64(2), "statuses": float64(1), "average": float64(25)},
	}
	if diff := helpers.Diff(f.Rows, expected); diff != "" {
		t.Fatalf("GroupBy() (-got, +want):\n%s", diff)
	}
	expectedColumns := []string{"city", "amount", "bookings", "statuses", "average"}
	if diff := helpers.Diff(f.Columns, expectedColumns); diff != "" {
		t.Fatalf("GroupBy() columns (-got, +want):\n%s", diff)
	}
}

func TestSortAndHead(t *testing.T) {
	f := testFrame()
	f.Sort([]query.Sort{
		{Field: "city", Direction: query.DirectionAsc},
		{Field: "amount", Direction: query.DirectionDesc},
	})
	f.Head(3)
	expected := []map[string]any{
		{"city": "Lyon", "status": "confirmed", "amount": float64(30)},
		{"city": "Lyon", "status": "confirmed", "amount": float64(20)},
		{"city": "Paris", "status": "confirmed", "amount": float64(100)},
	}
	if diff := helpers.Diff(f.Rows, expected); diff != "" {
		t.Fatalf("Sort()+Head() (-got, +want):\n%s", diff)
	}
}
