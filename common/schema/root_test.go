// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package schema

import (
	"testing"

	"quarry/common/helpers"
)

func TestTables(t *testing.T) {
	c := NewMock(t)
	got := c.Tables()
	expected := []string{"booking_source", "bookings", "forecast", "occupancy"}
	if diff := helpers.Diff(got, expected); diff != "" {
		t.Errorf("Tables() (-got, +want):\n%s", diff)
	}
}

func TestLookupTable(t *testing.T) {
	c := NewMock(t)
	if _, err := c.LookupTable("nope"); err == nil {
		t.Errorf("LookupTable(nope) did not error")
	}
	table, err := c.LookupTable("bookings")
	if err != nil {
		t.Fatalf("LookupTable() error:\n%+v", err)
	}
	if table.Kind != SourceKindMart {
		t.Errorf("LookupTable() kind %s but expected mart", table.Kind)
	}

	field, ok := table.LookupField("amount")
	if !ok {
		t.Fatalf("LookupField(amount) not found")
	}
	if field.Column != "amount_total" {
		t.Errorf("LookupField(amount) column %q but expected amount_total", field.Column)
	}
	field, ok = table.LookupField("city")
	if !ok {
		t.Fatalf("LookupField(city) not found")
	}
	if field.Column != "city" {
		t.Errorf("LookupField(city) column %q, expected default to name", field.Column)
	}
}

func TestNewErrors(t *testing.T) {
	cases := []struct {
		Description string
		Tables      []Table
	}{
		{
			Description: "duplicate table",
			Tables: []Table{
				{Name: "a", Kind: SourceKindMart, StoreName: "a"},
				{Name: "a", Kind: SourceKindMart, StoreName: "a"},
			},
		}, {
			Description: "object without model",
			Tables:      []Table{{Name: "a", Kind: SourceKindObject}},
		}, {
			Description: "sql without query",
			Tables:      []Table{{Name: "a", Kind: SourceKindSQL}},
		}, {
			Description: "mart without store name",
			Tables:      []Table{{Name: "a", Kind: SourceKindMart}},
		}, {
			Description: "no kind",
			Tables:      []Table{{Name: "a"}},
		}, {
			Description: "duplicate field",
			Tables: []Table{
				{Name: "a", Kind: SourceKindMart, StoreName: "a", Fields: []Field{
					{Name: "x"}, {Name: "x"},
				}},
			},
		}, {
			Description: "unknown date field",
			Tables: []Table{
				{Name: "a", Kind: SourceKindMart, StoreName: "a", DateField: "nope"},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.Description, func(t *testing.T) {
			config := DefaultConfiguration()
			config.Tables = tc.Tables
			if _, err := New(config); err == nil {
				t.Errorf("New() did not error")
			}
		})
	}
}
