// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !release

package schema

import (
	"testing"
)

// NewMock creates a catalog component with a hotel-flavored set of tables
// covering the four source kinds.
func NewMock(t testing.TB) *Component {
	t.Helper()
	config := DefaultConfiguration()
	config.Tables = []Table{
		{
			Name:      "bookings",
			Kind:      SourceKindMart,
			Dialect:   DialectPostgres,
			StoreName: "mart_bookings",
			DateField: "check_in",
			Fields: []Field{
				{Name: "status", Type: FieldTypeSelection, Selection: map[string]string{
					"draft":     "Draft",
					"confirmed": "Confirmed",
					"cancelled": "Cancelled",
				}},
				{Name: "check_in", Type: FieldTypeDate},
				{Name: "created_at", Type: FieldTypeDatetime},
				{Name: "customer_name", Type: FieldTypeJSON, Origin: FieldOriginJSONB},
				{Name: "city", Type: FieldTypeString},
				{Name: "amount", Column: "amount_total", Type: FieldTypeNumeric},
				{Name: "nights", Type: FieldTypeNumeric},
			},
		},
		{
			Name:      "booking_source",
			Kind:      SourceKindSQL,
			Dialect:   DialectPostgres,
			Query:     "SELECT * FROM hotel_booking WHERE company_id IN #company_ids",
			DateField: "check_in",
			Fields: []Field{
				{Name: "status", Type: FieldTypeString},
				{Name: "check_in", Type: FieldTypeDate},
				{Name: "city", Type: FieldTypeString},
				{Name: "amount", Type: FieldTypeNumeric},
			},
		},
		{
			Name:      "occupancy",
			Kind:      SourceKindObject,
			Model:     "hotel.booking",
			DateField: "check_in",
			Fields: []Field{
				{Name: "status", Type: FieldTypeSelection, Selection: map[string]string{
					"draft":     "Draft",
					"confirmed": "Confirmed",
				}},
				{Name: "check_in", Type: FieldTypeDate},
				{Name: "room_id", Type: FieldTypeNumeric},
				{Name: "amount", Type: FieldTypeNumeric},
			},
		},
		{
			Name:      "forecast",
			Kind:      SourceKindDirect,
			StoreName: "forecast",
			Fields: []Field{
				{Name: "month", Type: FieldTypeDate},
				{Name: "city", Type: FieldTypeString},
				{Name: "projected", Type: FieldTypeNumeric},
			},
		},
	}
	c, err := New(config)
	if err != nil {
		t.Fatalf("New() error:\n%+v", err)
	}
	return c
}
