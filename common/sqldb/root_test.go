// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package sqldb

import (
	"context"
	"testing"

	"quarry/common/helpers"
	"quarry/common/reporter"
)

func TestExecute(t *testing.T) {
	r := reporter.NewMock(t)
	c := NewMock(t, r)
	ctx := context.Background()

	for _, stmt := range []string{
		`CREATE TABLE bookings (city TEXT, amount INTEGER)`,
		`INSERT INTO bookings VALUES ('Paris', 100), ('Paris', 50), ('Lyon', 30)`,
	} {
		if _, err := c.Execute(ctx, "test", stmt); err != nil {
			t.Fatalf("Execute(%q) error:\n%+v", stmt, err)
		}
	}

	got, err := c.Execute(ctx,
		"test", "SELECT city, SUM(amount) AS amount FROM bookings GROUP BY city ORDER BY city")
	if err != nil {
		t.Fatalf("Execute() error:\n%+v", err)
	}
	expected := []map[string]any{
		{"city": "Lyon", "amount": int64(30)},
		{"city": "Paris", "amount": int64(150)},
	}
	if diff := helpers.Diff(got, expected); diff != "" {
		t.Fatalf("Execute() (-got, +want):\n%s", diff)
	}
}

func TestUnknownSource(t *testing.T) {
	r := reporter.NewMock(t)
	c := NewMock(t, r)
	if _, err := c.Execute(context.Background(), "nope", "SELECT 1"); err == nil {
		t.Fatalf("Execute() on unknown source did not error")
	}
}

func TestUnsupportedDriver(t *testing.T) {
	r := reporter.NewMock(t)
	_, err := New(r, Configuration{
		Sources: map[string]SourceConfiguration{
			"bad": {Driver: "oracle", DSN: "whatever"},
		},
	})
	if err == nil {
		t.Fatalf("New() with unsupported driver did not error")
	}
}
