// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package database

import (
	"context"
	"errors"
	"testing"

	"quarry/common/helpers"
	"quarry/common/reporter"
)

func TestSavedAnalyses(t *testing.T) {
	r := reporter.NewMock(t)
	c := NewMock(t, r, DefaultConfiguration())
	ctx := context.Background()

	booked := SavedAnalysis{
		User:       "alfred",
		Name:       "Booked nights",
		Table:      "bookings",
		Definition: `{"table":"bookings","metrics":[{"field":"nights","aggregation":"sum"}]}`,
	}
	shared := SavedAnalysis{
		User:       "bruce",
		Shared:     true,
		Name:       "Revenue by city",
		Table:      "bookings",
		Definition: `{"table":"bookings","metrics":[{"field":"amount","aggregation":"sum"}],"dimensions":[{"field":"city"}]}`,
	}
	private := SavedAnalysis{
		User:       "bruce",
		Name:       "Secret",
		Table:      "bookings",
		Definition: `{"table":"bookings","metrics":[{"aggregation":"count"}]}`,
	}
	for _, analysis := range []SavedAnalysis{booked, shared, private} {
		if err := c.CreateSavedAnalysis(ctx, analysis); err != nil {
			t.Fatalf("CreateSavedAnalysis() error:\n%+v", err)
		}
	}

	got, err := c.ListSavedAnalyses(ctx, "alfred")
	if err != nil {
		t.Fatalf("ListSavedAnalyses() error:\n%+v", err)
	}
	names := []string{}
	for _, analysis := range got {
		names = append(names, analysis.Name)
	}
	if diff := helpers.Diff(names, []string{"Booked nights", "Revenue by city"}); diff != "" {
		t.Fatalf("ListSavedAnalyses() (-got, +want):\n%s", diff)
	}

	t.Run("get", func(t *testing.T) {
		found, err := c.GetSavedAnalysis(ctx, "alfred", got[1].ID)
		if err != nil {
			t.Fatalf("GetSavedAnalysis() error:\n%+v", err)
		}
		if found.Name != "Revenue by city" {
			t.Errorf("GetSavedAnalysis() name == %q", found.Name)
		}
		if _, err := c.GetSavedAnalysis(ctx, "alfred", 7878); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetSavedAnalysis() error %v, expected %v", err, ErrNotFound)
		}
	})

	t.Run("update rolls back on validation error", func(t *testing.T) {
		update := got[0]
		update.Definition = `{"table":"nope"}`
		err := c.UpdateSavedAnalysis(ctx, update, func(SavedAnalysis) error {
			return errors.New("unknown table")
		})
		if err == nil {
			t.Fatal("UpdateSavedAnalysis() did not error")
		}
		found, err := c.GetSavedAnalysis(ctx, "alfred", update.ID)
		if err != nil {
			t.Fatalf("GetSavedAnalysis() error:\n%+v", err)
		}
		if found.Definition != booked.Definition {
			t.Errorf("UpdateSavedAnalysis() did not roll back:\n%s", found.Definition)
		}
	})

	t.Run("update", func(t *testing.T) {
		update := got[0]
		update.Name = "Booked nights (v2)"
		if err := c.UpdateSavedAnalysis(ctx, update, nil); err != nil {
			t.Fatalf("UpdateSavedAnalysis() error:\n%+v", err)
		}
		found, _ := c.GetSavedAnalysis(ctx, "alfred", update.ID)
		if found.Name != "Booked nights (v2)" {
			t.Errorf("UpdateSavedAnalysis() name == %q", found.Name)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := c.DeleteSavedAnalysis(ctx, got[0]); err != nil {
			t.Fatalf("DeleteSavedAnalysis() error:\n%+v", err)
		}
		if err := c.DeleteSavedAnalysis(ctx, got[0]); !errors.Is(err, ErrNotFound) {
			t.Fatalf("DeleteSavedAnalysis() error %v, expected %v", err, ErrNotFound)
		}
	})
}

func TestBuiltinAnalyses(t *testing.T) {
	r := reporter.NewMock(t)
	config := DefaultConfiguration()
	config.SavedAnalyses = []BuiltinAnalysis{
		{
			Name:       "Occupancy by status",
			Table:      "occupancy",
			Definition: `{"table":"occupancy","metrics":[{"aggregation":"count"}],"dimensions":[{"field":"status"}]}`,
		},
	}
	c := NewMock(t, r, config)

	got, err := c.ListSavedAnalyses(context.Background(), "alfred")
	if err != nil {
		t.Fatalf("ListSavedAnalyses() error:\n%+v", err)
	}
	if len(got) != 1 || got[0].User != "__system" || !got[0].Shared {
		t.Fatalf("ListSavedAnalyses() == %+v", got)
	}
}
