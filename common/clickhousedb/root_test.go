// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package clickhousedb

import (
	"context"
	"testing"

	"quarry/common/helpers"
	"quarry/common/reporter"
)

func TestQueryRows(t *testing.T) {
	r := reporter.NewMock(t)
	c := SetupClickHouse(t, r)

	got, err := c.QueryRows(context.Background(),
		"SELECT number AS n, toString(number) AS label FROM numbers(3)")
	if err != nil {
		t.Fatalf("QueryRows() error:\n%+v", err)
	}
	expected := []map[string]any{
		{"n": uint64(0), "label": "0"},
		{"n": uint64(1), "label": "1"},
		{"n": uint64(2), "label": "2"},
	}
	if diff := helpers.Diff(got, expected); diff != "" {
		t.Fatalf("QueryRows() (-got, +want):\n%s", diff)
	}
}
