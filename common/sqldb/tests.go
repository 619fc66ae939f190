// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !release

package sqldb

import (
	"testing"

	"quarry/common/helpers"
	"quarry/common/reporter"
)

// NewMock creates a SQL sources component with a single in-memory sqlite
// source named "test".
func NewMock(t *testing.T, r *reporter.Reporter) *Component {
	t.Helper()
	config := Configuration{
		Sources: map[string]SourceConfiguration{
			"test": {Driver: "sqlite", DSN: ":memory:"},
		},
	}
	c, err := New(r, config)
	if err != nil {
		t.Fatalf("New() error:\n%+v", err)
	}
	helpers.StartStop(t, c)
	return c
}
