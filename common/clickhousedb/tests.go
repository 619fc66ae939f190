// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !release

package clickhousedb

import (
	"testing"
	"time"

	"quarry/common/daemon"
	"quarry/common/helpers"
	"quarry/common/reporter"
)

// SetupClickHouse configures a client to use for testing. The test is skipped
// when no ClickHouse server is reachable.
func SetupClickHouse(t *testing.T, r *reporter.Reporter) *Component {
	t.Helper()
	chServer := helpers.CheckExternalService(t, "ClickHouse", []string{"clickhouse", "localhost"}, "9000")
	config := DefaultConfiguration()
	config.Servers = []string{chServer}
	config.DialTimeout = 100 * time.Millisecond
	c, err := New(r, config, Dependencies{Daemon: daemon.NewMock(t)})
	if err != nil {
		t.Fatalf("New() error:\n%+v", err)
	}
	helpers.StartStop(t, c)
	return c
}
