// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"testing"

	"quarry/common/daemon"
	"quarry/common/httpserver"
	"quarry/common/reporter"
	"quarry/common/schema"
	"quarry/console/authentication"
	"quarry/console/database"
)

func TestStartStop(t *testing.T) {
	r := reporter.NewMock(t)
	c, err := New(r, DefaultConfiguration(), Dependencies{
		Daemon:   daemon.NewMock(t),
		HTTP:     httpserver.NewMock(t, r),
		Schema:   schema.NewMock(t),
		Auth:     authentication.NewMock(t, r),
		Database: database.NewMock(t, r, database.DefaultConfiguration()),
	})
	if err != nil {
		t.Fatalf("New() error:\n%+v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start() error:\n%+v", err)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop() error:\n%+v", err)
	}
}
