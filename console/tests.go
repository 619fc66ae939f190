// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !release

package console

import (
	"context"
	"fmt"
	"testing"

	"github.com/benbjohnson/clock"

	"quarry/common/daemon"
	"quarry/common/helpers"
	"quarry/common/httpserver"
	"quarry/common/reporter"
	"quarry/common/schema"
	"quarry/console/authentication"
	"quarry/console/database"
	"quarry/console/frame"
)

// ObjectStoreMock is an object store returning canned rows and recording
// the last request.
type ObjectStoreMock struct {
	Rows []map[string]any
	Err  error

	GotRequest ReadGroupRequest
}

// ReadGroup implements ObjectStore.
func (m *ObjectStoreMock) ReadGroup(_ context.Context, req ReadGroupRequest) ([]map[string]any, error) {
	m.GotRequest = req
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Rows, nil
}

// FrameProviderMock serves frames from a map.
type FrameProviderMock struct {
	Frames map[string]*frame.Frame
}

// Frame implements FrameProvider.
func (m *FrameProviderMock) Frame(_ context.Context, store string) (*frame.Frame, error) {
	f, ok := m.Frames[store]
	if !ok {
		return nil, fmt.Errorf("unknown frame %q", store)
	}
	return f, nil
}

// SQLExecutorMock records the executed queries and answers them with the
// RowsFunc callback, or with Rows when unset.
type SQLExecutorMock struct {
	Rows     []map[string]any
	RowsFunc func(query string) ([]map[string]any, error)

	GotQueries []string
}

// Execute implements SQLExecutor.
func (m *SQLExecutorMock) Execute(_ context.Context, _ string, query string) ([]map[string]any, error) {
	m.GotQueries = append(m.GotQueries, query)
	if m.RowsFunc != nil {
		return m.RowsFunc(query)
	}
	return m.Rows, nil
}

// ClickHouseExecutorMock records the executed queries and returns canned rows.
type ClickHouseExecutorMock struct {
	Rows []map[string]any
	Err  error

	GotQueries []string
}

// QueryRows implements ClickHouseExecutor.
func (m *ClickHouseExecutorMock) QueryRows(_ context.Context, query string) ([]map[string]any, error) {
	m.GotQueries = append(m.GotQueries, query)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Rows, nil
}

// Mocks bundles the fake backends of a mocked console component.
type Mocks struct {
	Object     *ObjectStoreMock
	Frames     *FrameProviderMock
	SQL        *SQLExecutorMock
	ClickHouse *ClickHouseExecutorMock
	Clock      *clock.Mock
}

// NewMock instantiates a new console component with fake backends.
func NewMock(t *testing.T, config Configuration) (*Component, *httpserver.Component, *Mocks) {
	t.Helper()
	r := reporter.NewMock(t)
	h := httpserver.NewMock(t, r)
	mocks := &Mocks{
		Object:     &ObjectStoreMock{},
		Frames:     &FrameProviderMock{Frames: map[string]*frame.Frame{}},
		SQL:        &SQLExecutorMock{},
		ClickHouse: &ClickHouseExecutorMock{},
		Clock:      clock.NewMock(),
	}
	c, err := New(r, config, Dependencies{
		Daemon:      daemon.NewMock(t),
		HTTP:        h,
		Schema:      schema.NewMock(t),
		Auth:        authentication.NewMock(t, r),
		Database:    database.NewMock(t, r, database.DefaultConfiguration()),
		Clock:       mocks.Clock,
		SQL:         mocks.SQL,
		ClickHouse:  mocks.ClickHouse,
		ObjectStore: mocks.Object,
		Frames:      mocks.Frames,
	})
	if err != nil {
		t.Fatalf("New() error:\n%+v", err)
	}
	helpers.StartStop(t, c)
	return c, h, mocks
}
