// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package console exposes the analysis engine over HTTP: it compiles
// declarative analyses into queries against their sources and normalizes
// the results.
package console

import (
	"github.com/benbjohnson/clock"
	"gopkg.in/tomb.v2"

	"quarry/common/daemon"
	"quarry/common/httpserver"
	"quarry/common/reporter"
	"quarry/common/schema"
	"quarry/console/authentication"
	"quarry/console/database"
)

// Component represents the console component.
type Component struct {
	r      *reporter.Reporter
	d      *Dependencies
	t      tomb.Tomb
	config Configuration

	metrics struct {
		backendQueries *reporter.CounterVec
	}
}

// Dependencies define the dependencies of the console component. The
// backend capabilities are optional: a table whose capability is missing
// has no queryable source.
type Dependencies struct {
	Daemon   daemon.Component
	HTTP     *httpserver.Component
	Schema   *schema.Component
	Auth     *authentication.Component
	Database *database.Component
	Clock    clock.Clock

	SQL         SQLExecutor
	ClickHouse  ClickHouseExecutor
	ObjectStore ObjectStore
	Frames      FrameProvider
}

// New creates a new console component.
func New(r *reporter.Reporter, config Configuration, dependencies Dependencies) (*Component, error) {
	if dependencies.Clock == nil {
		dependencies.Clock = clock.New()
	}
	c := Component{
		r:      r,
		d:      &dependencies,
		config: config,
	}

	c.d.Daemon.Track(&c.t, "console")

	c.metrics.backendQueries = c.r.CounterVec(
		reporter.CounterOpts{
			Name: "backend_queries_total",
			Help: "Number of queries executed by each backend.",
		}, []string{"backend"},
	)
	return &c, nil
}

// Start starts the console component.
func (c *Component) Start() error {
	c.r.Info().Msg("starting console component")

	endpoint := c.d.HTTP.GinRouter.Group("/api/v0/console", c.d.Auth.UserAuthentication())
	endpoint.GET("/configuration", c.configHandlerFunc)
	endpoint.POST("/analysis/data", c.analysisDataHandlerFunc)
	endpoint.POST("/analysis/preview", c.analysisPreviewHandlerFunc)
	endpoint.GET("/analysis/saved", c.analysisSavedListHandlerFunc)
	endpoint.POST("/analysis/saved", c.analysisSavedAddHandlerFunc)
	endpoint.PUT("/analysis/saved/:id", c.analysisSavedUpdateHandlerFunc)
	endpoint.DELETE("/analysis/saved/:id", c.analysisSavedDeleteHandlerFunc)
	endpoint.GET("/user/info", c.d.Auth.UserInfoHandlerFunc)

	// The tomb needs at least one goroutine or Wait() would hang.
	c.t.Go(func() error {
		<-c.t.Dying()
		return nil
	})

	return nil
}

// Stop stops the console component.
func (c *Component) Stop() error {
	defer c.r.Info().Msg("console component stopped")
	c.r.Info().Msg("stopping console component")
	c.t.Kill(nil)
	return c.t.Wait()
}
