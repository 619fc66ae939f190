// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"quarry/common/httpserver"
	"quarry/common/reporter"
)

// addCommonHTTPHandlers configures the endpoints common to all
// commands: healthcheck, metrics and version.
func addCommonHTTPHandlers(r *reporter.Reporter, httpComponent *httpserver.Component) {
	httpComponent.AddHandler("/api/v0/metrics", r.MetricsHTTPHandler())
	httpComponent.GinRouter.GET("/api/v0/healthcheck", r.HealthcheckHTTPHandler)
	httpComponent.GinRouter.GET("/api/v0/version", versionHandler)
}
