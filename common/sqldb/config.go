// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package sqldb

// SourceConfiguration describes one external SQL source.
type SourceConfiguration struct {
	// Driver to use (postgres, mysql or sqlite)
	Driver string `validate:"required,oneof=postgres mysql sqlite"`
	// DSN to connect to the source
	DSN string `validate:"required"`
}

// Configuration describes the configuration of the SQL sources component.
// Sources are keyed by the dialect name tables reference them with.
type Configuration struct {
	Sources map[string]SourceConfiguration `validate:"dive"`
}

// DefaultConfiguration returns the default configuration of the SQL sources
// component. No source is configured by default.
func DefaultConfiguration() Configuration {
	return Configuration{}
}
