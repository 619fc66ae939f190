// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package database

// Configuration describes the configuration for the database component.
type Configuration struct {
	// Driver is the database driver to use: sqlite or postgres.
	Driver string `validate:"required,oneof=sqlite postgres"`
	// DSN tells how to connect to the database.
	DSN string `validate:"required"`
	// SavedAnalyses is the list of builtin analyses to save in the
	// database on start.
	SavedAnalyses []BuiltinAnalysis
}

// BuiltinAnalysis is a saved analysis shipped with the configuration.
type BuiltinAnalysis struct {
	Name       string `validate:"required"`
	Table      string `validate:"required"`
	Definition string `validate:"required"`
}

// DefaultConfiguration represents the default configuration for the database component.
func DefaultConfiguration() Configuration {
	return Configuration{
		Driver: "sqlite",
		DSN:    "file::memory:?cache=shared",
	}
}
