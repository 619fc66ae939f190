// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

// Configuration describes the configuration for the console component.
type Configuration struct {
	// Source is the SQL source name used for sql and mart tables.
	Source string `validate:"required"`
	// DefaultLimit caps the analyses that do not specify a limit.
	// 0 leaves them uncapped.
	DefaultLimit int `validate:"min=0"`
	// Version is the version to display to the user.
	Version string `yaml:"-"`
}

// DefaultConfiguration represents the default configuration for the console component.
func DefaultConfiguration() Configuration {
	return Configuration{
		Source: "main",
	}
}
