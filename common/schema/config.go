// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package schema

// Configuration describes the catalog configuration.
type Configuration struct {
	// Locales is the ordered list of locale codes used to expand and
	// flatten JSON-origin fields.
	Locales []string `validate:"min=1,dive,required"`
	// Tables is the list of logical tables.
	Tables []Table `validate:"dive"`
}

// DefaultConfiguration returns the default configuration of the catalog.
func DefaultConfiguration() Configuration {
	return Configuration{
		Locales: []string{"en_US"},
	}
}
