// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package authentication identifies the requesting user from HTTP headers
// set by a reverse proxy. It does not authenticate anything by itself.
package authentication

import "quarry/common/reporter"

// Component represents the authentication component.
type Component struct {
	r      *reporter.Reporter
	config Configuration
}

// New creates a new authentication component.
func New(r *reporter.Reporter, configuration Configuration) (*Component, error) {
	c := Component{
		r:      r,
		config: configuration,
	}

	return &c, nil
}
