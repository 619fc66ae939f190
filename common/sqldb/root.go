// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package sqldb maintains connection pools to the external SQL sources
// analyses are executed against.
package sqldb

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"quarry/common/reporter"
)

// Component represents the SQL sources component.
type Component struct {
	r      *reporter.Reporter
	config Configuration

	pools map[string]*gorm.DB
}

// New creates a new SQL sources component.
func New(r *reporter.Reporter, configuration Configuration) (*Component, error) {
	c := Component{
		r:      r,
		config: configuration,
		pools:  make(map[string]*gorm.DB),
	}
	for name, source := range configuration.Sources {
		var dialector gorm.Dialector
		switch source.Driver {
		case "postgres":
			dialector = postgres.Open(source.DSN)
		case "mysql":
			dialector = mysql.Open(source.DSN)
		case "sqlite":
			dialector = sqlite.Open(source.DSN)
		default:
			return nil, fmt.Errorf("source %q: %q is not a supported driver", name, source.Driver)
		}
		db, err := gorm.Open(dialector, &gorm.Config{
			Logger: NewLogger(r),
		})
		if err != nil {
			return nil, fmt.Errorf("source %q: unable to open database: %w", name, err)
		}
		c.pools[name] = db
	}
	return &c, nil
}

// Start starts the SQL sources component.
func (c *Component) Start() error {
	c.r.Info().Msg("starting SQL sources component")
	return nil
}

// Stop stops the SQL sources component.
func (c *Component) Stop() error {
	defer c.r.Info().Msg("SQL sources component stopped")
	for _, db := range c.pools {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs a query against the named source and returns generic row maps.
func (c *Component) Execute(ctx context.Context, source string, query string) ([]map[string]any, error) {
	db, ok := c.pools[source]
	if !ok {
		return nil, fmt.Errorf("no configured SQL source %q", source)
	}
	results := []map[string]any{}
	if err := db.WithContext(ctx).Raw(query).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
