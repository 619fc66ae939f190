// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package database persists saved analyses in a small relational database.
package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"quarry/common/reporter"
	"quarry/common/sqldb"
)

// Component represents the database component.
type Component struct {
	r      *reporter.Reporter
	config Configuration

	db *gorm.DB
}

// New creates a new database component.
func New(r *reporter.Reporter, configuration Configuration) (*Component, error) {
	c := Component{
		r:      r,
		config: configuration,
	}
	var dialector gorm.Dialector
	switch c.config.Driver {
	case "sqlite":
		dialector = sqlite.Open(c.config.DSN)
	case "postgres":
		dialector = postgres.Open(c.config.DSN)
	default:
		return nil, fmt.Errorf("%q is not a supported driver", c.config.Driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: sqldb.NewLogger(r),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	c.db = db
	return &c, nil
}

// Start starts the database component.
func (c *Component) Start() error {
	c.r.Info().Msg("starting database component")
	if err := c.db.AutoMigrate(&SavedAnalysis{}); err != nil {
		return fmt.Errorf("cannot migrate database: %w", err)
	}
	return c.populate()
}

// Stop stops the database component.
func (c *Component) Stop() error {
	defer c.r.Info().Msg("database component stopped")
	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
