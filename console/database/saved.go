// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// SavedAnalysis represents a saved analysis in database. Definition is the
// serialized analysis, validated against the catalog before it is written.
type SavedAnalysis struct {
	ID         uint64 `json:"id"`
	User       string `gorm:"index" json:"user"`
	Shared     bool   `json:"shared"`
	Name       string `json:"name" binding:"required"`
	Table      string `json:"table" binding:"required"`
	Definition string `json:"definition" binding:"required"`
}

// ErrNotFound is reported when no saved analysis matches.
var ErrNotFound = errors.New("no matching saved analysis")

// CreateSavedAnalysis creates a new saved analysis in database.
func (c *Component) CreateSavedAnalysis(ctx context.Context, a SavedAnalysis) error {
	result := c.db.WithContext(ctx).Omit("ID").Create(&a)
	if result.Error != nil {
		return fmt.Errorf("unable to create new saved analysis: %w", result.Error)
	}
	return nil
}

// ListSavedAnalyses list all saved analyses for the provided user.
func (c *Component) ListSavedAnalyses(ctx context.Context, user string) ([]SavedAnalysis, error) {
	var results []SavedAnalysis
	result := c.db.WithContext(ctx).
		Where(&SavedAnalysis{User: user}).
		Or(&SavedAnalysis{Shared: true}).
		Find(&results)
	if result.Error != nil {
		return nil, fmt.Errorf("unable to retrieve saved analyses: %w", result.Error)
	}
	return results, nil
}

// GetSavedAnalysis returns one saved analysis visible to the provided user.
func (c *Component) GetSavedAnalysis(ctx context.Context, user string, id uint64) (SavedAnalysis, error) {
	var found SavedAnalysis
	result := c.db.WithContext(ctx).
		Where("id = ?", id).
		Where(c.db.Where(&SavedAnalysis{User: user}).Or(&SavedAnalysis{Shared: true})).
		First(&found)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return SavedAnalysis{}, ErrNotFound
	}
	if result.Error != nil {
		return SavedAnalysis{}, fmt.Errorf("unable to retrieve saved analysis: %w", result.Error)
	}
	return found, nil
}

// UpdateSavedAnalysis updates the definition of a saved analysis. The
// validate callback runs inside the transaction: when it rejects the new
// definition, the transaction rolls back and the stored analysis is
// untouched.
func (c *Component) UpdateSavedAnalysis(ctx context.Context, a SavedAnalysis, validate func(SavedAnalysis) error) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&SavedAnalysis{}).
			Where(&SavedAnalysis{ID: a.ID, User: a.User}).
			Updates(map[string]any{
				"name":       a.Name,
				"table":      a.Table,
				"definition": a.Definition,
				"shared":     a.Shared,
			})
		if result.Error != nil {
			return fmt.Errorf("unable to update saved analysis: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if validate != nil {
			if err := validate(a); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteSavedAnalysis deletes the provided saved analysis.
func (c *Component) DeleteSavedAnalysis(ctx context.Context, a SavedAnalysis) error {
	result := c.db.WithContext(ctx).Where(&SavedAnalysis{User: a.User}).Delete(&a)
	if result.Error != nil {
		return fmt.Errorf("cannot delete saved analysis: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

const systemUser = "__system"

// populate populates the database with the builtin analyses.
func (c *Component) populate() error {
	for _, builtin := range c.config.SavedAnalyses {
		c.r.Debug().Msgf("add builtin analysis %q", builtin.Name)
		saved := SavedAnalysis{
			User:       systemUser,
			Shared:     true,
			Name:       builtin.Name,
			Table:      builtin.Table,
			Definition: builtin.Definition,
		}
		result := c.db.Where(saved).FirstOrCreate(&saved)
		if result.Error != nil {
			return fmt.Errorf("unable to add builtin analysis: %w", result.Error)
		}
	}

	// Remove the builtin analyses gone from the configuration
	var results []SavedAnalysis
	result := c.db.Where(SavedAnalysis{User: systemUser, Shared: true}).Find(&results)
	if result.Error != nil {
		return fmt.Errorf("cannot get existing builtin analyses: %w", result.Error)
	}
outer:
	for _, existing := range results {
		for _, builtin := range c.config.SavedAnalyses {
			if builtin.Name == existing.Name && builtin.Table == existing.Table &&
				builtin.Definition == existing.Definition {
				continue outer
			}
		}
		c.r.Info().Msgf("remove old builtin analysis %q", existing.Name)
		if result := c.db.Delete(&existing); result.Error != nil {
			return fmt.Errorf("cannot delete old builtin analysis: %w", result.Error)
		}
	}

	return nil
}
