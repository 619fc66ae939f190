// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package query

import (
	"fmt"

	"quarry/common/schema"
)

// Analysis is a declarative query over one logical table: metrics to
// aggregate, dimensions to group by, a predicate, sorts and a row limit.
// It should be validated against the catalog before compilation. Concurrent
// reads are safe; mutation is serialized by the caller.
type Analysis struct {
	// Table is the logical table name.
	Table string `json:"table" yaml:"table"`
	// Metrics is the list of aggregated fields.
	Metrics []Metric `json:"metrics" yaml:"metrics"`
	// Dimensions is the ordered list of grouping fields. The order is
	// significant: dimensions after the first form the cumulative-sum
	// group key.
	Dimensions []Dimension `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
	// Filters is the ordered clause list of the static predicate.
	Filters []Filter `json:"filters,omitempty" yaml:"filters,omitempty"`
	// Sorts orders the result.
	Sorts []Sort `json:"sorts,omitempty" yaml:"sorts,omitempty"`
	// DateFilter restricts the analysis to a date range.
	DateFilter *DateFilter `json:"date_filter,omitempty" yaml:"date_filter,omitempty"`
	// Limit caps the number of result rows. 0 means no limit.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Validate resolves the analysis against the catalog and returns its table.
func (a *Analysis) Validate(catalog *schema.Component) (*schema.Table, error) {
	table, err := catalog.LookupTable(a.Table)
	if err != nil {
		return nil, err
	}
	for i := range a.Metrics {
		if err := a.Metrics[i].Validate(table); err != nil {
			return nil, err
		}
	}
	for i := range a.Dimensions {
		if err := a.Dimensions[i].Validate(table); err != nil {
			return nil, err
		}
	}
	for i := range a.Filters {
		if err := a.Filters[i].Validate(table); err != nil {
			return nil, err
		}
	}
	if a.DateFilter != nil {
		if err := a.DateFilter.Validate(table); err != nil {
			return nil, err
		}
	}
	for _, sort := range a.Sorts {
		if !a.hasResultColumn(sort.Field) {
			return nil, fmt.Errorf("sort on %q which is neither a metric nor a dimension", sort.Field)
		}
	}
	return table, nil
}

func (a *Analysis) hasResultColumn(name string) bool {
	for i := range a.Metrics {
		if a.Metrics[i].Name() == name {
			return true
		}
	}
	for i := range a.Dimensions {
		if a.Dimensions[i].Name() == name {
			return true
		}
	}
	return false
}

func (a *Analysis) sortDependsOn(name string) bool {
	for _, sort := range a.Sorts {
		if sort.Field == name {
			return true
		}
	}
	return false
}

// SetMetricField changes the field of a metric. A metric referenced by a sort
// cannot change identity; the dependent sorts have to be removed first.
func (a *Analysis) SetMetricField(index int, field string) error {
	if index < 0 || index >= len(a.Metrics) {
		return fmt.Errorf("no metric at index %d", index)
	}
	metric := &a.Metrics[index]
	if a.sortDependsOn(metric.Name()) {
		return fmt.Errorf("%w: metric %q", ErrSortDependency, metric.Name())
	}
	metric.Field = field
	metric.validated = false
	return nil
}

// RemoveMetric removes a metric. A metric referenced by a sort cannot be
// removed; the dependent sorts have to be removed first.
func (a *Analysis) RemoveMetric(index int) error {
	if index < 0 || index >= len(a.Metrics) {
		return fmt.Errorf("no metric at index %d", index)
	}
	if a.sortDependsOn(a.Metrics[index].Name()) {
		return fmt.Errorf("%w: metric %q", ErrSortDependency, a.Metrics[index].Name())
	}
	a.Metrics = append(a.Metrics[:index], a.Metrics[index+1:]...)
	return nil
}

// SetDimensionField changes the field of a dimension, with the same sort
// dependency precondition as SetMetricField.
func (a *Analysis) SetDimensionField(index int, field string) error {
	if index < 0 || index >= len(a.Dimensions) {
		return fmt.Errorf("no dimension at index %d", index)
	}
	dimension := &a.Dimensions[index]
	if a.sortDependsOn(dimension.Name()) {
		return fmt.Errorf("%w: dimension %q", ErrSortDependency, dimension.Name())
	}
	dimension.Field = field
	dimension.validated = false
	return nil
}

// RemoveDimension removes a dimension, with the same sort dependency
// precondition as RemoveMetric.
func (a *Analysis) RemoveDimension(index int) error {
	if index < 0 || index >= len(a.Dimensions) {
		return fmt.Errorf("no dimension at index %d", index)
	}
	if a.sortDependsOn(a.Dimensions[index].Name()) {
		return fmt.Errorf("%w: dimension %q", ErrSortDependency, a.Dimensions[index].Name())
	}
	a.Dimensions = append(a.Dimensions[:index], a.Dimensions[index+1:]...)
	return nil
}

// RemoveSort removes every sort referencing the given result column.
func (a *Analysis) RemoveSort(name string) {
	sorts := a.Sorts[:0]
	for _, sort := range a.Sorts {
		if sort.Field != name {
			sorts = append(sorts, sort)
		}
	}
	a.Sorts = sorts
}
