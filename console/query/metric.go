// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package query provides the declarative analysis model: metrics, dimensions,
// filters and sorts over one logical table. These types are special as they
// need the field catalog to be validated.
package query

import (
	"fmt"

	"quarry/common/schema"
)

// Metric is an aggregated numeric field of an analysis. It should be
// validated against the analysis table before use.
type Metric struct {
	// Field is the logical field to aggregate. Empty for a bare count or
	// when Expression is set.
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
	// Aggregation to apply to the field.
	Aggregation Aggregation `json:"aggregation,omitempty" yaml:"aggregation,omitempty"`
	// Expression bypasses field and aggregation and is used verbatim.
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty"`
	// Alias names the metric in the result. Defaults to the field name.
	Alias string `json:"alias,omitempty" yaml:"alias,omitempty"`

	validated bool
	resolved  schema.Field
}

func (m Metric) check() {
	if !m.validated {
		panic("metric not validated")
	}
}

// Name returns the result column name of the metric.
func (m Metric) Name() string {
	if m.Alias != "" {
		return m.Alias
	}
	if m.Field != "" {
		return m.Field
	}
	return "count"
}

// ResolvedField returns the catalog field the metric aggregates.
func (m Metric) ResolvedField() schema.Field {
	m.check()
	return m.resolved
}

// IsCumulative tells if the metric is a running total.
func (m Metric) IsCumulative() bool {
	return m.Aggregation == AggregationCumulativeSum
}

// Validate resolves the metric against the analysis table.
func (m *Metric) Validate(table *schema.Table) error {
	if m.Expression != "" {
		if m.Alias == "" {
			return fmt.Errorf("metric expression %q needs an alias", m.Expression)
		}
		m.validated = true
		return nil
	}
	if m.Aggregation == AggregationUnknown {
		return fmt.Errorf("metric %q has no aggregation", m.Name())
	}
	if m.Field == "" {
		if m.Aggregation != AggregationCount {
			return fmt.Errorf("metric %q needs a field", m.Name())
		}
		m.validated = true
		return nil
	}
	field, ok := table.LookupField(m.Field)
	if !ok {
		return fmt.Errorf("unknown field %q in table %q", m.Field, table.Name)
	}
	switch m.Aggregation {
	case AggregationSum, AggregationAvg, AggregationCumulativeSum:
		if field.Type != schema.FieldTypeNumeric {
			return fmt.Errorf("aggregation %s requires a numeric field, %q is %s",
				m.Aggregation, m.Field, field.Type)
		}
	}
	m.resolved = field
	m.validated = true
	return nil
}

// Dimension is a grouping field of an analysis, optionally date-truncated.
type Dimension struct {
	// Field is the logical field to group by.
	Field string `json:"field" yaml:"field"`
	// Format is the date truncation for date and datetime fields.
	Format TruncFormat `json:"format,omitempty" yaml:"format,omitempty"`
	// Alias names the dimension in the result. Defaults to the field name.
	Alias string `json:"alias,omitempty" yaml:"alias,omitempty"`

	validated bool
	resolved  schema.Field
}

func (d Dimension) check() {
	if !d.validated {
		panic("dimension not validated")
	}
}

// Name returns the result column name of the dimension.
func (d Dimension) Name() string {
	if d.Alias != "" {
		return d.Alias
	}
	return d.Field
}

// ResolvedField returns the catalog field the dimension groups on.
func (d Dimension) ResolvedField() schema.Field {
	d.check()
	return d.resolved
}

// Validate resolves the dimension against the analysis table.
func (d *Dimension) Validate(table *schema.Table) error {
	field, ok := table.LookupField(d.Field)
	if !ok {
		return fmt.Errorf("unknown field %q in table %q", d.Field, table.Name)
	}
	if d.Format != TruncNone && !field.Type.IsDate() {
		return fmt.Errorf("date format %s on non-date field %q", d.Format, d.Field)
	}
	d.resolved = field
	d.validated = true
	return nil
}

// Sort orders the result by a metric or dimension, referenced by result name.
type Sort struct {
	Field     string    `json:"field" yaml:"field"`
	Direction Direction `json:"direction" yaml:"direction"`
}
