// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package schema is the read-only field catalog: the set of logical tables an
// analysis can be declared over, with the fields each table exposes, their
// semantic types and how they map to the underlying source.
package schema

import (
	"fmt"
	"sort"
)

// Field describes one field of a logical table.
type Field struct {
	// Name is the logical name used in analyses.
	Name string `validate:"required"`
	// Column is the physical column or expression. Defaults to Name.
	Column string
	// Type is the semantic type of the field.
	Type FieldType
	// Origin tells how the field is stored.
	Origin FieldOrigin
	// Selection maps stored codes to human labels for selection fields.
	Selection map[string]string
}

// Table describes one logical table.
type Table struct {
	// Name is the logical table name.
	Name string `validate:"required"`
	// Kind selects the backend the table is queried through.
	Kind SourceKind
	// Dialect is the SQL dialect for sql and mart tables.
	Dialect Dialect
	// Model is the object-store model name for object tables.
	Model string
	// StoreName is the physical table name for mart tables and the frame
	// name for direct tables.
	StoreName string
	// Query is the raw query text for sql tables, used as a subquery.
	Query string
	// DateField is the field a date filter applies to by default.
	DateField string
	// Fields is the ordered list of fields.
	Fields []Field

	fieldIndex map[string]*Field
}

// Component represents the field catalog.
type Component struct {
	c Configuration

	tables map[string]*Table
	names  []string
}

// New creates a new catalog component from its configuration.
func New(config Configuration) (*Component, error) {
	c := Component{
		c:      config,
		tables: make(map[string]*Table),
	}
	for i := range config.Tables {
		table := config.Tables[i]
		if _, ok := c.tables[table.Name]; ok {
			return nil, fmt.Errorf("duplicate table %q", table.Name)
		}
		if err := table.finalize(); err != nil {
			return nil, err
		}
		c.tables[table.Name] = &table
		c.names = append(c.names, table.Name)
	}
	sort.Strings(c.names)
	return &c, nil
}

func (t *Table) finalize() error {
	switch t.Kind {
	case SourceKindObject:
		if t.Model == "" {
			return fmt.Errorf("table %q: object tables need a model", t.Name)
		}
	case SourceKindSQL:
		if t.Query == "" {
			return fmt.Errorf("table %q: sql tables need a query", t.Name)
		}
	case SourceKindMart, SourceKindDirect:
		if t.StoreName == "" {
			return fmt.Errorf("table %q: %s tables need a store name", t.Name, t.Kind)
		}
	default:
		return fmt.Errorf("table %q: no source kind", t.Name)
	}
	t.fieldIndex = make(map[string]*Field, len(t.Fields))
	for i := range t.Fields {
		field := &t.Fields[i]
		if field.Column == "" {
			field.Column = field.Name
		}
		if _, ok := t.fieldIndex[field.Name]; ok {
			return fmt.Errorf("table %q: duplicate field %q", t.Name, field.Name)
		}
		t.fieldIndex[field.Name] = field
	}
	if t.DateField != "" {
		if _, ok := t.fieldIndex[t.DateField]; !ok {
			return fmt.Errorf("table %q: unknown date field %q", t.Name, t.DateField)
		}
	}
	return nil
}

// Tables returns the sorted list of table names.
func (c *Component) Tables() []string {
	return c.names
}

// LookupTable returns a table by logical name.
func (c *Component) LookupTable(name string) (*Table, error) {
	table, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTable, name)
	}
	return table, nil
}

// Locales returns the configured locale codes, most preferred first.
func (c *Component) Locales() []string {
	return c.c.Locales
}

// LookupField returns a field of the table by logical name.
func (t *Table) LookupField(name string) (Field, bool) {
	field, ok := t.fieldIndex[name]
	if !ok {
		return Field{}, false
	}
	return *field, true
}
