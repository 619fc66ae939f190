// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package schema

import (
	"errors"
	"fmt"
	"strings"
)

// FieldType is the semantic type of a field.
type FieldType int

// List of available field types.
const (
	FieldTypeUnknown FieldType = iota
	FieldTypeString
	FieldTypeNumeric
	FieldTypeDate
	FieldTypeDatetime
	FieldTypeSelection
	FieldTypeJSON
)

var fieldTypeMap = map[string]FieldType{
	"string":    FieldTypeString,
	"numeric":   FieldTypeNumeric,
	"date":      FieldTypeDate,
	"datetime":  FieldTypeDatetime,
	"selection": FieldTypeSelection,
	"json":      FieldTypeJSON,
}

// String returns the name of a field type.
func (ft FieldType) String() string {
	for k, v := range fieldTypeMap {
		if v == ft {
			return k
		}
	}
	return "unknown"
}

// MarshalText turns a field type into a string.
func (ft FieldType) MarshalText() ([]byte, error) {
	return []byte(ft.String()), nil
}

// UnmarshalText parses a field type from a string.
func (ft *FieldType) UnmarshalText(input []byte) error {
	got, ok := fieldTypeMap[strings.ToLower(string(input))]
	if !ok {
		return fmt.Errorf("unknown field type %q", string(input))
	}
	*ft = got
	return nil
}

// IsDate tells if the field type carries a calendar value.
func (ft FieldType) IsDate() bool {
	return ft == FieldTypeDate || ft == FieldTypeDatetime
}

// FieldOrigin tells how a field is stored.
type FieldOrigin int

// List of available field origins.
const (
	// FieldOriginPlain is a regular column.
	FieldOriginPlain FieldOrigin = iota
	// FieldOriginJSONB is a column stored as a JSON object keyed by locale.
	FieldOriginJSONB
)

// String returns the name of a field origin.
func (fo FieldOrigin) String() string {
	if fo == FieldOriginJSONB {
		return "jsonb"
	}
	return "plain"
}

// MarshalText turns a field origin into a string.
func (fo FieldOrigin) MarshalText() ([]byte, error) {
	return []byte(fo.String()), nil
}

// UnmarshalText parses a field origin from a string.
func (fo *FieldOrigin) UnmarshalText(input []byte) error {
	switch strings.ToLower(string(input)) {
	case "", "plain":
		*fo = FieldOriginPlain
	case "jsonb":
		*fo = FieldOriginJSONB
	default:
		return fmt.Errorf("unknown field origin %q", string(input))
	}
	return nil
}

// SourceKind tells which backend a table is queried through.
type SourceKind int

// List of available source kinds.
const (
	SourceKindUnknown SourceKind = iota
	// SourceKindObject is a model in the object-relational store.
	SourceKindObject
	// SourceKindSQL is a raw SQL query used as a subquery.
	SourceKindSQL
	// SourceKindMart is a materialized table refreshed externally.
	SourceKindMart
	// SourceKindDirect is an in-memory frame produced by a script.
	SourceKindDirect
)

var sourceKindMap = map[string]SourceKind{
	"object": SourceKindObject,
	"sql":    SourceKindSQL,
	"mart":   SourceKindMart,
	"direct": SourceKindDirect,
}

// String returns the name of a source kind.
func (sk SourceKind) String() string {
	for k, v := range sourceKindMap {
		if v == sk {
			return k
		}
	}
	return "unknown"
}

// MarshalText turns a source kind into a string.
func (sk SourceKind) MarshalText() ([]byte, error) {
	return []byte(sk.String()), nil
}

// UnmarshalText parses a source kind from a string.
func (sk *SourceKind) UnmarshalText(input []byte) error {
	got, ok := sourceKindMap[strings.ToLower(string(input))]
	if !ok {
		return fmt.Errorf("unknown source kind %q", string(input))
	}
	*sk = got
	return nil
}

// Dialect is the SQL dialect a table speaks.
type Dialect int

// List of available dialects.
const (
	DialectPostgres Dialect = iota
	DialectMySQL
	DialectClickHouse
)

var dialectMap = map[string]Dialect{
	"postgres":   DialectPostgres,
	"mysql":      DialectMySQL,
	"clickhouse": DialectClickHouse,
}

// String returns the name of a dialect.
func (d Dialect) String() string {
	for k, v := range dialectMap {
		if v == d {
			return k
		}
	}
	return "postgres"
}

// MarshalText turns a dialect into a string.
func (d Dialect) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a dialect from a string.
func (d *Dialect) UnmarshalText(input []byte) error {
	if len(input) == 0 {
		*d = DialectPostgres
		return nil
	}
	got, ok := dialectMap[strings.ToLower(string(input))]
	if !ok {
		return fmt.Errorf("unknown dialect %q", string(input))
	}
	*d = got
	return nil
}

// ErrUnknownTable is returned when looking up a table absent from the catalog.
var ErrUnknownTable = errors.New("unknown table")
