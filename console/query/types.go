// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolvedFilterField is returned when a filter references a field or
// alias absent from the analysis table.
var ErrUnresolvedFilterField = errors.New("unresolved filter field")

// ErrSortDependency is returned when changing a field still referenced by a
// sort. Dependent sorts have to be removed first.
var ErrSortDependency = errors.New("field is referenced by a sort")

// Aggregation is the aggregation applied to a metric field.
type Aggregation int

// List of available aggregations.
const (
	AggregationUnknown Aggregation = iota
	AggregationCount
	AggregationCountDistinct
	AggregationSum
	AggregationAvg
	// AggregationCumulativeSum is computed from a plain sum after
	// execution. Backends have no running-total primitive usable across
	// arbitrary group keys.
	AggregationCumulativeSum
)

var aggregationMap = map[string]Aggregation{
	"count":          AggregationCount,
	"count_distinct": AggregationCountDistinct,
	"sum":            AggregationSum,
	"avg":            AggregationAvg,
	"cumulative_sum": AggregationCumulativeSum,
}

// String returns the name of an aggregation.
func (a Aggregation) String() string {
	for k, v := range aggregationMap {
		if v == a {
			return k
		}
	}
	return "unknown"
}

// MarshalText turns an aggregation into a string.
func (a Aggregation) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses an aggregation from a string.
func (a *Aggregation) UnmarshalText(input []byte) error {
	got, ok := aggregationMap[strings.ToLower(string(input))]
	if !ok {
		return fmt.Errorf("unknown aggregation %q", string(input))
	}
	*a = got
	return nil
}

// Direction is a sort direction.
type Direction int

// List of available sort directions.
const (
	DirectionNone Direction = iota
	DirectionAsc
	DirectionDesc
)

// String returns the name of a direction.
func (d Direction) String() string {
	switch d {
	case DirectionAsc:
		return "asc"
	case DirectionDesc:
		return "desc"
	}
	return ""
}

// MarshalText turns a direction into a string.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a direction from a string.
func (d *Direction) UnmarshalText(input []byte) error {
	switch strings.ToLower(string(input)) {
	case "":
		*d = DirectionNone
	case "asc":
		*d = DirectionAsc
	case "desc":
		*d = DirectionDesc
	default:
		return fmt.Errorf("unknown sort direction %q", string(input))
	}
	return nil
}

// TruncFormat is the date truncation applied to a dimension.
type TruncFormat int

// List of available date truncation formats.
const (
	TruncNone TruncFormat = iota
	TruncDay
	TruncWeek
	TruncMonth
	TruncQuarter
	TruncYear
)

var truncFormatMap = map[string]TruncFormat{
	"day":     TruncDay,
	"week":    TruncWeek,
	"month":   TruncMonth,
	"quarter": TruncQuarter,
	"year":    TruncYear,
}

// String returns the name of a date truncation format.
func (tf TruncFormat) String() string {
	for k, v := range truncFormatMap {
		if v == tf {
			return k
		}
	}
	return ""
}

// MarshalText turns a date truncation format into a string.
func (tf TruncFormat) MarshalText() ([]byte, error) {
	return []byte(tf.String()), nil
}

// UnmarshalText parses a date truncation format from a string.
func (tf *TruncFormat) UnmarshalText(input []byte) error {
	if len(input) == 0 {
		*tf = TruncNone
		return nil
	}
	got, ok := truncFormatMap[strings.ToLower(string(input))]
	if !ok {
		return fmt.Errorf("unknown date format %q", string(input))
	}
	*tf = got
	return nil
}

// Operator is a filter comparison operator.
type Operator int

// List of available filter operators.
const (
	OperatorUnknown Operator = iota
	OperatorEqual
	OperatorNotEqual
	OperatorGreater
	OperatorGreaterEqual
	OperatorLess
	OperatorLessEqual
	OperatorLike
	OperatorILike
	OperatorNotLike
	OperatorNotILike
	OperatorIn
	OperatorNotIn
)

var operatorMap = map[string]Operator{
	"=":         OperatorEqual,
	"!=":        OperatorNotEqual,
	">":         OperatorGreater,
	">=":        OperatorGreaterEqual,
	"<":         OperatorLess,
	"<=":        OperatorLessEqual,
	"like":      OperatorLike,
	"ilike":     OperatorILike,
	"not like":  OperatorNotLike,
	"not ilike": OperatorNotILike,
	"in":        OperatorIn,
	"not in":    OperatorNotIn,
}

// String returns the SQL spelling of an operator.
func (o Operator) String() string {
	for k, v := range operatorMap {
		if v == o {
			return k
		}
	}
	return "unknown"
}

// MarshalText turns an operator into a string.
func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses an operator from a string.
func (o *Operator) UnmarshalText(input []byte) error {
	got, ok := operatorMap[strings.ToLower(string(input))]
	if !ok {
		return fmt.Errorf("unknown operator %q", string(input))
	}
	*o = got
	return nil
}

// Negated tells if the operator excludes matching values.
func (o Operator) Negated() bool {
	switch o {
	case OperatorNotEqual, OperatorNotLike, OperatorNotILike, OperatorNotIn:
		return true
	}
	return false
}

// Connector combines a filter clause with the previous one.
type Connector int

// List of available connectors.
const (
	ConnectorAnd Connector = iota
	ConnectorOr
)

// String returns the SQL spelling of a connector.
func (c Connector) String() string {
	if c == ConnectorOr {
		return "OR"
	}
	return "AND"
}

// MarshalText turns a connector into a string.
func (c Connector) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a connector from a string.
func (c *Connector) UnmarshalText(input []byte) error {
	switch strings.ToLower(string(input)) {
	case "", "and":
		*c = ConnectorAnd
	case "or":
		*c = ConnectorOr
	default:
		return fmt.Errorf("unknown connector %q", string(input))
	}
	return nil
}
