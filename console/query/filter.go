// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package query

import (
	"fmt"
	"slices"
	"strings"

	"quarry/common/schema"
	"quarry/console/daterange"
)

// Filter is one clause of the analysis predicate. Clauses form an ordered
// sequence combined with explicit connectors and bracket flags, not operator
// precedence.
type Filter struct {
	// Field is the logical field the clause applies to.
	Field string `json:"field" yaml:"field"`
	// Operator compares the field to the value.
	Operator Operator `json:"operator" yaml:"operator"`
	// Value is a scalar, or a list for in/not in.
	Value any `json:"value" yaml:"value"`
	// Connector combines this clause with the previous one.
	Connector Connector `json:"connector,omitempty" yaml:"connector,omitempty"`
	// OpenBracket opens a parenthesized group before this clause.
	OpenBracket bool `json:"open_bracket,omitempty" yaml:"open_bracket,omitempty"`
	// CloseBracket closes a parenthesized group after this clause.
	CloseBracket bool `json:"close_bracket,omitempty" yaml:"close_bracket,omitempty"`

	validated bool
	resolved  schema.Field
}

func (f Filter) check() {
	if !f.validated {
		panic("filter not validated")
	}
}

// ResolvedField returns the catalog field the clause applies to.
func (f Filter) ResolvedField() schema.Field {
	f.check()
	return f.resolved
}

// Validate resolves the filter against the analysis table.
func (f *Filter) Validate(table *schema.Table) error {
	if f.Operator == OperatorUnknown {
		return fmt.Errorf("filter on %q has no operator", f.Field)
	}
	field, ok := table.LookupField(f.Field)
	if !ok {
		return fmt.Errorf("%w: %q in table %q", ErrUnresolvedFilterField, f.Field, table.Name)
	}
	f.resolved = field
	f.validated = true
	return nil
}

// BoundaryMode tells how a date filter bounds the compiled predicate.
type BoundaryMode int

// List of available boundary modes.
const (
	// BoundaryRange embeds both bounds into the predicate.
	BoundaryRange BoundaryMode = iota
	// BoundaryUntil embeds only the upper bound; the lower bound is applied
	// as post-filtering on fetched rows so running totals accumulate from
	// the start of time.
	BoundaryUntil
)

// String returns the name of a boundary mode.
func (bm BoundaryMode) String() string {
	if bm == BoundaryUntil {
		return "until"
	}
	return "range"
}

// MarshalText turns a boundary mode into a string.
func (bm BoundaryMode) MarshalText() ([]byte, error) {
	return []byte(bm.String()), nil
}

// UnmarshalText parses a boundary mode from a string.
func (bm *BoundaryMode) UnmarshalText(input []byte) error {
	switch strings.ToLower(string(input)) {
	case "", "range":
		*bm = BoundaryRange
	case "until":
		*bm = BoundaryUntil
	default:
		return fmt.Errorf("unknown boundary mode %q", string(input))
	}
	return nil
}

// DateFilter restricts the analysis to a date range.
type DateFilter struct {
	// Field is the date field to restrict. Defaults to the table's date field.
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
	// Keyword is a symbolic date format keyword, or "custom".
	Keyword string `json:"keyword" yaml:"keyword"`
	// Start is the explicit lower bound for a custom range (YYYY-MM-DD).
	Start string `json:"start,omitempty" yaml:"start,omitempty"`
	// End is the explicit upper bound for a custom range (YYYY-MM-DD).
	End string `json:"end,omitempty" yaml:"end,omitempty"`
	// Mode tells how the bounds participate in the compiled predicate.
	Mode BoundaryMode `json:"mode,omitempty" yaml:"mode,omitempty"`

	validated bool
	resolved  schema.Field
}

func (df DateFilter) check() {
	if !df.validated {
		panic("date filter not validated")
	}
}

// ResolvedField returns the catalog field the date filter applies to.
func (df DateFilter) ResolvedField() schema.Field {
	df.check()
	return df.resolved
}

// Validate resolves the date filter against the analysis table.
func (df *DateFilter) Validate(table *schema.Table) error {
	if df.Field == "" {
		df.Field = table.DateField
	}
	if df.Field == "" {
		return fmt.Errorf("table %q has no date field", table.Name)
	}
	field, ok := table.LookupField(df.Field)
	if !ok {
		return fmt.Errorf("unknown date field %q in table %q", df.Field, table.Name)
	}
	if !field.Type.IsDate() {
		return fmt.Errorf("date filter on non-date field %q", df.Field)
	}
	if df.Keyword != "custom" && !slices.Contains(daterange.Keywords, df.Keyword) {
		return fmt.Errorf("%w %q", daterange.ErrInvalidDateFormat, df.Keyword)
	}
	if df.Keyword == "custom" && df.Start == "" && df.End == "" {
		return fmt.Errorf("custom date filter on %q has no bounds", df.Field)
	}
	df.resolved = field
	df.validated = true
	return nil
}
