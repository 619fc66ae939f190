// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"quarry/console/authentication"
	"quarry/console/query"
)

// RequestContext identifies the caller of an analysis request. It feeds the
// special variables of raw source queries.
type RequestContext struct {
	UserID      uint64   `json:"user_id,omitempty"`
	UserName    string   `json:"user_name,omitempty"`
	Timezone    string   `json:"timezone,omitempty"`
	CompanyID   uint64   `json:"company_id,omitempty"`
	CompanyIDs  []uint64 `json:"company_ids,omitempty"`
	CompanyName string   `json:"company_name,omitempty"`
}

// requestContextFromUser derives a request context from the authenticated
// user information.
func requestContextFromUser(info authentication.UserInformation) RequestContext {
	name := info.Name
	if name == "" {
		name = info.Login
	}
	return RequestContext{
		UserID:      info.UserID,
		UserName:    name,
		Timezone:    info.Timezone,
		CompanyID:   info.CompanyID,
		CompanyIDs:  info.CompanyIDs,
		CompanyName: info.CompanyName,
	}
}

// Pagination requests a window of the aggregated result.
type Pagination struct {
	// Limit is the window size. 0 disables pagination.
	Limit int `json:"limit"`
	// Offset is the index of the first returned row.
	Offset int `json:"offset"`
	// Search keeps only the rows with a column matching the keyword.
	Search string `json:"search,omitempty"`
}

func (p Pagination) enabled() bool {
	return p.Limit > 0
}

// Drilldown replaces the dimensions of an analysis with a single field.
type Drilldown struct {
	// Field is the logical field to drill into.
	Field string `json:"field"`
	// Format is the date truncation for date fields. Defaults to day.
	Format query.TruncFormat `json:"format,omitempty"`
}

// DynamicFilter is a dashboard-level filter combined with the static
// predicate of every analysis on the dashboard.
type DynamicFilter struct {
	// Field is the logical field the filter applies to.
	Field string `json:"field,omitempty"`
	// Operator compares the field to the values. Defaults to "in" for
	// several values and "=" for one.
	Operator query.Operator `json:"operator,omitempty"`
	// Values are the selected values.
	Values []any `json:"values"`
	// Variable routes the values into the named special variable of raw
	// source queries instead of the predicate.
	Variable string `json:"variable,omitempty"`
}

// ActionFilter is a filter derived from a click on a chart element. The
// field can be a dimension alias of the clicked analysis.
type ActionFilter struct {
	Field string `json:"field"`
	// Operator defaults to "=".
	Operator query.Operator `json:"operator,omitempty"`
	Value    any            `json:"value"`
}

// List of temp filter kinds.
const (
	TempFilterStringSearch = "string_search"
	TempFilterDateRange    = "date_range"
	TempFilterDateFormat   = "date_format"
)

// TempFilter is a short-lived per-analysis filter.
type TempFilter struct {
	// Kind is one of string_search, date_range and date_format.
	Kind string `json:"kind" binding:"required,oneof=string_search date_range date_format"`
	// Field is the logical field the filter applies to.
	Field string `json:"field" binding:"required"`
	// Values are the searched values for string_search.
	Values []any `json:"values,omitempty"`
	// Start is the lower bound for date_range (YYYY-MM-DD).
	Start string `json:"start,omitempty"`
	// End is the upper bound for date_range (YYYY-MM-DD).
	End string `json:"end,omitempty"`
	// Keyword is the symbolic range for date_format.
	Keyword string `json:"keyword,omitempty"`
}

// AnalysisRequest carries the request-scoped inputs of an analysis run.
type AnalysisRequest struct {
	Dynamic    []DynamicFilter `json:"dynamic_filters,omitempty"`
	Action     []ActionFilter  `json:"action_filters,omitempty"`
	Temp       []TempFilter    `json:"temp_filters,omitempty"`
	Drilldown  *Drilldown      `json:"drilldown,omitempty"`
	Pagination Pagination      `json:"pagination,omitempty"`
	// MaxDimension truncates the dimension list. 0 keeps all dimensions.
	MaxDimension int `json:"max_dimension,omitempty"`
	// TestMode clamps raw source queries to one row.
	TestMode bool `json:"test_mode,omitempty"`

	Context RequestContext `json:"-"`
}
