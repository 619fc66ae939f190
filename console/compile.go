// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"time"

	"quarry/common/schema"
	"quarry/console/daterange"
	"quarry/console/query"
)

// plan is a validated analysis resolved against the catalog, together with
// the request-scoped inputs, ready to be handed to a backend.
type plan struct {
	table      *schema.Table
	metrics    []query.Metric
	dimensions []query.Dimension
	sorts      []query.Sort
	limit      int
	page       Pagination
	filters    filterInput
	context    RequestContext
	testMode   bool
	now        time.Time
	locales    []string
	// aliases maps result column names to their catalog fields.
	aliases map[string]schema.Field
	// untilStart is the lower date bound excluded from the predicate in
	// until mode (YYYY-MM-DD).
	untilStart string
	// dateAlias is the result column carrying the filtered date dimension
	// and untilFormat its truncation, for post-filtering.
	dateAlias   string
	untilFormat query.TruncFormat
}

// newPlan resolves an analysis and a request into an executable plan. The
// analysis must have been validated beforehand.
func (c *Component) newPlan(table *schema.Table, a *query.Analysis, req AnalysisRequest) (*plan, error) {
	p := &plan{
		table:      table,
		metrics:    a.Metrics,
		dimensions: a.Dimensions,
		sorts:      a.Sorts,
		limit:      a.Limit,
		page:       req.Pagination,
		context:    req.Context,
		testMode:   req.TestMode,
		now:        c.d.Clock.Now(),
		locales:    c.d.Schema.Locales(),
		filters: filterInput{
			static:  a.Filters,
			date:    a.DateFilter,
			dynamic: req.Dynamic,
			action:  req.Action,
			temp:    req.Temp,
			search:  req.Pagination.Search,
		},
	}
	if p.limit == 0 {
		p.limit = c.config.DefaultLimit
	}

	p.aliases = map[string]schema.Field{}
	for _, d := range a.Dimensions {
		p.aliases[d.Name()] = d.ResolvedField()
	}
	for _, m := range a.Metrics {
		if m.Field != "" {
			p.aliases[m.Name()] = m.ResolvedField()
		}
	}

	if a.DateFilter != nil && a.DateFilter.Mode == query.BoundaryUntil {
		start := a.DateFilter.Start
		if a.DateFilter.Keyword != "custom" {
			rng, err := daterange.Resolve(a.DateFilter.Keyword, p.now)
			if err != nil {
				return nil, err
			}
			start = rng.StartDate()
		}
		p.untilStart = start
		for _, d := range a.Dimensions {
			if d.Field == a.DateFilter.Field {
				p.dateAlias = d.Name()
				p.untilFormat = d.Format
				break
			}
		}
	}
	return p, nil
}

func (p *plan) metricNames() []string {
	names := make([]string, len(p.metrics))
	for i, m := range p.metrics {
		names[i] = m.Name()
	}
	return names
}

func (p *plan) dimensionNames() []string {
	names := make([]string, len(p.dimensions))
	for i, d := range p.dimensions {
		names[i] = d.Name()
	}
	return names
}

func (p *plan) hasCumulative() bool {
	for _, m := range p.metrics {
		if m.IsCumulative() {
			return true
		}
	}
	return false
}
