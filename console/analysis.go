// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"context"

	"quarry/console/query"
)

// GetAnalysisData compiles an analysis against its source and returns the
// normalized result. An analysis without metric returns an empty result,
// never an error.
func (c *Component) GetAnalysisData(ctx context.Context, analysis query.Analysis, req AnalysisRequest) (*Result, error) {
	if len(analysis.Metrics) == 0 {
		return emptyResult(), nil
	}

	table, err := c.d.Schema.LookupTable(analysis.Table)
	if err != nil {
		return nil, err
	}
	analysis = applyDrilldown(analysis, req.Drilldown, table)
	analysis = truncateDimensions(analysis, req.MaxDimension)
	table, err = analysis.Validate(c.d.Schema)
	if err != nil {
		return nil, &CompilationError{err}
	}

	p, err := c.newPlan(table, &analysis, req)
	if err != nil {
		return nil, &CompilationError{err}
	}
	be, err := c.backendFor(table)
	if err != nil {
		return nil, err
	}

	rows, total, err := be.query(ctx, p)
	if err != nil {
		return nil, err
	}

	flattenLocalizedColumns(rows, p.locales)
	applySelectionLabels(rows, p.dimensions)

	windowed := be.paginates() && p.page.enabled()
	if !windowed {
		// Running totals accumulate over the full history before the
		// until-mode cutoff trims old buckets.
		applyCumulativeSums(rows, p.metrics, p.dimensionNames())
		if p.untilStart != "" && p.dateAlias != "" {
			rows = filterRowsSince(rows, p.dateAlias, p.untilStart, p.untilFormat)
			total = len(rows)
		}
		if p.page.enabled() {
			total = len(rows)
			rows = window(rows, p.page)
		}
	}

	applyDefaults(rows, p.metricNames(), p.dimensionNames())
	return newResult(rows, p.metrics, p.dimensions, total), nil
}

// Preview returns the query an analysis would execute, without running it.
func (c *Component) Preview(analysis query.Analysis, req AnalysisRequest) (string, error) {
	if len(analysis.Metrics) == 0 {
		return "", ErrNoMetricConfigured
	}
	table, err := c.d.Schema.LookupTable(analysis.Table)
	if err != nil {
		return "", err
	}
	analysis = applyDrilldown(analysis, req.Drilldown, table)
	analysis = truncateDimensions(analysis, req.MaxDimension)
	table, err = analysis.Validate(c.d.Schema)
	if err != nil {
		return "", &CompilationError{err}
	}
	p, err := c.newPlan(table, &analysis, req)
	if err != nil {
		return "", &CompilationError{err}
	}
	be, err := c.backendFor(table)
	if err != nil {
		return "", err
	}
	return be.preview(p)
}

func window(rows []map[string]any, page Pagination) []map[string]any {
	if page.Offset >= len(rows) {
		return []map[string]any{}
	}
	end := page.Offset + page.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[page.Offset:end]
}
