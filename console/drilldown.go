// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"quarry/common/schema"
	"quarry/console/query"
)

// applyDrilldown refocuses an analysis on a single dimension. Drilling into
// a date field defaults to day buckets and forces a chronological sort,
// overriding the configured sorts.
func applyDrilldown(a query.Analysis, dr *Drilldown, table *schema.Table) query.Analysis {
	if dr == nil {
		return a
	}
	dimension := query.Dimension{Field: dr.Field, Format: dr.Format}
	if field, ok := table.LookupField(dr.Field); ok && field.Type.IsDate() {
		if dimension.Format == query.TruncNone {
			dimension.Format = query.TruncDay
		}
		a.Sorts = []query.Sort{{Field: dimension.Name(), Direction: query.DirectionAsc}}
	} else {
		a.Sorts = keepResolvableSorts(a.Sorts, a.Metrics, dimension)
	}
	a.Dimensions = []query.Dimension{dimension}
	return a
}

// truncateDimensions keeps the first n dimensions of an analysis, dropping
// the sorts that no longer resolve.
func truncateDimensions(a query.Analysis, n int) query.Analysis {
	if n <= 0 || len(a.Dimensions) <= n {
		return a
	}
	a.Dimensions = a.Dimensions[:n]
	sorts := make([]query.Sort, 0, len(a.Sorts))
outer:
	for _, s := range a.Sorts {
		for _, m := range a.Metrics {
			if m.Name() == s.Field {
				sorts = append(sorts, s)
				continue outer
			}
		}
		for _, d := range a.Dimensions {
			if d.Name() == s.Field {
				sorts = append(sorts, s)
				continue outer
			}
		}
	}
	a.Sorts = sorts
	return a
}

func keepResolvableSorts(sorts []query.Sort, metrics []query.Metric, dimension query.Dimension) []query.Sort {
	kept := make([]query.Sort, 0, len(sorts))
outer:
	for _, s := range sorts {
		if s.Field == dimension.Name() {
			kept = append(kept, s)
			continue
		}
		for _, m := range metrics {
			if m.Name() == s.Field {
				kept = append(kept, s)
				continue outer
			}
		}
	}
	return kept
}
