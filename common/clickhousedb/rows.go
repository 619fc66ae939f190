// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package clickhousedb

import (
	"context"
	"fmt"
	"reflect"
)

// QueryRows runs a query and scans the result into generic row maps. Analysis
// queries are assembled at runtime and their column set is not known ahead of
// time, so each column is scanned through its driver-reported scan type.
func (c *Component) QueryRows(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := c.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := rows.Columns()
	columnTypes := rows.ColumnTypes()
	results := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		for i, ct := range columnTypes {
			values[i] = reflect.New(ct.ScanType()).Interface()
		}
		if err := rows.Scan(values...); err != nil {
			return nil, fmt.Errorf("unable to scan row: %w", err)
		}
		row := make(map[string]any, len(columns))
		for i, name := range columns {
			row[name] = reflect.ValueOf(values[i]).Elem().Interface()
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
