// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"context"
	"fmt"

	"quarry/common/schema"
)

// backend executes a plan against one kind of source. Implementations
// return rows keyed by the result column names of the plan, plus the
// total row count when pagination is requested.
type backend interface {
	// name identifies the backend in metrics and errors.
	name() string
	// paginates tells if query windows the rows itself. Otherwise the
	// caller slices the full result.
	paginates() bool
	query(ctx context.Context, p *plan) ([]map[string]any, int, error)
	// preview returns the query that would run, without executing it.
	preview(p *plan) (string, error)
}

// backendFor selects the backend serving a table.
func (c *Component) backendFor(table *schema.Table) (backend, error) {
	switch table.Kind {
	case schema.SourceKindObject:
		if c.d.ObjectStore == nil {
			return nil, fmt.Errorf("%w: no object store for table %q",
				ErrNoQueryableSource, table.Name)
		}
		return &objectBackend{c}, nil
	case schema.SourceKindSQL, schema.SourceKindMart:
		if table.Dialect == schema.DialectClickHouse {
			if c.d.ClickHouse == nil {
				return nil, fmt.Errorf("%w: no clickhouse connection for table %q",
					ErrNoQueryableSource, table.Name)
			}
		} else if c.d.SQL == nil {
			return nil, fmt.Errorf("%w: no SQL connection for table %q",
				ErrNoQueryableSource, table.Name)
		}
		return &sqlBackend{c}, nil
	case schema.SourceKindDirect:
		if c.d.Frames == nil {
			return nil, fmt.Errorf("%w: no frame provider for table %q",
				ErrNoQueryableSource, table.Name)
		}
		return &frameBackend{c}, nil
	}
	return nil, fmt.Errorf("%w: table %q has no source kind",
		ErrNoQueryableSource, table.Name)
}
