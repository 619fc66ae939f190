// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"errors"
	"testing"
	"time"

	"quarry/common/helpers"
	"quarry/common/schema"
	"quarry/console/query"
)

func testWhereBuilder(t *testing.T) *whereBuilder {
	t.Helper()
	catalog := schema.NewMock(t)
	table, err := catalog.LookupTable("bookings")
	if err != nil {
		t.Fatalf("LookupTable() error:\n%+v", err)
	}
	return &whereBuilder{
		table:   table,
		dialect: postgresDialect{},
		locales: []string{"en_US", "id_ID"},
		now:     time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC),
	}
}

func mustValidateFilter(t *testing.T, table *schema.Table, f query.Filter) query.Filter {
	t.Helper()
	if err := f.Validate(table); err != nil {
		t.Fatalf("Validate() error:\n%+v", err)
	}
	return f
}

func TestCompileWhere(t *testing.T) {
	b := testWhereBuilder(t)
	cases := []struct {
		Pos      helpers.Pos
		Descr    string
		Input    filterInput
		Expected string
	}{
		{
			Pos:   helpers.Mark(),
			Descr: "no filter",
			Input: filterInput{},

			Expected: "1 = 1",
		}, {
			Pos:   helpers.Mark(),
			Descr: "bracketed disjunction keeps clause order",
			Input: filterInput{
				static: []query.Filter{
					mustValidateFilter(t, b.table, query.Filter{
						Field: "amount", Operator: query.OperatorGreater,
						Value: 100, OpenBracket: true,
					}),
					mustValidateFilter(t, b.table, query.Filter{
						Field: "status", Operator: query.OperatorEqual,
						Value: "confirmed", Connector: query.ConnectorOr,
						CloseBracket: true,
					}),
				},
			},
			Expected: "1 = 1 AND ((amount_total > 100) OR (status = $$confirmed$$))",
		}, {
			Pos:   helpers.Mark(),
			Descr: "localized column expands over locales",
			Input: filterInput{
				static: []query.Filter{
					mustValidateFilter(t, b.table, query.Filter{
						Field: "customer_name", Operator: query.OperatorEqual,
						Value: "John",
					}),
				},
			},
			Expected: "1 = 1 AND (customer_name->>'en_US' = $$John$$ OR customer_name->>'id_ID' = $$John$$)",
		}, {
			Pos:   helpers.Mark(),
			Descr: "pattern match casts to text",
			Input: filterInput{
				static: []query.Filter{
					mustValidateFilter(t, b.table, query.Filter{
						Field: "city", Operator: query.OperatorILike, Value: "bali",
					}),
				},
			},
			Expected: "1 = 1 AND (city::TEXT ilike $$%bali%$$)",
		}, {
			Pos:   helpers.Mark(),
			Descr: "numeric list",
			Input: filterInput{
				static: []query.Filter{
					mustValidateFilter(t, b.table, query.Filter{
						Field: "nights", Operator: query.OperatorIn,
						Value: []any{2, 3},
					}),
				},
			},
			Expected: "1 = 1 AND (nights in (2, 3))",
		}, {
			Pos:   helpers.Mark(),
			Descr: "lone dollar sign kept in value",
			Input: filterInput{
				static: []query.Filter{
					mustValidateFilter(t, b.table, query.Filter{
						Field: "city", Operator: query.OperatorEqual,
						Value: "US$",
					}),
				},
			},
			Expected: "1 = 1 AND (city = $$US$$$)",
		}, {
			Pos:   helpers.Mark(),
			Descr: "quote delimiter sequence stripped from value",
			Input: filterInput{
				static: []query.Filter{
					mustValidateFilter(t, b.table, query.Filter{
						Field: "city", Operator: query.OperatorEqual,
						Value: "Ubud$$town",
					}),
				},
			},
			Expected: "1 = 1 AND (city = $$Ubudtown$$)",
		}, {
			Pos:   helpers.Mark(),
			Descr: "several values reroute to in",
			Input: filterInput{
				static: []query.Filter{
					mustValidateFilter(t, b.table, query.Filter{
						Field: "status", Operator: query.OperatorEqual,
						Value: []any{"draft", "confirmed"},
					}),
				},
			},
			Expected: "1 = 1 AND (status in ($$draft$$, $$confirmed$$))",
		}, {
			Pos:   helpers.Mark(),
			Descr: "dynamic numeric string compares bare",
			Input: filterInput{
				dynamic: []DynamicFilter{
					{Field: "amount", Operator: query.OperatorGreaterEqual, Values: []any{"100"}},
				},
			},
			Expected: "1 = 1 AND (amount_total >= 100)",
		}, {
			Pos:   helpers.Mark(),
			Descr: "temp string search",
			Input: filterInput{
				temp: []TempFilter{
					{Kind: TempFilterStringSearch, Field: "city", Values: []any{"Bali", "Ubud"}},
				},
			},
			Expected: "1 = 1 AND (city in ($$Bali$$, $$Ubud$$))",
		}, {
			Pos:   helpers.Mark(),
			Descr: "temp date format",
			Input: filterInput{
				temp: []TempFilter{
					{Kind: TempFilterDateFormat, Field: "check_in", Keyword: "today"},
				},
			},
			Expected: "1 = 1 AND (check_in >= $$2024-03-13$$ AND check_in <= $$2024-03-13$$)",
		},
	}
	for _, tc := range cases {
		t.Run(tc.Descr, func(t *testing.T) {
			got, _, err := b.compile(tc.Input)
			if err != nil {
				t.Fatalf("%scompile() error:\n%+v", tc.Pos, err)
			}
			if diff := helpers.Diff(got.clause, tc.Expected); diff != "" {
				t.Errorf("%scompile() (-got, +want):\n%s", tc.Pos, diff)
			}
			if diff := helpers.Diff(got.pagedClause, tc.Expected); diff != "" {
				t.Errorf("%scompile() paged (-got, +want):\n%s", tc.Pos, diff)
			}
		})
	}
}

func TestCompileWhereDateFilter(t *testing.T) {
	b := testWhereBuilder(t)

	t.Run("range mode", func(t *testing.T) {
		df := &query.DateFilter{Keyword: "custom", Start: "2024-03-01", End: "2024-03-13"}
		if err := df.Validate(b.table); err != nil {
			t.Fatalf("Validate() error:\n%+v", err)
		}
		got, _, err := b.compile(filterInput{date: df})
		if err != nil {
			t.Fatalf("compile() error:\n%+v", err)
		}
		expected := "1 = 1 AND (check_in <= $$2024-03-13$$) AND (check_in >= $$2024-03-01$$)"
		if diff := helpers.Diff(got.clause, expected); diff != "" {
			t.Errorf("compile() (-got, +want):\n%s", diff)
		}
		if got.untilStart != "" {
			t.Errorf("compile() untilStart == %q", got.untilStart)
		}
	})

	t.Run("until mode excludes the lower bound", func(t *testing.T) {
		df := &query.DateFilter{
			Keyword: "custom", Start: "2024-03-01", End: "2024-03-13",
			Mode: query.BoundaryUntil,
		}
		if err := df.Validate(b.table); err != nil {
			t.Fatalf("Validate() error:\n%+v", err)
		}
		got, _, err := b.compile(filterInput{date: df})
		if err != nil {
			t.Fatalf("compile() error:\n%+v", err)
		}
		if diff := helpers.Diff(got.clause,
			"1 = 1 AND (check_in <= $$2024-03-13$$)"); diff != "" {
			t.Errorf("compile() (-got, +want):\n%s", diff)
		}
		if diff := helpers.Diff(got.pagedClause,
			"1 = 1 AND (check_in <= $$2024-03-13$$) AND (check_in >= $$2024-03-01$$)"); diff != "" {
			t.Errorf("compile() paged (-got, +want):\n%s", diff)
		}
		if got.untilStart != "2024-03-01" {
			t.Errorf("compile() untilStart == %q", got.untilStart)
		}
	})

	t.Run("datetime bounds cover whole days in the caller timezone", func(t *testing.T) {
		b := testWhereBuilder(t)
		b.tz = "Asia/Jakarta"
		df := &query.DateFilter{
			Field: "created_at", Keyword: "custom",
			Start: "2024-03-01", End: "2024-03-02",
		}
		if err := df.Validate(b.table); err != nil {
			t.Fatalf("Validate() error:\n%+v", err)
		}
		got, _, err := b.compile(filterInput{date: df})
		if err != nil {
			t.Fatalf("compile() error:\n%+v", err)
		}
		expected := "1 = 1 AND (created_at <= $$2024-03-02 16:59:59$$)" +
			" AND (created_at >= $$2024-02-29 17:00:00$$)"
		if diff := helpers.Diff(got.clause, expected); diff != "" {
			t.Errorf("compile() (-got, +want):\n%s", diff)
		}
	})
}

func TestCompileWhereSpecialValues(t *testing.T) {
	b := testWhereBuilder(t)
	got, special, err := b.compile(filterInput{
		dynamic: []DynamicFilter{
			{Variable: "selected_cities", Values: []any{"Bali", "Ubud"}},
		},
	})
	if err != nil {
		t.Fatalf("compile() error:\n%+v", err)
	}
	if diff := helpers.Diff(got.clause, "1 = 1"); diff != "" {
		t.Errorf("compile() (-got, +want):\n%s", diff)
	}
	if diff := helpers.Diff(special, map[string]any{
		"selected_cities": []any{"Bali", "Ubud"},
	}); diff != "" {
		t.Errorf("compile() special values (-got, +want):\n%s", diff)
	}
}

func TestCompileWhereSearch(t *testing.T) {
	b := testWhereBuilder(t)
	b.searchable = []string{"city::TEXT", "amount_total::TEXT"}
	got, _, err := b.compile(filterInput{search: "ba"})
	if err != nil {
		t.Fatalf("compile() error:\n%+v", err)
	}
	expected := "1 = 1 AND (city::TEXT ilike $$%ba%$$ OR amount_total::TEXT ilike $$%ba%$$)"
	if diff := helpers.Diff(got.clause, expected); diff != "" {
		t.Errorf("compile() (-got, +want):\n%s", diff)
	}
}

func TestCompileWhereUnknownField(t *testing.T) {
	b := testWhereBuilder(t)
	_, _, err := b.compile(filterInput{
		action: []ActionFilter{{Field: "nonexistent", Value: 1}},
	})
	if !errors.Is(err, query.ErrUnresolvedFilterField) {
		t.Fatalf("compile() error %v, expected %v", err, query.ErrUnresolvedFilterField)
	}
}
