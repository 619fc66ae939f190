// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"testing"

	"quarry/common/helpers"
)

func TestExpandSourceQuery(t *testing.T) {
	subs := substitutions{
		context: RequestContext{
			UserID:      7,
			UserName:    "Alfred",
			Timezone:    "Asia/Jakarta",
			CompanyID:   2,
			CompanyIDs:  []uint64{2, 3},
			CompanyName: "Wayne Enterprises",
		},
	}
	cases := []struct {
		Pos      helpers.Pos
		Descr    string
		Source   string
		Subs     substitutions
		Expected string
	}{
		{
			Pos:      helpers.Mark(),
			Descr:    "no variable",
			Source:   "SELECT * FROM hotel_booking",
			Subs:     subs,
			Expected: "(SELECT * FROM hotel_booking) table_query",
		}, {
			Pos:      helpers.Mark(),
			Descr:    "user and companies",
			Source:   "SELECT * FROM hotel_booking WHERE user_id = #user_id AND company_id IN #company_ids",
			Subs:     subs,
			Expected: "(SELECT * FROM hotel_booking WHERE user_id = 7 AND company_id IN (2,3)) table_query",
		}, {
			Pos:      helpers.Mark(),
			Descr:    "date sentinels",
			Source:   "SELECT * FROM t WHERE d BETWEEN '#izi_start_date' AND '#izi_end_date'",
			Subs:     subs,
			Expected: "(SELECT * FROM t WHERE d BETWEEN '1000-01-01' AND '3000-01-01') table_query",
		}, {
			Pos:    helpers.Mark(),
			Descr:  "date filter bounds",
			Source: "SELECT * FROM t WHERE d >= '#izi_start_datetime' AND d <= '#izi_end_datetime'",
			Subs: substitutions{
				context:   subs.context,
				startDate: "2024-03-01",
				endDate:   "2024-03-13",
			},
			Expected: "(SELECT * FROM t WHERE d >= '2024-03-01 00:00:00' AND d <= '2024-03-13 23:59:59') table_query",
		}, {
			Pos:      helpers.Mark(),
			Descr:    "unknown variable",
			Source:   "SELECT * FROM t WHERE x = #bogus_var",
			Subs:     subs,
			Expected: "(SELECT * FROM t WHERE x = NULL) table_query",
		}, {
			Pos:    helpers.Mark(),
			Descr:  "caller value wins over builtin",
			Source: "SELECT * FROM t WHERE c = #company_id AND s IN #statuses",
			Subs: substitutions{
				context: subs.context,
				values: map[string]any{
					"company_id": 99,
					"statuses":   []any{"draft", "confirmed"},
				},
			},
			Expected: "(SELECT * FROM t WHERE c = 99 AND s IN ('draft','confirmed')) table_query",
		}, {
			Pos:      helpers.Mark(),
			Descr:    "test mode clamps limit",
			Source:   "SELECT * FROM t LIMIT 500",
			Subs:     substitutions{context: subs.context, testMode: true},
			Expected: "(SELECT * FROM t limit 1) table_query",
		}, {
			Pos:      helpers.Mark(),
			Descr:    "test mode appends limit",
			Source:   "SELECT * FROM t",
			Subs:     substitutions{context: subs.context, testMode: true},
			Expected: "(SELECT * FROM t limit 1) table_query",
		}, {
			Pos:      helpers.Mark(),
			Descr:    "already wrapped",
			Source:   "(SELECT 1) table_query",
			Subs:     subs,
			Expected: "(SELECT 1) table_query",
		},
	}
	for _, tc := range cases {
		t.Run(tc.Descr, func(t *testing.T) {
			got := expandSourceQuery(tc.Source, tc.Subs)
			if diff := helpers.Diff(got, tc.Expected); diff != "" {
				t.Errorf("%sexpandSourceQuery() (-got, +want):\n%s", tc.Pos, diff)
			}
		})
	}
}

func TestResolveSpecialVariable(t *testing.T) {
	subs := substitutions{}
	if got := subs.resolve("company_ids"); got != "(NULL)" {
		t.Errorf("resolve(company_ids) == %q", got)
	}
	if got := subs.resolve("izi_start_datetime"); got != "1000-01-01 00:00:00" {
		t.Errorf("resolve(izi_start_datetime) == %q", got)
	}
	if got := subs.resolve("nonexistent"); got != "NULL" {
		t.Errorf("resolve(nonexistent) == %q", got)
	}
}
