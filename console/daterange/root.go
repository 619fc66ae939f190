// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package daterange resolves symbolic date range keywords into concrete
// calendar boundaries and normalizes local timestamps to UTC.
package daterange

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDateFormat is returned on an unrecognized date format keyword.
var ErrInvalidDateFormat = errors.New("invalid date format")

// Range is a resolved date range, with day precision. Both bounds are
// inclusive.
type Range struct {
	Start time.Time
	End   time.Time
}

// StartDate returns the lower bound as a date string.
func (r Range) StartDate() string {
	return r.Start.Format("2006-01-02")
}

// EndDate returns the upper bound as a date string.
func (r Range) EndDate() string {
	return r.End.Format("2006-01-02")
}

// StartDatetime returns the lower bound as a timestamp at the start of day.
func (r Range) StartDatetime() string {
	return r.Start.Format("2006-01-02") + " 00:00:00"
}

// EndDatetime returns the upper bound as a timestamp at the end of day.
func (r Range) EndDatetime() string {
	return r.End.Format("2006-01-02") + " 23:59:59"
}

// Keywords is the list of supported date format keywords, not including
// "custom" which carries an explicit caller-provided range.
var Keywords = []string{
	"today", "yesterday",
	"this_week", "last_week",
	"this_month", "last_month", "last_two_months", "last_three_months", "mtd",
	"this_year", "last_year", "ytd",
	"last_10", "last_30", "last_60",
	"before_today", "after_today", "before_and_today", "today_and_after",
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// mondayOf returns the Monday of the week of t.
func mondayOf(t time.Time) time.Time {
	return t.AddDate(0, 0, -((int(t.Weekday()) + 6) % 7))
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func lastOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}

// Resolve maps a date format keyword to a concrete range using the provided
// reference instant. Open-ended keywords approximate an unbounded range with
// a 50-year span.
func Resolve(keyword string, ref time.Time) (Range, error) {
	today := startOfDay(ref)
	start, end := today, today
	switch keyword {
	case "today":
	case "yesterday":
		start = today.AddDate(0, 0, -1)
		end = start
	case "this_week":
		start = mondayOf(today)
		end = start.AddDate(0, 0, 6)
	case "last_week":
		start = mondayOf(today.AddDate(0, 0, -7))
		end = start.AddDate(0, 0, 6)
	case "last_10":
		start = today.AddDate(0, 0, -10)
	case "last_30":
		start = today.AddDate(0, 0, -30)
	case "last_60":
		start = today.AddDate(0, 0, -60)
	case "before_today":
		start = today.AddDate(-50, 0, 0)
		end = today.AddDate(0, 0, -1)
	case "after_today":
		start = today.AddDate(0, 0, 1)
		end = today.AddDate(50, 0, 0)
	case "before_and_today":
		start = today.AddDate(-50, 0, 0)
	case "today_and_after":
		end = today.AddDate(50, 0, 0)
	case "this_month":
		start = firstOfMonth(today)
		end = lastOfMonth(today)
	case "mtd":
		start = firstOfMonth(today)
	case "last_month":
		start = firstOfMonth(today.AddDate(0, -1, -today.Day()+1))
		end = lastOfMonth(start)
	case "last_two_months":
		start = firstOfMonth(today.AddDate(0, -1, -today.Day()+1))
		end = lastOfMonth(today)
	case "last_three_months":
		start = firstOfMonth(today.AddDate(0, -2, -today.Day()+1))
		end = lastOfMonth(today)
	case "this_year":
		start = time.Date(today.Year(), 1, 1, 0, 0, 0, 0, today.Location())
		end = time.Date(today.Year(), 12, 31, 0, 0, 0, 0, today.Location())
	case "ytd":
		start = time.Date(today.Year(), 1, 1, 0, 0, 0, 0, today.Location())
	case "last_year":
		start = time.Date(today.Year()-1, 1, 1, 0, 0, 0, 0, today.Location())
		end = time.Date(today.Year()-1, 12, 31, 0, 0, 0, 0, today.Location())
	default:
		return Range{}, fmt.Errorf("%w %q", ErrInvalidDateFormat, keyword)
	}
	return Range{Start: start, End: end}, nil
}

// ConvertToUTC localizes a naive timestamp string to the caller timezone and
// converts it to UTC. With an empty timezone, the input is passed through
// unchanged: stored timestamps are already normalized.
func ConvertToUTC(datetime string, tz string) (string, error) {
	if tz == "" {
		return datetime, nil
	}
	location, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	parsed, err := time.ParseInLocation("2006-01-02 15:04:05", datetime, location)
	if err != nil {
		return "", fmt.Errorf("unable to parse timestamp %q: %w", datetime, err)
	}
	return parsed.UTC().Format("2006-01-02 15:04:05"), nil
}
