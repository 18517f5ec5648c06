package core

import (
	"fmt"
	"time"
)

// DateOnly truncates t to its calendar day at midnight UTC.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate formats a time.Time as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateFmt)
}

// ParseDate parses a YYYY-MM-DD string into a time.Time (midnight UTC).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFmt, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s' (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

// TimeframeRange returns the [start, end) window for a timeframe anchored
// at now: the current UTC day, the current ISO week (Monday-based), or the
// current calendar month.
func TimeframeRange(timeframe string, now time.Time) (time.Time, time.Time, error) {
	today := DateOnly(now)

	switch timeframe {
	case TimeframeDaily:
		return today, today.AddDate(0, 0, 1), nil

	case TimeframeWeekly:
		weekday := int(today.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start := today.AddDate(0, 0, -(weekday - 1))
		return start, start.AddDate(0, 0, 7), nil

	case TimeframeMonthly:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), nil
	}

	return time.Time{}, time.Time{}, fmt.Errorf("unknown timeframe: %s", timeframe)
}

// PeriodRange returns the [start, end) window for a named period.
// Supported periods: today, yesterday, this-week, last-week, this-month,
// last-month.
func PeriodRange(period string, now time.Time) (time.Time, time.Time, error) {
	today := DateOnly(now)

	switch period {
	case "today":
		return today, today.AddDate(0, 0, 1), nil

	case "yesterday":
		d := today.AddDate(0, 0, -1)
		return d, today, nil

	case "this-week":
		return TimeframeRange(TimeframeWeekly, now)

	case "last-week":
		start, _, err := TimeframeRange(TimeframeWeekly, now)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return start.AddDate(0, 0, -7), start, nil

	case "this-month":
		return TimeframeRange(TimeframeMonthly, now)

	case "last-month":
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first.AddDate(0, -1, 0), first, nil
	}

	return time.Time{}, time.Time{}, fmt.Errorf("unknown period: %s", period)
}
