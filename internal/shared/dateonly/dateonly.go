// Package dateonly handles calendar dates without a time-of-day component.
//
// Every value produced here is pinned to UTC midnight, so comparisons and
// day arithmetic never drift across timezone offsets or DST transitions.
package dateonly

import (
	"regexp"
	"time"
)

const Layout = "2006-01-02"

const day = 24 * time.Hour

var pattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Parse accepts exactly YYYY-MM-DD. It reports false for any malformed input,
// including dates that do not exist on the calendar (2024-02-30).
func Parse(text string) (time.Time, bool) {
	if !pattern.MatchString(text) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(Layout, text, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// DaysInclusive counts calendar days in [start, end]. Both inputs must
// already be date-only values.
func DaysInclusive(start, end time.Time) int {
	return int(end.Sub(start)/day) + 1
}

func SameYear(a, b time.Time) bool {
	return a.UTC().Year() == b.UTC().Year()
}

// Truncate drops the time-of-day of t as observed in UTC.
func Truncate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether the inclusive ranges [aStart, aEnd] and
// [bStart, bEnd] share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}
