// Package analytics computes rollups over the stored order history: revenue
// time series, popular items, pickup method ratio, peak hours and beverage
// preferences.
//
// Every computation is a pure function of an order snapshot and a resolved
// date range. The Service fetches one snapshot per request and never writes.
package analytics

import (
	"time"

	"github.com/go-faster/errors"
)

// DefaultWindowDays is the length of the window used when a query omits a
// date: [today - DefaultWindowDays, today].
const DefaultWindowDays = 30

// DateLayout is the calendar date format used in queries and results.
const DateLayout = "2006-01-02"

// ErrInvalidDateRange is returned when the start date is after the end date.
var ErrInvalidDateRange = errors.New("start_date must be on or before end_date")

// Query is an analytics date range. Zero dates mean "not given".
type Query struct {
	StartDate time.Time
	EndDate   time.Time
}

// Range is a resolved, inclusive calendar-day range.
type Range struct {
	Start time.Time
	End   time.Time
}

// From returns the first instant of the range.
func (r Range) From() time.Time {
	return r.Start
}

// To returns the last instant of the range (end of the End day).
func (r Range) To() time.Time {
	return r.End.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Resolve turns q into a concrete range in loc relative to now. A missing
// date selects the default window. End dates in the future are clamped to
// today, but a start after the end is an error.
func Resolve(q Query, now time.Time, loc *time.Location) (Range, error) {
	today := dayStart(now.In(loc), loc)

	if q.StartDate.IsZero() || q.EndDate.IsZero() {
		return Range{Start: today.AddDate(0, 0, -DefaultWindowDays), End: today}, nil
	}

	start := dayStart(q.StartDate, loc)
	end := dayStart(q.EndDate, loc)
	if start.After(end) {
		return Range{}, ErrInvalidDateRange
	}
	if end.After(today) {
		end = today
	}
	return Range{Start: start, End: end}, nil
}

// ParseDate parses a YYYY-MM-DD date in loc. An empty string yields the zero
// time.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse date %q", s)
	}
	return t, nil
}

// dayStart returns midnight of t's calendar day in loc. The date components
// are taken as written, so dates parsed in another zone keep their day.
func dayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
