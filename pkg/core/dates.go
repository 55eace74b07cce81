package core

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout used for run range boundaries on the command line
// and in file names.
const DateLayout = "2006-01-02"

// DateFormats lists the layouts accepted when parsing dates found in source
// data, tried in order.
var DateFormats = []string{
	"2006-01-02 15:04:05.0000000",
	"2006-01-02 15:04:05",
	DateLayout,
	"01/02/2006",
	"1/2/2006",
}

// ParseDate parses a value against the given layouts, falling back to
// DateFormats when none are given. Surrounding whitespace is ignored.
func ParseDate(value string, layouts ...string) (time.Time, error) {
	if len(layouts) == 0 {
		layouts = DateFormats
	}
	v := strings.TrimSpace(value)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// Day truncates a time to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two DateLayout strings.
func NewDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if e.Before(s) {
		return DateRange{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return DateRange{Start: s, End: e}, nil
}

// DefaultDateRange returns the first day of now's month through yesterday.
// On the first of a month the range covers the whole previous month.
func DefaultDateRange(now time.Time) DateRange {
	yesterday := Day(now).AddDate(0, 0, -1)
	start := time.Date(yesterday.Year(), yesterday.Month(), 1, 0, 0, 0, 0, time.UTC)
	return DateRange{Start: start, End: yesterday}
}

// Contains reports whether t falls on a day inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(r.Start)) && !d.After(Day(r.End))
}

// StartString formats the start day with DateLayout.
func (r DateRange) StartString() string {
	return r.Start.Format(DateLayout)
}

// EndString formats the end day with DateLayout.
func (r DateRange) EndString() string {
	return r.End.Format(DateLayout)
}
