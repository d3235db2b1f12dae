package domain

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date used for record keys and file names.
const DateLayout = "2006-01-02"

// FormatDate formats t as an ISO calendar date in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses an ISO calendar date as local midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateRange is a closed range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from start to end inclusive.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start, end = Midnight(start), Midnight(end)
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("range end %s is before start %s", FormatDate(end), FormatDate(start))
	}
	return DateRange{Start: start, End: end}, nil
}

// LastNDays returns the n days ending with end, inclusive. n < 1 is treated as 1.
func LastNDays(end time.Time, n int) DateRange {
	if n < 1 {
		n = 1
	}
	end = Midnight(end)
	return DateRange{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

// Days lists every day in the range in ascending order.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Len is the number of days in the range.
func (r DateRange) Len() int {
	return len(r.Days())
}

// Contains reports whether the ISO date falls inside the range.
func (r DateRange) Contains(date string) bool {
	return date >= FormatDate(r.Start) && date <= FormatDate(r.End)
}

// Previous returns the range of equal length immediately before r.
func (r DateRange) Previous() DateRange {
	end := r.Start.AddDate(0, 0, -1)
	return LastNDays(end, r.Len())
}

func (r DateRange) String() string {
	return FormatDate(r.Start) + " to " + FormatDate(r.End)
}
