// Package recurrence expands recurrence rules into concrete occurrence dates.
package recurrence

import (
	"fmt"
	"time"
)

// Dates are plain calendar dates, represented as midnight UTC. All arithmetic
// here is calendar arithmetic; there is no timezone or DST handling.

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date string into a midnight-UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, &InvalidDateError{Value: s, Err: err}
	}
	return t, nil
}

// InvalidDateError reports a malformed calendar date.
type InvalidDateError struct {
	Value string
	Err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %v", e.Value, e.Err)
}

func (e *InvalidDateError) Unwrap() error { return e.Err }

// Date truncates a time to its calendar date at midnight UTC.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddWeeks returns the date n weeks after d.
func AddWeeks(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, 7*n)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextMonthOnDay advances d to the given day-of-month in the following month,
// clamping to the last day when the target month is shorter (Jan 31 -> Feb 28).
// The caller passes the original target day so that a clamped month does not
// drift the rest of the sequence (Feb 28 must still yield Mar 31).
func NextMonthOnDay(d time.Time, day int) time.Time {
	first := time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	max := DaysInMonth(first.Year(), first.Month())
	if day > max {
		day = max
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// AddYears returns the date n years after d, clamping an invalid target day
// (Feb 29 -> Feb 28 on non-leap years).
func AddYears(d time.Time, n int) time.Time {
	year := d.Year() + n
	day := d.Day()
	if max := DaysInMonth(year, d.Month()); day > max {
		day = max
	}
	return time.Date(year, d.Month(), day, 0, 0, 0, 0, time.UTC)
}

// NthWeekdayOfMonth returns the date of the ordinal occurrence of a weekday
// within a month. OrdinalLast resolves to the final occurrence even when the
// month has five of that weekday.
func NthWeekdayOfMonth(year int, month time.Month, ordinal Ordinal, weekday time.Weekday) (time.Time, error) {
	if ordinal == OrdinalLast {
		last := time.Date(year, month, DaysInMonth(year, month), 0, 0, 0, 0, time.UTC)
		offset := int(last.Weekday()-weekday+7) % 7
		return last.AddDate(0, 0, -offset), nil
	}

	n, err := ordinal.Index()
	if err != nil {
		return time.Time{}, err
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(weekday-first.Weekday()+7) % 7
	return first.AddDate(0, 0, offset+7*(n-1)), nil
}
