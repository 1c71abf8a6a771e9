package util

import (
	"time"
)

// QuarterEndsOnOrBefore returns the n calendar quarter-end dates (03-31, 06-30, 09-30, 12-31)
// falling on or before ref, most recent first. Results are UTC midnight.
func QuarterEndsOnOrBefore(ref time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	ref = truncateDay(ref)

	// Last day of the calendar quarter containing ref
	qEndMonth := time.Month(((int(ref.Month())-1)/3 + 1) * 3)
	end := lastDayOfMonth(ref.Year(), qEndMonth)
	if end.After(ref) {
		end = lastDayOfMonth(ref.Year(), qEndMonth-3)
	}

	ends := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		ends = append(ends, end)
		end = lastDayOfMonth(end.Year(), end.Month()-3)
	}
	return ends
}

// DaysBetween returns the number of whole calendar days from start to end
func DaysBetween(start, end time.Time) int {
	return int(truncateDay(end).Sub(truncateDay(start)).Hours() / 24)
}

// SameYearMonth reports whether two dates fall in the same calendar month
func SameYearMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// WithinMonths reports whether a and b are at most the given number of calendar months apart.
// The day of month is clamped to the end of the target month, so 12-31 plus six months is 06-30.
func WithinMonths(a, b time.Time, months int) bool {
	a, b = truncateDay(a), truncateDay(b)
	if a.After(b) {
		a, b = b, a
	}
	last := lastDayOfMonth(a.Year(), a.Month()+time.Month(months))
	limit := time.Date(last.Year(), last.Month(), min(a.Day(), last.Day()), 0, 0, 0, 0, time.UTC)
	return !b.After(limit)
}

// lastDayOfMonth normalizes month overflow/underflow, so month 0 is December of year-1
func lastDayOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
