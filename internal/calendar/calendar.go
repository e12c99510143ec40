// Package calendar holds the date arithmetic shared by the ledger, billing
// and visitor packages. Dates are persisted as ISO YYYY-MM-DD strings.
package calendar

import "time"

const DateLayout = "2006-01-02"

// Clock returns the current instant. Services take one so tests can pin "today".
type Clock func() time.Time

// Today truncates now to midnight in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay caps day to the last day of the month; values below 1 become 1.
func ClampDay(year int, month time.Month, day int) int {
	if day < 1 {
		return 1
	}
	if last := DaysIn(year, month); day > last {
		return last
	}
	return day
}

// DefaultStay is the interval applied when a resident is assigned a room
// without explicit dates: today through the same day next year.
func DefaultStay(today time.Time) (string, string) {
	return Format(today), Format(today.AddDate(1, 0, 0))
}
