package ledger

import (
	"time"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// DateLayout is the calendar-day format used in ids, CSV and messages.
const DateLayout = "2006-01-02"

// Day truncates t to midnight of its calendar day in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return Day(a, loc).Equal(Day(b, loc))
}

// DaysBetween is the calendar-day difference to - from in loc.
func DaysBetween(from, to time.Time, loc *time.Location) int {
	f := Day(from, loc)
	t := Day(to, loc)
	// Normalize through UTC so DST shifts do not skew the count.
	fu := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	tu := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(tu.Sub(fu).Hours() / 24)
}

// Advance moves t forward by one period of f. Monthly steps clamp to the
// last day of a shorter month (Jan 31 -> Feb 28).
func Advance(t time.Time, f models.Frequency) time.Time {
	switch f {
	case models.FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case models.FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case models.FrequencyMonthly:
		return addMonthClamped(t)
	default:
		return t
	}
}

func addMonthClamped(t time.Time) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+1, 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
