package payroll

import "time"

// =============================================================================
// PERIOD - Inclusive window of wall-clock time
// =============================================================================

// Period is the inclusive window [Start, End]. Year and month periods end on
// the last day at 23:59:59.
//
// Examples:
//   - YearPeriod(2013):     2013-01-01 00:00:00 .. 2013-12-31 23:59:59
//   - MonthPeriod(2013, 2): 2013-02-01 00:00:00 .. 2013-02-28 23:59:59
type Period struct {
	Start time.Time
	End   time.Time
}

// YearPeriod returns the calendar year as a period.
func YearPeriod(year int) Period {
	return Period{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   endOfDay(time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)),
	}
}

// MonthPeriod returns the calendar month as a period.
func MonthPeriod(year int, month time.Month) Period {
	return Period{
		Start: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
		End:   endOfDay(time.Date(year, month, DaysIn(year, month), 0, 0, 0, 0, time.UTC)),
	}
}

// IsEmpty is true when End is before Start.
func (p Period) IsEmpty() bool { return p.End.Before(p.Start) }

// Contains returns true if t is within [Start, End].
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Overlaps reports whether the two windows share at least one instant.
func (p Period) Overlaps(other Period) bool {
	return !p.Start.After(other.End) && !other.Start.After(p.End)
}

// Within reports whether p lies entirely inside other.
func (p Period) Within(other Period) bool {
	return other.Contains(p.Start) && other.Contains(p.End)
}

// Clip narrows p to the part inside other. The result may be empty.
func (p Period) Clip(other Period) Period {
	out := p
	if other.Start.After(out.Start) {
		out.Start = other.Start
	}
	if other.End.Before(out.End) {
		out.End = other.End
	}
	return out
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.Format(dateTimeLayout) + ", " + p.End.Format(dateTimeLayout) + "]"
}

// =============================================================================
// CALENDAR UTILITIES
// =============================================================================

const dateTimeLayout = "2006-01-02 15:04:05"

// DaysIn returns the number of days in the month, month overflow included
// (month 13 of 2012 is January 2013).
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDate builds the date year/month/day at the clock of ref, moving day
// back to the last day of the month when the month is shorter. month may
// overflow in either direction.
func ClampDate(year int, month time.Month, day int, ref time.Time) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, ref.Hour(), ref.Minute(), ref.Second(), ref.Nanosecond(), time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
