/*
recurrence.go - Occurrence expansion for recurring payments

PURPOSE:
  Counts (or lists) the occurrences of a MONTHLY or YEARLY series inside an
  inclusive window. This is what turns a 100.00 monthly allowance into
  1200.00 for a full year.

ANCHORING:
  A series is anchored on a timestamp. MONTHLY repeats its day-of-month,
  YEARLY its month and day, both at the anchor's clock time. Occurrence k is
  always computed from the anchor (anchor + k*step months), never from the
  previous occurrence.

MONTH-LENGTH POLICY:
  When the anchor day does not exist in the target month the occurrence is
  clamped to the last day of that month:

    anchor 2013-01-31 MONTHLY -> 01-31, 02-28, 03-31, 04-30, ...
    anchor 2012-02-29 YEARLY  -> 2012-02-29, 2013-02-28, 2016-02-29

  This differs from RFC 5545, which skips such months entirely.

BOUNDS:
  Both window ends are inclusive. A window whose end is before its start
  contributes nothing and is not an error.
*/
package payroll

import "time"

// CountOccurrences counts the occurrences of a series anchored on start that
// land in [start, until]. When start equals until the result is exactly 1.
func CountOccurrences(freq Frequency, start, until time.Time) (int, error) {
	return CountAnchored(freq, start, start, until)
}

// CountAnchored counts the occurrences of the series anchored on anchor
// that land in [from, until]. Occurrences before the anchor do not exist.
func CountAnchored(freq Frequency, anchor, from, until time.Time) (int, error) {
	step, err := freq.months()
	if err != nil {
		return 0, err
	}
	if until.Before(from) {
		return 0, nil
	}

	count := 0
	for k := firstIndex(anchor, from, step); ; k++ {
		at := occurrence(anchor, k, step)
		if at.After(until) {
			break
		}
		if !at.Before(from) {
			count++
		}
	}
	return count, nil
}

// Occurrences lists the occurrence dates of CountAnchored.
func Occurrences(freq Frequency, anchor, from, until time.Time) ([]time.Time, error) {
	step, err := freq.months()
	if err != nil {
		return nil, err
	}
	if until.Before(from) {
		return nil, nil
	}

	var dates []time.Time
	for k := firstIndex(anchor, from, step); ; k++ {
		at := occurrence(anchor, k, step)
		if at.After(until) {
			break
		}
		if !at.Before(from) {
			dates = append(dates, at)
		}
	}
	return dates, nil
}

func occurrence(anchor time.Time, k, step int) time.Time {
	return ClampDate(anchor.Year(), anchor.Month()+time.Month(k*step), anchor.Day(), anchor)
}

// firstIndex skips whole steps that end before from. It may undershoot by
// one step; callers filter with !at.Before(from).
func firstIndex(anchor, from time.Time, step int) int {
	months := (from.Year()-anchor.Year())*12 + int(from.Month()) - int(anchor.Month())
	k := months/step - 1
	if k < 0 {
		return 0
	}
	return k
}
