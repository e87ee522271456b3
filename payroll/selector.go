/*
selector.go - Year and period payment selection

PURPOSE:
  Narrows an employee's payments to the ones a payslip reports on. Selection
  happens in two passes so that year and period totals printed side by side
  stay consistent: the period pass only ever sees the year pass's output.
  Dates are compared at whole seconds, matching the 23:59:59 period ends.

YEAR PASS (SelectYear):
  Single:    date.year == year
  Recurring: date <= Dec 31 23:59:59 AND (no end_date OR end_date >= Jan 1)
             window = [date or Jan 1, end_date or Dec 31 23:59:59]

PERIOD PASS (SelectPeriod):
  Single:    period.start <= date <= period.end
  Recurring: year window overlaps the period; window clipped to the period
*/
package payroll

import "time"

// Selected is one payment chosen for a year or a period, with the window
// its occurrences are counted in. For single payments the window is the
// payment date itself.
type Selected struct {
	Payment Payment
	Window  Period
}

// Selection is the result of a selection pass.
type Selection struct {
	Year   int
	Period Period
	Items  []Selected
}

// Len returns the number of selected payments.
func (s Selection) Len() int { return len(s.Items) }

// SelectYear keeps the payments relevant to the calendar year.
func SelectYear(payments []Payment, year int) Selection {
	bounds := YearPeriod(year)
	sel := Selection{Year: year, Period: bounds}

	for _, p := range payments {
		p = p.WholeSeconds()
		if !p.IsRecurring() {
			if p.Date.Year() == year {
				sel.Items = append(sel.Items, Selected{Payment: p, Window: Period{Start: p.Date, End: p.Date}})
			}
			continue
		}

		if p.Date.After(bounds.End) {
			continue
		}
		if p.EndDate != nil && p.EndDate.Before(bounds.Start) {
			continue
		}

		window := Period{Start: bounds.Start, End: bounds.End}
		if p.Date.Year() == year {
			window.Start = p.Date
		}
		if p.EndDate != nil && p.EndDate.Before(bounds.End) {
			window.End = *p.EndDate
		}
		if window.IsEmpty() {
			continue
		}
		sel.Items = append(sel.Items, Selected{Payment: p, Window: window})
	}
	return sel
}

// SelectPeriod refines a year selection to a reporting period. The period
// must lie within the selection's year.
func SelectPeriod(year Selection, period Period) (Selection, error) {
	if period.IsEmpty() || !period.Within(year.Period) {
		return Selection{}, ErrPeriodOutsideYear
	}

	sel := Selection{Year: year.Year, Period: period}
	for _, item := range year.Items {
		if !item.Payment.IsRecurring() {
			if period.Contains(item.Payment.Date) {
				sel.Items = append(sel.Items, item)
			}
			continue
		}

		if !item.Window.Overlaps(period) {
			continue
		}
		sel.Items = append(sel.Items, Selected{Payment: item.Payment, Window: item.Window.Clip(period)})
	}
	return sel, nil
}

// SelectMonth runs both passes for a year and month.
func SelectMonth(payments []Payment, year int, month time.Month) (yearSel, periodSel Selection, err error) {
	yearSel = SelectYear(payments, year)
	periodSel, err = SelectPeriod(yearSel, MonthPeriod(year, month))
	return yearSel, periodSel, err
}
