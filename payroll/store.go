/*
store.go - Read interface between the engine and persistence

PURPOSE:
  The engine never loads data itself. A PaymentSource hands it one
  employee's payments for a reporting year, taken from a single consistent
  read (one transaction in SQL stores, one lock in memory).

CONTRACT:
  - EmployeePayments returns ErrEmployeeNotFound for unknown employees.
  - It may pre-filter by year, but must return at least every payment that
    SelectYear would keep. Selection rules are re-applied by the engine.
  - The returned slice is owned by the caller.

IMPLEMENTATIONS:
  - store/sqlite: Production store
  - payroll/store: In-memory for testing
*/
package payroll

import "context"

// PaymentSource loads the payments of one employee.
type PaymentSource interface {
	EmployeePayments(ctx context.Context, employeeID EmployeeID, year int) ([]Payment, error)
}

// YearFilter is a storage-side pre-filter: the payments a source needs to
// return for SelectYear(_, year). Stores can translate it into a query.
func YearFilter(p Payment, year int) bool {
	bounds := YearPeriod(year)
	p = p.WholeSeconds()
	if !p.IsRecurring() {
		return p.Date.Year() == year
	}
	return !p.Date.After(bounds.End) && (p.EndDate == nil || !p.EndDate.Before(bounds.Start))
}
