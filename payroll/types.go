/*
Package payroll provides the payslip aggregation engine.

PURPOSE:
  This package contains the pure computation behind a payslip: which of an
  employee's payments count toward a reporting year and month, how often a
  recurring payment occurs inside a window, and the signed decimal totals
  that a renderer prints. It performs no I/O of its own; payments arrive
  through a PaymentSource.

KEY CONCEPTS IN THIS FILE (types.go):
  - Payment: A signed amount owed to (or deducted from) an employee
  - PaymentType: Carries the recurrence rule of its payments
  - Attributes: Free-form extra fields, passed through for display
  - Identifiers: Type-safe ids for employees, payments and types

DESIGN PRINCIPLES:
  1. Precision: amounts are decimal.Decimal, never float64
  2. Naive time: dates are wall-clock values; callers strip zones first
  3. Read-only: the engine never mutates the payments it is given

USAGE:
  p := payroll.Payment{
      EmployeeID: "emp-1",
      Type:       payroll.PaymentType{Name: "Salary", Rule: payroll.FrequencyMonthly},
      Amount:     decimal.RequireFromString("1000.00"),
      Date:       time.Date(2013, time.January, 5, 0, 0, 0, 0, time.UTC),
  }

SEE ALSO:
  - frequency.go: Recurrence rules
  - selector.go: Year and period selection
  - aggregate.go: Signed totals
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type PaymentID string
type PaymentTypeID string

// =============================================================================
// PAYMENT TYPE
// =============================================================================

// PaymentType groups payments and carries their recurrence rule.
type PaymentType struct {
	ID          PaymentTypeID
	Name        string
	Description string
	Rule        Frequency
}

// IsRecurring reports whether payments of this type repeat.
func (pt PaymentType) IsRecurring() bool { return pt.Rule != FrequencyNone }

// DisplayName renders "Salary (Monthly)" for recurring types and the bare
// name otherwise.
func (pt PaymentType) DisplayName() string {
	if pt.IsRecurring() {
		return pt.Name + " (" + pt.Rule.Label() + ")"
	}
	return pt.Name
}

// =============================================================================
// PAYMENT
// =============================================================================

// Payment is one payment record of an employee. The sign of Amount carries
// its direction: positive is an earning, negative a deduction.
type Payment struct {
	ID          PaymentID
	EmployeeID  EmployeeID
	Type        PaymentType
	Amount      decimal.Decimal
	Date        time.Time
	EndDate     *time.Time // only meaningful when Type is recurring
	Description string
	Attributes  Attributes
}

func (p Payment) IsRecurring() bool { return p.Type.IsRecurring() }

// Attributes maps an extra field type name to its value.
type Attributes map[string]string

// Get returns the value for a field type name, or "" when unset.
func (a Attributes) Get(name string) string {
	if a == nil {
		return ""
	}
	return a[name]
}

// =============================================================================
// TIME HELPERS
// =============================================================================

// Naive drops the zone of t after converting it to loc, keeping the wall
// clock to the second. Stored payment dates are always naive values in UTC.
func Naive(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// WholeSecond drops the sub-second part of t. Periods end at 23:59:59, so a
// date between that and midnight would otherwise belong to no month.
func WholeSecond(t time.Time) time.Time {
	return t.Truncate(time.Second)
}

// WholeSeconds returns p with its dates at whole-second resolution.
func (p Payment) WholeSeconds() Payment {
	p.Date = WholeSecond(p.Date)
	if p.EndDate != nil {
		end := WholeSecond(*p.EndDate)
		p.EndDate = &end
	}
	return p
}
