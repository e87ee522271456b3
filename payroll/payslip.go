/*
payslip.go - Payslip generation

PURPOSE:
  Ties a PaymentSource to the selection and aggregation passes:

    Request{employee, year, month}
      -> Validate
      -> Source.EmployeePayments      (one consistent read)
      -> SelectYear / SelectPeriod
      -> Aggregator.Aggregate
      -> Payslip (period lines + four totals + currency)

BATCHES:
  GenerateBatch produces payslips for many employees at once. Each employee
  is an independent read and computation, so they run concurrently up to
  Concurrency at a time; the first error cancels the rest. With SkipMissing
  an employee removed since the caller listed it leaves a nil slot instead.
*/
package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds GenerateBatch when Generator.Concurrency is 0.
const DefaultConcurrency = 4

// Request asks for one employee's payslip.
type Request struct {
	EmployeeID EmployeeID
	Year       int
	Month      int
}

// Validate checks year and month before the engine runs.
func (r Request) Validate() error {
	if r.EmployeeID == "" {
		return &ValidationError{Field: "employee", Message: "is required"}
	}
	if r.Year < 1 || r.Year > 9999 {
		return &ValidationError{Field: "year", Message: fmt.Sprintf("%d is out of range", r.Year)}
	}
	if r.Month < 1 || r.Month > 12 {
		return &ValidationError{Field: "month", Message: fmt.Sprintf("%d is not between 1 and 12", r.Month)}
	}
	return nil
}

// Payslip is the computed, non-persisted result handed to a renderer.
type Payslip struct {
	EmployeeID EmployeeID
	Year       int
	Month      time.Month
	DateStart  time.Time
	DateEnd    time.Time
	Payments   []Line // period lines, for itemized display
	YearLines  []Line
	Totals     Totals
	Currency   string
}

// Generator produces payslips.
type Generator struct {
	Source      PaymentSource
	Aggregator  Aggregator
	Currency    string
	Concurrency int

	// SkipMissing makes GenerateBatch tolerate ErrEmployeeNotFound.
	SkipMissing bool
}

// Generate computes the payslip for one request.
func (g *Generator) Generate(ctx context.Context, req Request) (*Payslip, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if g.Source == nil {
		return nil, ErrSourceRequired
	}

	payments, err := g.Source.EmployeePayments(ctx, req.EmployeeID, req.Year)
	if err != nil {
		return nil, fmt.Errorf("load payments for %s: %w", req.EmployeeID, err)
	}

	month := time.Month(req.Month)
	yearSel, periodSel, err := SelectMonth(payments, req.Year, month)
	if err != nil {
		return nil, err
	}

	res, err := g.Aggregator.Aggregate(yearSel, periodSel)
	if err != nil {
		return nil, fmt.Errorf("aggregate payslip for %s: %w", req.EmployeeID, err)
	}

	return &Payslip{
		EmployeeID: req.EmployeeID,
		Year:       req.Year,
		Month:      month,
		DateStart:  periodSel.Period.Start,
		DateEnd:    periodSel.Period.End,
		Payments:   res.PeriodLines,
		YearLines:  res.YearLines,
		Totals:     res.Totals,
		Currency:   g.Currency,
	}, nil
}

// GenerateBatch computes payslips for several employees for the same month.
// Results are returned in the order of employeeIDs. When SkipMissing is set,
// an employee the source no longer knows gets a nil entry.
func (g *Generator) GenerateBatch(ctx context.Context, employeeIDs []EmployeeID, year, month int) ([]*Payslip, error) {
	limit := g.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	out := make([]*Payslip, len(employeeIDs))
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(limit)

	for i, id := range employeeIDs {
		i, id := i, id
		grp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slip, err := g.Generate(gctx, Request{EmployeeID: id, Year: year, Month: month})
			if g.SkipMissing && errors.Is(err, ErrEmployeeNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			out[i] = slip
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
