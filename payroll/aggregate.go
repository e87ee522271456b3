/*
aggregate.go - Signed totals for a payslip

PURPOSE:
  Turns year and period selections into the four totals a payslip prints:
  period earnings, period deductions, year earnings, year deductions.

RULES:
  - Single payments add their amount once.
  - Recurring payments add amount x occurrences in their window.
  - Each contribution goes to the positive or the negative total by sign.
    The two are never netted; Subtotal.Net does that for renderers.
  - Arithmetic is decimal throughout.

ANCHORING:
  AnchorWindowStart (default) counts occurrences anchored on the start of
  the clipped window, so a payment carried over from an earlier year
  restarts on January 1 and a period window restarts on the first of the
  month. AnchorPaymentDate counts only the occurrences of the payment's own
  series (anchored on its date) that fall in the window.

EXAMPLE:
  agg := payroll.Aggregator{}
  res, err := agg.Aggregate(yearSel, periodSel)
  res.Totals.Period.Positive // "sum" on the payslip
  res.Totals.Year.Negative   // "sum_year_neg"
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// AnchorMode selects where occurrence counting is anchored.
type AnchorMode string

const (
	AnchorWindowStart AnchorMode = "window_start"
	AnchorPaymentDate AnchorMode = "payment_date"
)

// ParseAnchorMode accepts the two mode names; "" is AnchorWindowStart.
func ParseAnchorMode(s string) (AnchorMode, error) {
	switch AnchorMode(s) {
	case "", AnchorWindowStart:
		return AnchorWindowStart, nil
	case AnchorPaymentDate:
		return AnchorPaymentDate, nil
	default:
		return "", &ValidationError{Field: "anchor_mode", Message: "must be window_start or payment_date"}
	}
}

// =============================================================================
// RESULT TYPES
// =============================================================================

// Subtotal keeps earnings and deductions apart.
type Subtotal struct {
	Positive decimal.Decimal
	Negative decimal.Decimal
}

// Net is Positive + Negative (deductions are already negative).
func (s Subtotal) Net() decimal.Decimal { return s.Positive.Add(s.Negative) }

func (s Subtotal) add(amount decimal.Decimal) Subtotal {
	switch amount.Sign() {
	case 1:
		s.Positive = s.Positive.Add(amount)
	case -1:
		s.Negative = s.Negative.Add(amount)
	}
	return s
}

// Totals are the four payslip sums.
type Totals struct {
	Period Subtotal
	Year   Subtotal
}

// Line is one payment's contribution to a selection.
type Line struct {
	Payment     Payment
	Window      Period
	Occurrences int
	Total       decimal.Decimal
}

// Result carries the totals and the itemized lines behind them.
type Result struct {
	Totals      Totals
	PeriodLines []Line
	YearLines   []Line
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator sums selections. The zero value anchors on the window start.
type Aggregator struct {
	Anchor AnchorMode
}

// Aggregate computes the period and year totals. An unsupported rule on any
// selected payment fails the whole aggregation.
func (a Aggregator) Aggregate(year, period Selection) (Result, error) {
	yearLines, yearTotal, err := a.Sum(year)
	if err != nil {
		return Result{}, err
	}
	periodLines, periodTotal, err := a.Sum(period)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Totals:      Totals{Period: periodTotal, Year: yearTotal},
		PeriodLines: periodLines,
		YearLines:   yearLines,
	}, nil
}

// Sum totals one selection.
func (a Aggregator) Sum(sel Selection) ([]Line, Subtotal, error) {
	total := Subtotal{Positive: decimal.Zero, Negative: decimal.Zero}
	lines := make([]Line, 0, len(sel.Items))

	for _, item := range sel.Items {
		line, err := a.line(item)
		if err != nil {
			return nil, Subtotal{}, &PaymentError{PaymentID: item.Payment.ID, Date: item.Payment.Date, Err: err}
		}
		total = total.add(line.Total)
		lines = append(lines, line)
	}
	return lines, total, nil
}

func (a Aggregator) line(item Selected) (Line, error) {
	p := item.Payment
	if !p.IsRecurring() {
		return Line{Payment: p, Window: item.Window, Occurrences: 1, Total: p.Amount}, nil
	}

	var (
		n   int
		err error
	)
	switch a.Anchor {
	case AnchorPaymentDate:
		n, err = CountAnchored(p.Type.Rule, p.Date, item.Window.Start, item.Window.End)
	default:
		n, err = CountOccurrences(p.Type.Rule, item.Window.Start, item.Window.End)
	}
	if err != nil {
		return Line{}, err
	}

	return Line{
		Payment:     p,
		Window:      item.Window,
		Occurrences: n,
		Total:       p.Amount.Mul(decimal.NewFromInt(int64(n))),
	}, nil
}
