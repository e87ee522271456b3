/*
Package factory provides JSON to Go payment conversion.

PURPOSE:
  Converts JSON payment and payment type definitions into payroll.Payment
  and payroll.PaymentType values, validating them on the way in. The API
  decodes request bodies into these JSON shapes and hands them here, so
  every write path goes through the same checks.

JSON SCHEMA:
  Payment type:
  {
    "id": "pt-salary",
    "name": "Salary",
    "rrule": "MONTHLY",          // "", "MONTHLY" or "YEARLY"
    "description": "Base pay"
  }

  Payment:
  {
    "id": "pay-1",
    "payment_type_id": "pt-salary",
    "employee_id": "emp-1",
    "amount": "2500.00",          // string or number, at most 2 decimals
    "date": "2013-01-05",
    "end_date": "2013-12-31",     // optional, recurring payments only
    "description": "",
    "extra_fields": {"Cost center": "R&D"}
  }

DATES:
  Accepted layouts are listed in DateLayouts. Inputs that carry a zone are
  converted to the factory's Location and then stored naive; inputs without
  a zone are already naive wall-clock values.

AMOUNTS:
  At most MaxAmountDigits digits of which AmountPlaces after the point,
  matching the NUMERIC(10,2) column they end up in.

USAGE:
  f := factory.NewPaymentFactory(time.UTC)
  pt, err := f.ParsePaymentType(`{"name":"Salary","rrule":"MONTHLY"}`)
  p, err := f.ParsePayment(body)

SEE ALSO:
  - payroll/types.go: Payment and PaymentType
  - payroll/frequency.go: Recurrence rules
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payslip-engine/payroll"
)

const (
	MaxAmountDigits = 10
	AmountPlaces    = 2
)

// DateLayouts are tried in order when parsing payment dates.
var DateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PaymentTypeJSON is the JSON representation of a payment type.
type PaymentTypeJSON struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	RRule       string `json:"rrule"`
	Description string `json:"description,omitempty"`
}

// PaymentJSON is the JSON representation of a payment.
type PaymentJSON struct {
	ID            string              `json:"id,omitempty"`
	PaymentTypeID string              `json:"payment_type_id"`
	EmployeeID    string              `json:"employee_id"`
	Amount        decimal.NullDecimal `json:"amount"`
	Date          string              `json:"date"`
	EndDate       string              `json:"end_date,omitempty"`
	Description   string              `json:"description,omitempty"`
	ExtraFields   map[string]string   `json:"extra_fields,omitempty"`
}

// =============================================================================
// PAYMENT FACTORY
// =============================================================================

// PaymentFactory converts JSON payments to payroll values.
type PaymentFactory struct {
	Location *time.Location
}

// NewPaymentFactory creates a factory that interprets zoned dates in loc.
func NewPaymentFactory(loc *time.Location) *PaymentFactory {
	if loc == nil {
		loc = time.UTC
	}
	return &PaymentFactory{Location: loc}
}

// ParsePaymentType parses a JSON string into a PaymentType.
func (f *PaymentFactory) ParsePaymentType(jsonStr string) (*payroll.PaymentType, error) {
	var pj PaymentTypeJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse payment type JSON: %w", err)
	}
	return f.FromTypeJSON(pj)
}

// FromTypeJSON validates and converts a PaymentTypeJSON.
func (f *PaymentFactory) FromTypeJSON(pj PaymentTypeJSON) (*payroll.PaymentType, error) {
	name := strings.TrimSpace(pj.Name)
	if name == "" {
		return nil, &payroll.ValidationError{Field: "name", Message: "is required"}
	}

	rule, err := payroll.ParseFrequency(pj.RRule)
	if err != nil {
		return nil, &payroll.ValidationError{Field: "rrule", Message: "must be empty, MONTHLY or YEARLY"}
	}

	return &payroll.PaymentType{
		ID:          payroll.PaymentTypeID(pj.ID),
		Name:        name,
		Description: pj.Description,
		Rule:        rule,
	}, nil
}

// ToTypeJSON converts a PaymentType to PaymentTypeJSON.
func (f *PaymentFactory) ToTypeJSON(pt payroll.PaymentType) PaymentTypeJSON {
	return PaymentTypeJSON{
		ID:          string(pt.ID),
		Name:        pt.Name,
		RRule:       pt.Rule.String(),
		Description: pt.Description,
	}
}

// ParsePayment parses a JSON string into a Payment. Only the payment type id
// is set on the result; stores resolve the full type.
func (f *PaymentFactory) ParsePayment(jsonStr string) (*payroll.Payment, error) {
	var pj PaymentJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse payment JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON validates and converts a PaymentJSON.
func (f *PaymentFactory) FromJSON(pj PaymentJSON) (*payroll.Payment, error) {
	if pj.PaymentTypeID == "" {
		return nil, &payroll.ValidationError{Field: "payment_type_id", Message: "is required"}
	}
	if pj.EmployeeID == "" {
		return nil, &payroll.ValidationError{Field: "employee_id", Message: "is required"}
	}
	if !pj.Amount.Valid {
		return nil, &payroll.ValidationError{Field: "amount", Message: "is required"}
	}
	if err := ValidateAmount(pj.Amount.Decimal); err != nil {
		return nil, err
	}

	date, err := f.ParseDate(pj.Date)
	if err != nil {
		return nil, &payroll.ValidationError{Field: "date", Message: err.Error()}
	}

	p := &payroll.Payment{
		ID:          payroll.PaymentID(pj.ID),
		EmployeeID:  payroll.EmployeeID(pj.EmployeeID),
		Type:        payroll.PaymentType{ID: payroll.PaymentTypeID(pj.PaymentTypeID)},
		Amount:      pj.Amount.Decimal,
		Date:        date,
		Description: pj.Description,
		Attributes:  payroll.Attributes(pj.ExtraFields),
	}

	if strings.TrimSpace(pj.EndDate) != "" {
		end, err := f.ParseDate(pj.EndDate)
		if err != nil {
			return nil, &payroll.ValidationError{Field: "end_date", Message: err.Error()}
		}
		if end.Before(date) {
			return nil, &payroll.ValidationError{Field: "end_date", Message: "must not be before date"}
		}
		p.EndDate = &end
	}

	return p, nil
}

// ToJSON converts a Payment to PaymentJSON.
func (f *PaymentFactory) ToJSON(p payroll.Payment) PaymentJSON {
	pj := PaymentJSON{
		ID:            string(p.ID),
		PaymentTypeID: string(p.Type.ID),
		EmployeeID:    string(p.EmployeeID),
		Amount:        decimal.NewNullDecimal(p.Amount.Round(AmountPlaces)),
		Date:          FormatDate(p.Date),
		Description:   p.Description,
		ExtraFields:   p.Attributes,
	}
	if p.EndDate != nil {
		pj.EndDate = FormatDate(*p.EndDate)
	}
	return pj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// ParseDate tries each of DateLayouts and returns a naive wall-clock time.
// Fractional seconds are dropped.
func (f *PaymentFactory) ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("is required")
	}
	for _, layout := range DateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if layout == time.RFC3339Nano {
			return payroll.Naive(t, f.Location), nil
		}
		return payroll.Naive(t, nil), nil
	}
	return time.Time{}, fmt.Errorf("%q is not a valid date", s)
}

// FormatDate renders a naive time the way the API returns it.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}

// ValidateAmount enforces the NUMERIC(10,2) shape of payment amounts.
func ValidateAmount(d decimal.Decimal) error {
	if !d.Equal(d.Truncate(AmountPlaces)) {
		return &payroll.ValidationError{Field: "amount", Message: fmt.Sprintf("at most %d decimal places", AmountPlaces)}
	}
	limit := decimal.New(1, MaxAmountDigits-AmountPlaces)
	if d.Abs().GreaterThanOrEqual(limit) {
		return &payroll.ValidationError{Field: "amount", Message: fmt.Sprintf("at most %d digits", MaxAmountDigits)}
	}
	return nil
}
