package factory

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payslip-engine/payroll"
)

func TestParsePaymentType(t *testing.T) {
	f := NewPaymentFactory(nil)

	pt, err := f.ParsePaymentType(`{"id":"pt-1","name":"Salary","rrule":"monthly","description":"Base pay"}`)
	require.NoError(t, err)
	assert.Equal(t, payroll.PaymentTypeID("pt-1"), pt.ID)
	assert.Equal(t, payroll.FrequencyMonthly, pt.Rule)
	assert.Equal(t, "Salary (Monthly)", pt.DisplayName())

	pt, err = f.ParsePaymentType(`{"name":"Fine"}`)
	require.NoError(t, err)
	assert.False(t, pt.IsRecurring())
}

func TestParsePaymentType_Invalid(t *testing.T) {
	f := NewPaymentFactory(nil)

	_, err := f.ParsePaymentType(`{"name":"  "}`)
	assert.ErrorIs(t, err, payroll.ErrInvalidRequest)

	_, err = f.ParsePaymentType(`{"name":"Weekly","rrule":"WEEKLY"}`)
	var ve *payroll.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "rrule", ve.Field)

	_, err = f.ParsePaymentType(`{not json`)
	assert.Error(t, err)
}

func TestParsePayment(t *testing.T) {
	f := NewPaymentFactory(nil)

	p, err := f.ParsePayment(`{
		"id": "pay-1",
		"payment_type_id": "pt-salary",
		"employee_id": "emp-1",
		"amount": "2500.50",
		"date": "2013-01-05",
		"end_date": "2013-12-31 23:59:59",
		"extra_fields": {"Cost center": "R&D"}
	}`)
	require.NoError(t, err)

	assert.Equal(t, payroll.PaymentID("pay-1"), p.ID)
	assert.Equal(t, payroll.PaymentTypeID("pt-salary"), p.Type.ID)
	assert.Equal(t, "2500.50", p.Amount.StringFixed(2))
	assert.Equal(t, time.Date(2013, 1, 5, 0, 0, 0, 0, time.UTC), p.Date)
	require.NotNil(t, p.EndDate)
	assert.Equal(t, time.Date(2013, 12, 31, 23, 59, 59, 0, time.UTC), *p.EndDate)
	assert.Equal(t, "R&D", p.Attributes.Get("Cost center"))
}

func TestParsePayment_NumericAmount(t *testing.T) {
	f := NewPaymentFactory(nil)
	p, err := f.ParsePayment(`{"payment_type_id":"pt","employee_id":"e","amount":-50.5,"date":"2013-03-10"}`)
	require.NoError(t, err)
	assert.Equal(t, "-50.50", p.Amount.StringFixed(2))
	assert.Nil(t, p.EndDate)
}

func TestParsePayment_Validation(t *testing.T) {
	f := NewPaymentFactory(nil)

	tests := []struct {
		name  string
		json  string
		field string
	}{
		{"missing type", `{"employee_id":"e","amount":"1","date":"2013-01-01"}`, "payment_type_id"},
		{"missing employee", `{"payment_type_id":"pt","amount":"1","date":"2013-01-01"}`, "employee_id"},
		{"missing amount", `{"payment_type_id":"pt","employee_id":"e","date":"2013-01-01"}`, "amount"},
		{"three decimals", `{"payment_type_id":"pt","employee_id":"e","amount":"1.005","date":"2013-01-01"}`, "amount"},
		{"too many digits", `{"payment_type_id":"pt","employee_id":"e","amount":"123456789.00","date":"2013-01-01"}`, "amount"},
		{"missing date", `{"payment_type_id":"pt","employee_id":"e","amount":"1"}`, "date"},
		{"bad date", `{"payment_type_id":"pt","employee_id":"e","amount":"1","date":"05/01/2013"}`, "date"},
		{"bad end date", `{"payment_type_id":"pt","employee_id":"e","amount":"1","date":"2013-01-01","end_date":"soon"}`, "end_date"},
		{"end before date", `{"payment_type_id":"pt","employee_id":"e","amount":"1","date":"2013-06-01","end_date":"2013-05-31"}`, "end_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParsePayment(tt.json)
			require.Error(t, err)
			assert.True(t, payroll.IsClientError(err))

			var ve *payroll.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidateAmount_Bounds(t *testing.T) {
	f := NewPaymentFactory(nil)
	_, err := f.ParsePayment(`{"payment_type_id":"pt","employee_id":"e","amount":"99999999.99","date":"2013-01-01"}`)
	assert.NoError(t, err, "eight integer digits and two decimals is the largest amount")

	_, err = f.ParsePayment(`{"payment_type_id":"pt","employee_id":"e","amount":"-99999999.99","date":"2013-01-01"}`)
	assert.NoError(t, err)
}

func TestParseDate_ZonedInputIsConvertedThenMadeNaive(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	f := NewPaymentFactory(ny)

	// GIVEN: A UTC instant early on January 1
	// WHEN: The factory's zone is New York
	// THEN: The stored wall clock is the New York one, December 31
	got, err := f.ParseDate("2013-01-01T03:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2012, 12, 31, 22, 0, 0, 0, time.UTC), got)

	// Naive inputs are taken as-is.
	got, err = f.ParseDate("2013-01-01T03:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2013, 1, 1, 3, 0, 0, 0, time.UTC), got)
}

func TestParseDate_DropsFractionalSeconds(t *testing.T) {
	f := NewPaymentFactory(nil)
	want := time.Date(2013, 1, 31, 23, 59, 59, 0, time.UTC)

	for _, in := range []string{
		"2013-01-31T23:59:59.5Z",
		"2013-01-31T23:59:59.999999999",
		"2013-01-31 23:59:59.25",
	} {
		got, err := f.ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, "2013-01-31T23:59:59", FormatDate(got), "formatting round-trips %s", in)
	}
}

func TestToJSON(t *testing.T) {
	f := NewPaymentFactory(nil)
	src := `{"id":"pay-1","payment_type_id":"pt","employee_id":"e","amount":"100","date":"2013-01-05","end_date":"2013-06-05"}`

	p, err := f.ParsePayment(src)
	require.NoError(t, err)

	b, err := json.Marshal(f.ToJSON(*p))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id":"pay-1",
		"payment_type_id":"pt",
		"employee_id":"e",
		"amount":"100",
		"date":"2013-01-05T00:00:00",
		"end_date":"2013-06-05T00:00:00"
	}`, string(b))

	ptj := f.ToTypeJSON(payroll.PaymentType{ID: "pt", Name: "Bonus", Rule: payroll.FrequencyYearly})
	assert.Equal(t, "YEARLY", ptj.RRule)
}
