package payroll_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payslip-engine/payroll"
	"github.com/warp/payslip-engine/payroll/store"
)

func newGenerator(payments ...payroll.Payment) (*payroll.Generator, *store.Memory) {
	mem := store.NewMemory()
	mem.Add(payments...)
	return &payroll.Generator{Source: mem, Currency: "EUR"}, mem
}

func forEmployee(id payroll.EmployeeID, p payroll.Payment) payroll.Payment {
	p.EmployeeID = id
	return p
}

// =============================================================================
// GENERATE
// =============================================================================

func TestGenerate(t *testing.T) {
	gen, _ := newGenerator(
		payment("salary", salary, "100.00", date(2013, 1, 5)),
		ending(payment("bonus", bonus, "1000.00", date(2012, 6, 15)), date(2013, 6, 15)),
		payment("fine", once, "-50.00", date(2013, 3, 10)),
		payment("old", once, "999.00", date(2012, 3, 10)),
	)

	slip, err := gen.Generate(context.Background(), payroll.Request{EmployeeID: "emp-1", Year: 2013, Month: 3})
	require.NoError(t, err)

	assert.Equal(t, payroll.EmployeeID("emp-1"), slip.EmployeeID)
	assert.Equal(t, time.March, slip.Month)
	assert.Equal(t, date(2013, 3, 1), slip.DateStart)
	assert.Equal(t, at(2013, 3, 31, 23, 59, 59), slip.DateEnd)
	assert.Equal(t, "EUR", slip.Currency)

	// salary + bonus (window restarts on March 1) in the period, plus the fine
	assert.Len(t, slip.Payments, 3)
	assertMoney(t, "1100.00", slip.Totals.Period.Positive, "sum")
	assertMoney(t, "-50.00", slip.Totals.Period.Negative, "sum_neg")
	assertMoney(t, "2200.00", slip.Totals.Year.Positive, "sum_year")
	assertMoney(t, "-50.00", slip.Totals.Year.Negative, "sum_year_neg")
}

func TestGenerate_EmployeeWithoutPayments(t *testing.T) {
	gen, mem := newGenerator()
	mem.AddEmployee("emp-2")

	slip, err := gen.Generate(context.Background(), payroll.Request{EmployeeID: "emp-2", Year: 2013, Month: 1})
	require.NoError(t, err)
	assert.Empty(t, slip.Payments)
	assert.True(t, slip.Totals.Year.Net().IsZero())
}

func TestGenerate_InvalidRequests(t *testing.T) {
	gen, _ := newGenerator(payment("salary", salary, "100.00", date(2013, 1, 5)))

	tests := []struct {
		name  string
		req   payroll.Request
		field string
	}{
		{"month zero", payroll.Request{EmployeeID: "emp-1", Year: 2013, Month: 0}, "month"},
		{"month thirteen", payroll.Request{EmployeeID: "emp-1", Year: 2013, Month: 13}, "month"},
		{"year zero", payroll.Request{EmployeeID: "emp-1", Year: 0, Month: 1}, "year"},
		{"no employee", payroll.Request{Year: 2013, Month: 1}, "employee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gen.Generate(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, payroll.IsClientError(err))

			var ve *payroll.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestGenerate_UnknownEmployee(t *testing.T) {
	gen, _ := newGenerator()

	_, err := gen.Generate(context.Background(), payroll.Request{EmployeeID: "ghost", Year: 2013, Month: 1})
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)
	assert.True(t, payroll.IsNotFound(err))
}

func TestGenerate_NoSource(t *testing.T) {
	gen := &payroll.Generator{}
	_, err := gen.Generate(context.Background(), payroll.Request{EmployeeID: "emp-1", Year: 2013, Month: 1})
	assert.ErrorIs(t, err, payroll.ErrSourceRequired)
}

type failingSource struct{ err error }

func (f failingSource) EmployeePayments(context.Context, payroll.EmployeeID, int) ([]payroll.Payment, error) {
	return nil, f.err
}

func TestGenerate_SourceErrorIsWrapped(t *testing.T) {
	boom := errors.New("disk on fire")
	gen := &payroll.Generator{Source: failingSource{err: boom}}

	_, err := gen.Generate(context.Background(), payroll.Request{EmployeeID: "emp-1", Year: 2013, Month: 1})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "emp-1")
}

// =============================================================================
// BATCH
// =============================================================================

func TestGenerateBatch_PreservesOrder(t *testing.T) {
	gen, _ := newGenerator(
		forEmployee("a", payment("a-salary", salary, "100.00", date(2013, 1, 1))),
		forEmployee("b", payment("b-salary", salary, "200.00", date(2013, 1, 1))),
		forEmployee("c", payment("c-salary", salary, "300.00", date(2013, 1, 1))),
		forEmployee("d", payment("d-salary", salary, "400.00", date(2013, 1, 1))),
		forEmployee("e", payment("e-salary", salary, "500.00", date(2013, 1, 1))),
	)
	gen.Concurrency = 2

	order := []payroll.EmployeeID{"e", "a", "d", "b", "c"}
	slips, err := gen.GenerateBatch(context.Background(), order, 2013, 2)
	require.NoError(t, err)
	require.Len(t, slips, len(order))

	for i, id := range order {
		assert.Equal(t, id, slips[i].EmployeeID)
	}
	assertMoney(t, "500.00", slips[0].Totals.Period.Positive, "e")
	assertMoney(t, "1200.00", slips[1].Totals.Year.Positive, "a")
}

func TestGenerateBatch_FirstErrorFails(t *testing.T) {
	gen, _ := newGenerator(forEmployee("a", payment("a-salary", salary, "100.00", date(2013, 1, 1))))

	_, err := gen.GenerateBatch(context.Background(), []payroll.EmployeeID{"a", "missing"}, 2013, 1)
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)
}

func TestGenerateBatch_SkipMissingLeavesNilSlot(t *testing.T) {
	gen, _ := newGenerator(
		forEmployee("a", payment("a-salary", salary, "100.00", date(2013, 1, 1))),
		forEmployee("c", payment("c-salary", salary, "300.00", date(2013, 1, 1))),
	)
	gen.SkipMissing = true

	// GIVEN: "b" was listed by the caller but is gone from the source
	slips, err := gen.GenerateBatch(context.Background(), []payroll.EmployeeID{"a", "b", "c"}, 2013, 1)

	// THEN: The run succeeds with a gap where "b" was
	require.NoError(t, err)
	require.Len(t, slips, 3)
	assert.Equal(t, payroll.EmployeeID("a"), slips[0].EmployeeID)
	assert.Nil(t, slips[1])
	assert.Equal(t, payroll.EmployeeID("c"), slips[2].EmployeeID)
}

func TestGenerateBatch_Empty(t *testing.T) {
	gen, _ := newGenerator()
	slips, err := gen.GenerateBatch(context.Background(), nil, 2013, 1)
	require.NoError(t, err)
	assert.Empty(t, slips)
}
