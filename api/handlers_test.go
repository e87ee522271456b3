/*
handlers_test.go - Unit tests for API handlers

Tests for:
- CRUD round trips and error status mapping
- Payslip generation for one employee
- Company payslip runs and their rate limit
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payslip-engine/hr"
	"github.com/warp/payslip-engine/payroll"
	"github.com/warp/payslip-engine/payroll/store"
	"github.com/warp/payslip-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewHandler(s, &payroll.Generator{Currency: "EUR"}, nil)
}

func newTestServer(t *testing.T, h *Handler, limiter *RateLimiter) http.Handler {
	t.Helper()
	return NewRouter(h, RouterOptions{Logger: zerolog.Nop(), BatchLimiter: limiter})
}

func do(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeAs[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// seedPayroll stores one employee with the three reference payments.
func seedPayroll(t *testing.T, h *Handler) *hr.Employee {
	t.Helper()
	ctx := context.Background()

	co, err := h.Store.CreateCompany(ctx, hr.Company{ID: "co-1", Name: "Acme"})
	require.NoError(t, err)
	_, err = h.Store.CreateFieldType(ctx, hr.ExtraFieldType{Name: "Cost center", Model: hr.ModelPayment})
	require.NoError(t, err)

	emp, err := h.Store.CreateEmployee(ctx, hr.NewEmployee{
		Employee: hr.Employee{
			ID: "emp-1", CompanyID: co.ID, FirstName: "Ada", LastName: "Lovelace",
			Email: "ada@example.com", Title: hr.TitleMs,
		},
		Password: "secret", RetypePassword: "secret",
	})
	require.NoError(t, err)

	types := map[string]payroll.Frequency{
		"pt-salary": payroll.FrequencyMonthly,
		"pt-bonus":  payroll.FrequencyYearly,
		"pt-fine":   payroll.FrequencyNone,
	}
	for id, rule := range types {
		_, err := h.Store.CreatePaymentType(ctx, payroll.PaymentType{ID: payroll.PaymentTypeID(id), Name: id, Rule: rule})
		require.NoError(t, err)
	}

	bonusEnd := time.Date(2013, 6, 15, 0, 0, 0, 0, time.UTC)
	payments := []payroll.Payment{
		{Type: payroll.PaymentType{ID: "pt-salary"}, Amount: decimal.RequireFromString("100.00"), Date: time.Date(2013, 1, 5, 0, 0, 0, 0, time.UTC),
			Attributes: payroll.Attributes{"Cost center": "4100"}},
		{Type: payroll.PaymentType{ID: "pt-bonus"}, Amount: decimal.RequireFromString("1000.00"), Date: time.Date(2012, 6, 15, 0, 0, 0, 0, time.UTC), EndDate: &bonusEnd},
		{Type: payroll.PaymentType{ID: "pt-fine"}, Amount: decimal.RequireFromString("-50.00"), Date: time.Date(2013, 3, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, p := range payments {
		p.EmployeeID = emp.ID
		_, err := h.Store.CreatePayment(ctx, p)
		require.NoError(t, err)
	}
	return emp
}

// =============================================================================
// CRUD
// =============================================================================

func TestCompanies_CRUDOverHTTP(t *testing.T) {
	h := newTestHandler(t)
	srv := newTestServer(t, h, nil)

	// GIVEN: A created company
	rec := do(t, srv, http.MethodPost, "/api/companies", CompanyDTO{Name: "Acme", Address: "Main St"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeAs[CompanyDTO](t, rec)
	assert.NotEmpty(t, created.ID)

	// WHEN: Updating it
	rec = do(t, srv, http.MethodPut, "/api/companies/"+created.ID, CompanyDTO{Name: "Acme Ltd"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: Reads see the new name
	rec = do(t, srv, http.MethodGet, "/api/companies/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme Ltd", decodeAs[CompanyDTO](t, rec).Name)

	rec = do(t, srv, http.MethodGet, "/api/companies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeAs[[]CompanyDTO](t, rec), 1)

	rec = do(t, srv, http.MethodDelete, "/api/companies/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/companies/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeAs[ErrorResponse](t, rec).Code)
}

func TestCreateEmployee_Errors(t *testing.T) {
	h := newTestHandler(t)
	srv := newTestServer(t, h, nil)
	seedPayroll(t, h)

	base := EmployeeRequest{CompanyID: "co-1", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Title: "4"}

	t.Run("passwords must match", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/employees", CreateEmployeeRequest{
			EmployeeRequest: base, Password: "a", RetypePassword: "b",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeAs[struct {
			Details map[string]string `json:"details"`
		}](t, rec)
		assert.Equal(t, "retype_password", resp.Details["field"])
	})

	t.Run("email is unique regardless of case", func(t *testing.T) {
		dup := base
		dup.Email = "ADA@example.com"
		rec := do(t, srv, http.MethodPost, "/api/employees", CreateEmployeeRequest{
			EmployeeRequest: dup, Password: "a", RetypePassword: "a",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown company", func(t *testing.T) {
		other := base
		other.CompanyID = "nope"
		rec := do(t, srv, http.MethodPost, "/api/employees", CreateEmployeeRequest{
			EmployeeRequest: other, Password: "a", RetypePassword: "a",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("created", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/employees", CreateEmployeeRequest{
			EmployeeRequest: base, Password: "a", RetypePassword: "a",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		e := decodeAs[EmployeeDTO](t, rec)
		assert.Equal(t, "Grace Hopper", e.FullName)
		assert.Equal(t, "Dr.", e.TitleLabel)
		assert.NotContains(t, rec.Body.String(), "password")
	})
}

func TestPayments_OverHTTP(t *testing.T) {
	h := newTestHandler(t)
	srv := newTestServer(t, h, nil)
	seedPayroll(t, h)

	t.Run("too many decimals", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/payments", map[string]any{
			"payment_type_id": "pt-fine", "employee_id": "emp-1", "amount": "1.005", "date": "2013-04-01",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown payment type", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/payments", map[string]any{
			"payment_type_id": "pt-none", "employee_id": "emp-1", "amount": "1", "date": "2013-04-01",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("created and listed", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/payments", map[string]any{
			"payment_type_id": "pt-fine", "employee_id": "emp-1", "amount": 12.5, "date": "2013-04-01T08:30:00",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		p := decodeAs[PaymentDTO](t, rec)
		assert.Equal(t, "2013-04-01T08:30:00", p.Date)
		assert.Equal(t, "pt-fine", p.PaymentType)

		rec = do(t, srv, http.MethodGet, "/api/employees/emp-1/payments", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		list := decodeAs[[]PaymentDTO](t, rec)
		require.Len(t, list, 4)
		assert.Equal(t, p.ID, list[0].ID, "newest first")
	})

	t.Run("payment type in use", func(t *testing.T) {
		rec := do(t, srv, http.MethodDelete, "/api/payment-types/pt-salary", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown rule", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/payment-types", map[string]any{"name": "Weekly", "rrule": "WEEKLY"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFieldTypes_OverHTTP(t *testing.T) {
	h := newTestHandler(t)
	srv := newTestServer(t, h, nil)

	rec := do(t, srv, http.MethodPost, "/api/field-types", FieldTypeDTO{Name: "Tax class", Model: "employee", FixedValues: true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ft := decodeAs[FieldTypeDTO](t, rec)
	assert.Equal(t, "Employee", ft.Model)

	rec = do(t, srv, http.MethodPost, "/api/field-types", FieldTypeDTO{Name: "Tax class"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/field-types", FieldTypeDTO{Name: "Other", Model: "Vehicle"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/extra-fields", ExtraFieldDTO{FieldTypeID: ft.ID, Value: "III"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Tax class", decodeAs[ExtraFieldDTO](t, rec).FieldType)
}

func TestDashboard(t *testing.T) {
	h := newTestHandler(t)
	srv := newTestServer(t, h, nil)
	seedPayroll(t, h)

	rec := do(t, srv, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	dash := decodeAs[DashboardDTO](t, rec)
	assert.Equal(t, DashboardCounts{
		Companies: 1, Employees: 1, FieldTypes: 1, ExtraFields: 0, PaymentTypes: 3, Payments: 3,
	}, dash.Counts)
	assert.Len(t, dash.Payments, 3)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, newTestServer(t, h, nil), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// PAYSLIPS
// =============================================================================

func TestGeneratePayslip(t *testing.T) {
	h := newTestHandler(t)
	srv := newTestServer(t, h, nil)
	seedPayroll(t, h)

	// WHEN: Requesting March 2013
	rec := do(t, srv, http.MethodPost, "/api/payslip", PayslipRequest{Employee: "emp-1", Year: 2013, Month: 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	slip := decodeAs[PayslipDTO](t, rec)

	// THEN: Salary, bonus and the fine are in the month
	assert.Equal(t, "2013-03-01T00:00:00", slip.DateStart)
	assert.Equal(t, "2013-03-31T23:59:59", slip.DateEnd)
	assert.Equal(t, "1100.00", slip.Sum)
	assert.Equal(t, "-50.00", slip.SumNeg)
	assert.Equal(t, "1050.00", slip.Net)
	assert.Equal(t, "2200.00", slip.SumYear)
	assert.Equal(t, "-50.00", slip.SumYearNeg)
	assert.Equal(t, "2150.00", slip.NetYear)
	assert.Equal(t, "EUR", slip.Currency)
	assert.Equal(t, "Ada Lovelace", slip.Employee.FullName)
	assert.Len(t, slip.Payments, 3)
	require.Len(t, slip.PaymentExtraFields, 1)
	assert.Equal(t, "Cost center", slip.PaymentExtraFields[0].Name)
}

func TestGeneratePayslip_Errors(t *testing.T) {
	h := newTestHandler(t)
	srv := newTestServer(t, h, nil)
	seedPayroll(t, h)

	tests := []struct {
		name   string
		req    PayslipRequest
		status int
	}{
		{"month out of range", PayslipRequest{Employee: "emp-1", Year: 2013, Month: 13}, http.StatusBadRequest},
		{"year out of range", PayslipRequest{Employee: "emp-1", Year: 0, Month: 1}, http.StatusBadRequest},
		{"missing employee", PayslipRequest{Year: 2013, Month: 1}, http.StatusBadRequest},
		{"unknown employee", PayslipRequest{Employee: "emp-404", Year: 2013, Month: 1}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/payslip", tt.req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestGeneratePayslip_UnsupportedRuleIsUnprocessable(t *testing.T) {
	h := newTestHandler(t)
	mem := store.NewMemory()
	mem.Add(payroll.Payment{
		ID:         "odd",
		EmployeeID: "emp-1",
		Type:       payroll.PaymentType{Name: "Odd", Rule: payroll.Frequency(9)},
		Amount:     decimal.NewFromInt(10),
		Date:       time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	h.Generator.Source = mem
	srv := newTestServer(t, h, nil)

	rec := do(t, srv, http.MethodPost, "/api/payslip", PayslipRequest{Employee: "emp-1", Year: 2013, Month: 1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, "unsupported_configuration", decodeAs[ErrorResponse](t, rec).Code)
}

func TestGenerateCompanyPayslips(t *testing.T) {
	h := newTestHandler(t)
	srv := newTestServer(t, h, nil)
	seedPayroll(t, h)
	ctx := context.Background()

	_, err := h.Store.CreateEmployee(ctx, hr.NewEmployee{
		Employee: hr.Employee{
			ID: "emp-2", CompanyID: "co-1", FirstName: "Zed", LastName: "Shaw",
			Email: "zed@example.com", Title: hr.TitleMr,
		},
		Password: "x", RetypePassword: "x",
	})
	require.NoError(t, err)

	rec := do(t, srv, http.MethodPost, "/api/companies/co-1/payslips", CompanyPayslipsRequest{Year: 2013, Month: 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	run := decodeAs[CompanyPayslipsDTO](t, rec)
	require.Len(t, run.Payslips, 2)
	assert.Equal(t, "emp-1", run.Payslips[0].Employee.ID)
	assert.Equal(t, "emp-2", run.Payslips[1].Employee.ID)
	assert.Equal(t, "0.00", run.Payslips[1].Sum, "an employee without payments gets zero sums")
	assert.Equal(t, "1050.00", run.Net)

	rec = do(t, srv, http.MethodPost, "/api/companies/co-404/payslips", CompanyPayslipsRequest{Year: 2013, Month: 3})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/companies/co-1/payslips", CompanyPayslipsRequest{Year: 2013, Month: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateCompanyPayslips_SkipsEmployeeDeletedDuringRun(t *testing.T) {
	h := newTestHandler(t)
	seedPayroll(t, h)
	ctx := context.Background()

	_, err := h.Store.CreateEmployee(ctx, hr.NewEmployee{
		Employee: hr.Employee{
			ID: "emp-2", CompanyID: "co-1", FirstName: "Zed", LastName: "Shaw",
			Email: "zed@example.com", Title: hr.TitleMr,
		},
		Password: "x", RetypePassword: "x",
	})
	require.NoError(t, err)

	// GIVEN: The payment source no longer knows emp-2, as if it was deleted
	// after the company's employees were listed
	mem := store.NewMemory()
	mem.Add(payroll.Payment{
		ID:         "salary",
		EmployeeID: "emp-1",
		Type:       payroll.PaymentType{Name: "Salary", Rule: payroll.FrequencyMonthly},
		Amount:     decimal.NewFromInt(1000),
		Date:       time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	h.Generator.Source = mem
	srv := newTestServer(t, h, nil)

	// WHEN: The company run is requested
	rec := do(t, srv, http.MethodPost, "/api/companies/co-1/payslips", CompanyPayslipsRequest{Year: 2013, Month: 3})

	// THEN: It succeeds without emp-2
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	run := decodeAs[CompanyPayslipsDTO](t, rec)
	require.Len(t, run.Payslips, 1)
	assert.Equal(t, "emp-1", run.Payslips[0].Employee.ID)
	assert.Equal(t, "1000.00", run.Net)
	assert.False(t, h.Generator.SkipMissing, "the shared generator is left untouched")

	// AND: A single payslip for the missing employee is still a 404
	rec = do(t, srv, http.MethodPost, "/api/payslip", PayslipRequest{Employee: "emp-2", Year: 2013, Month: 3})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateCompanyPayslips_RateLimited(t *testing.T) {
	h := newTestHandler(t)
	seedPayroll(t, h)

	limiter := NewRateLimiter(1)
	t.Cleanup(limiter.Stop)
	srv := newTestServer(t, h, limiter)

	rec := do(t, srv, http.MethodPost, "/api/companies/co-1/payslips", CompanyPayslipsRequest{Year: 2013, Month: 3})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/companies/co-1/payslips", CompanyPayslipsRequest{Year: 2013, Month: 3})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Other endpoints are not limited.
	rec = do(t, srv, http.MethodPost, "/api/payslip", PayslipRequest{Employee: "emp-1", Year: 2013, Month: 3})
	assert.Equal(t, http.StatusOK, rec.Code)
}
