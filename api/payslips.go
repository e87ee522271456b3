package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
	"github.com/shopspring/decimal"
	"github.com/warp/payslip-engine/hr"
	"github.com/warp/payslip-engine/payroll"
)

// =============================================================================
// PAYSLIP HANDLERS
// =============================================================================

// GeneratePayslip computes one employee's payslip.
// POST /api/payslip {"employee": "...", "year": 2013, "month": 3}
func (h *Handler) GeneratePayslip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PayslipRequest
	if !decode(w, r, &req) {
		return
	}

	slip, err := h.Generator.Generate(ctx, payroll.Request{
		EmployeeID: payroll.EmployeeID(req.Employee),
		Year:       req.Year,
		Month:      req.Month,
	})
	if err != nil {
		h.fail(w, r, "Failed to generate payslip", err)
		return
	}

	e, err := h.Store.GetEmployee(ctx, slip.EmployeeID)
	if err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}
	fields, err := h.paymentFields(r)
	if err != nil {
		h.fail(w, r, "Failed to list extra field types", err)
		return
	}

	writeJSON(w, http.StatusOK, toPayslipDTO(slip, *e, fields))
}

// GenerateCompanyPayslips computes the payslips of every employee of a
// company for one month. Employees are generated concurrently; any failure
// fails the whole run.
// POST /api/companies/{id}/payslips {"year": 2013, "month": 3}
func (h *Handler) GenerateCompanyPayslips(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID := hr.CompanyID(chi.URLParam(r, "id"))

	var req CompanyPayslipsRequest
	if !decode(w, r, &req) {
		return
	}
	// Checked up front so an empty company still reports a bad month.
	if err := (payroll.Request{EmployeeID: "-", Year: req.Year, Month: req.Month}).Validate(); err != nil {
		h.fail(w, r, "Invalid payslip request", err)
		return
	}

	company, err := h.Store.GetCompany(ctx, companyID)
	if err != nil {
		h.fail(w, r, "Failed to get company", err)
		return
	}
	employees, err := h.Store.ListEmployees(ctx, companyID)
	if err != nil {
		h.fail(w, r, "Failed to list employees", err)
		return
	}

	ids := make([]payroll.EmployeeID, len(employees))
	for i, e := range employees {
		ids[i] = e.ID
	}

	// Employees deleted after the listing are left out of the run.
	batch := *h.Generator
	batch.SkipMissing = true
	slips, err := batch.GenerateBatch(ctx, ids, req.Year, req.Month)
	if err != nil {
		h.fail(w, r, "Failed to generate payslips", err)
		return
	}

	fields, err := h.paymentFields(r)
	if err != nil {
		h.fail(w, r, "Failed to list extra field types", err)
		return
	}

	resp := CompanyPayslipsDTO{
		Company:  toCompanyDTO(*company),
		Year:     req.Year,
		Month:    req.Month,
		Payslips: make([]PayslipDTO, 0, len(slips)),
		Currency: h.Generator.Currency,
	}
	net := decimal.Zero
	for i, slip := range slips {
		if slip == nil {
			continue
		}
		resp.Payslips = append(resp.Payslips, toPayslipDTO(slip, employees[i], fields))
		net = net.Add(slip.Totals.Period.Net())
	}
	resp.Net = money(net)

	hlog.FromRequest(r).Info().
		Str("company_id", string(companyID)).
		Int("year", req.Year).
		Int("month", req.Month).
		Int("payslips", len(resp.Payslips)).
		Int("skipped", len(slips)-len(resp.Payslips)).
		Msg("Company payslip run")

	writeJSON(w, http.StatusOK, resp)
}

// paymentFields returns the field types itemized next to payslip lines.
func (h *Handler) paymentFields(r *http.Request) ([]FieldTypeDTO, error) {
	types, err := h.Store.ListFieldTypes(r.Context())
	if err != nil {
		return nil, err
	}

	fields := make([]FieldTypeDTO, 0, len(types))
	for _, ft := range types {
		if ft.Model == hr.ModelPayment {
			fields = append(fields, toFieldTypeDTO(ft))
		}
	}
	return fields, nil
}
