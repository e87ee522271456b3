/*
handlers.go - HTTP API handlers for the payslip engine

PURPOSE:
  Exposes the payroll records and the payslip generator via REST API.
  Handles HTTP request/response and JSON serialization, and delegates to
  the store and the payroll package.

ENDPOINTS:
  Companies:
    GET    /api/companies                List companies (by name)
    POST   /api/companies                Create company
    GET    /api/companies/{id}           Get company
    PUT    /api/companies/{id}           Update company
    DELETE /api/companies/{id}           Delete company, its employees and payments
    GET    /api/companies/{id}/employees Employees of a company
    POST   /api/companies/{id}/payslips  Payslips for every employee (rate limited)

  Employees:
    GET    /api/employees[?company_id=]  List employees
    POST   /api/employees                Create employee (password + retype)
    GET|PUT|DELETE /api/employees/{id}
    GET    /api/employees/{id}/payments  Payments of an employee

  Extra fields:
    /api/field-types, /api/extra-fields  CRUD

  Payments:
    /api/payment-types, /api/payments    CRUD

  Payslips:
    POST   /api/payslip                  {employee, year, month}

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 409: Duplicate email or name, record still referenced
  - 422: Stored configuration the engine cannot use (unknown rule)
  - 429: Too many company payslip runs
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - payslips.go: Payslip handlers
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
	"github.com/warp/payslip-engine/factory"
	"github.com/warp/payslip-engine/hr"
	"github.com/warp/payslip-engine/payroll"
	"github.com/warp/payslip-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Generator *payroll.Generator
	Factory   *factory.PaymentFactory

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler. A nil generator gets a default one reading
// from store; a generator without a source is pointed at store.
func NewHandler(store *sqlite.Store, gen *payroll.Generator, pf *factory.PaymentFactory) *Handler {
	if gen == nil {
		gen = &payroll.Generator{}
	}
	if gen.Source == nil {
		gen.Source = store
	}
	if pf == nil {
		pf = factory.NewPaymentFactory(nil)
	}
	return &Handler{Store: store, Generator: gen, Factory: pf}
}

// Health reports whether the database answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		h.fail(w, r, "Database unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// COMPANY HANDLERS
// =============================================================================

// ListCompanies returns all companies.
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Store.ListCompanies(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list companies", err)
		return
	}

	dtos := make([]CompanyDTO, 0, len(companies))
	for _, c := range companies {
		dtos = append(dtos, toCompanyDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCompany returns a single company.
func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetCompany(r.Context(), hr.CompanyID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, "Failed to get company", err)
		return
	}
	writeJSON(w, http.StatusOK, toCompanyDTO(*c))
}

// CreateCompany creates a company.
func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CompanyDTO
	if !decode(w, r, &req) {
		return
	}

	c, err := h.Store.CreateCompany(r.Context(), hr.Company{
		ID:          hr.CompanyID(req.ID),
		Name:        req.Name,
		Address:     req.Address,
		ExtraFields: req.ExtraFields,
	})
	if err != nil {
		h.fail(w, r, "Failed to create company", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCompanyDTO(*c))
}

// UpdateCompany replaces a company.
func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var req CompanyDTO
	if !decode(w, r, &req) {
		return
	}

	c, err := h.Store.UpdateCompany(r.Context(), hr.Company{
		ID:          hr.CompanyID(chi.URLParam(r, "id")),
		Name:        req.Name,
		Address:     req.Address,
		ExtraFields: req.ExtraFields,
	})
	if err != nil {
		h.fail(w, r, "Failed to update company", err)
		return
	}
	writeJSON(w, http.StatusOK, toCompanyDTO(*c))
}

// DeleteCompany removes a company with its employees and their payments.
func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteCompany(r.Context(), hr.CompanyID(chi.URLParam(r, "id"))); err != nil {
		h.fail(w, r, "Failed to delete company", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListCompanyEmployees returns the employees of one company.
func (h *Handler) ListCompanyEmployees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := hr.CompanyID(chi.URLParam(r, "id"))

	if _, err := h.Store.GetCompany(ctx, id); err != nil {
		h.fail(w, r, "Failed to get company", err)
		return
	}
	h.writeEmployees(w, r, id)
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees, or those of ?company_id=.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	h.writeEmployees(w, r, hr.CompanyID(r.URL.Query().Get("company_id")))
}

func (h *Handler) writeEmployees(w http.ResponseWriter, r *http.Request, companyID hr.CompanyID) {
	employees, err := h.Store.ListEmployees(r.Context(), companyID)
	if err != nil {
		h.fail(w, r, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := h.Store.GetEmployee(r.Context(), payroll.EmployeeID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*e))
}

// CreateEmployee creates an employee. The two passwords must match.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !decode(w, r, &req) {
		return
	}

	e, err := h.Store.CreateEmployee(r.Context(), hr.NewEmployee{
		Employee:       req.toEmployee(payroll.EmployeeID(req.ID)),
		Password:       req.Password,
		RetypePassword: req.RetypePassword,
	})
	if err != nil {
		h.fail(w, r, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(*e))
}

// UpdateEmployee replaces an employee. The password is not changed here.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if !decode(w, r, &req) {
		return
	}

	e, err := h.Store.UpdateEmployee(r.Context(), req.toEmployee(payroll.EmployeeID(chi.URLParam(r, "id"))))
	if err != nil {
		h.fail(w, r, "Failed to update employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*e))
}

// DeleteEmployee removes an employee and their payments.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(r.Context(), payroll.EmployeeID(chi.URLParam(r, "id"))); err != nil {
		h.fail(w, r, "Failed to delete employee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListEmployeePayments returns the payments of one employee, newest first.
func (h *Handler) ListEmployeePayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := payroll.EmployeeID(chi.URLParam(r, "id"))

	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}
	h.writePayments(w, r, id)
}

// =============================================================================
// EXTRA FIELD HANDLERS
// =============================================================================

// ListFieldTypes returns all extra field types.
func (h *Handler) ListFieldTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.ListFieldTypes(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list extra field types", err)
		return
	}

	dtos := make([]FieldTypeDTO, 0, len(types))
	for _, ft := range types {
		dtos = append(dtos, toFieldTypeDTO(ft))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetFieldType returns a single extra field type.
func (h *Handler) GetFieldType(w http.ResponseWriter, r *http.Request) {
	ft, err := h.Store.GetFieldType(r.Context(), hr.FieldTypeID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, "Failed to get extra field type", err)
		return
	}
	writeJSON(w, http.StatusOK, toFieldTypeDTO(*ft))
}

// CreateFieldType creates an extra field type.
func (h *Handler) CreateFieldType(w http.ResponseWriter, r *http.Request) {
	ft, ok := decodeFieldType(w, r)
	if !ok {
		return
	}

	created, err := h.Store.CreateFieldType(r.Context(), ft)
	if err != nil {
		h.fail(w, r, "Failed to create extra field type", err)
		return
	}
	writeJSON(w, http.StatusCreated, toFieldTypeDTO(*created))
}

// UpdateFieldType replaces an extra field type.
func (h *Handler) UpdateFieldType(w http.ResponseWriter, r *http.Request) {
	ft, ok := decodeFieldType(w, r)
	if !ok {
		return
	}
	ft.ID = hr.FieldTypeID(chi.URLParam(r, "id"))

	updated, err := h.Store.UpdateFieldType(r.Context(), ft)
	if err != nil {
		h.fail(w, r, "Failed to update extra field type", err)
		return
	}
	writeJSON(w, http.StatusOK, toFieldTypeDTO(*updated))
}

func decodeFieldType(w http.ResponseWriter, r *http.Request) (hr.ExtraFieldType, bool) {
	var req FieldTypeDTO
	if !decode(w, r, &req) {
		return hr.ExtraFieldType{}, false
	}

	model, err := hr.ParseModel(req.Model)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid extra field type", err)
		return hr.ExtraFieldType{}, false
	}

	return hr.ExtraFieldType{
		ID:          hr.FieldTypeID(req.ID),
		Name:        req.Name,
		Description: req.Description,
		Model:       model,
		FixedValues: req.FixedValues,
	}, true
}

// DeleteFieldType removes a field type with its values and attributes.
func (h *Handler) DeleteFieldType(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteFieldType(r.Context(), hr.FieldTypeID(chi.URLParam(r, "id"))); err != nil {
		h.fail(w, r, "Failed to delete extra field type", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListExtraFields returns the global values of fixed-value field types.
func (h *Handler) ListExtraFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.Store.ListExtraFields(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list extra fields", err)
		return
	}

	dtos := make([]ExtraFieldDTO, 0, len(fields))
	for _, f := range fields {
		dtos = append(dtos, toExtraFieldDTO(f))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateExtraField adds a global value.
func (h *Handler) CreateExtraField(w http.ResponseWriter, r *http.Request) {
	var req ExtraFieldDTO
	if !decode(w, r, &req) {
		return
	}

	f, err := h.Store.CreateExtraField(r.Context(), hr.ExtraField{
		ID:          hr.ExtraFieldID(req.ID),
		FieldTypeID: hr.FieldTypeID(req.FieldTypeID),
		Value:       req.Value,
	})
	if err != nil {
		h.fail(w, r, "Failed to create extra field", err)
		return
	}
	writeJSON(w, http.StatusCreated, toExtraFieldDTO(*f))
}

// UpdateExtraField changes a global value.
func (h *Handler) UpdateExtraField(w http.ResponseWriter, r *http.Request) {
	var req ExtraFieldDTO
	if !decode(w, r, &req) {
		return
	}

	f, err := h.Store.UpdateExtraField(r.Context(), hr.ExtraField{
		ID:          hr.ExtraFieldID(chi.URLParam(r, "id")),
		FieldTypeID: hr.FieldTypeID(req.FieldTypeID),
		Value:       req.Value,
	})
	if err != nil {
		h.fail(w, r, "Failed to update extra field", err)
		return
	}
	writeJSON(w, http.StatusOK, toExtraFieldDTO(*f))
}

// DeleteExtraField removes a global value.
func (h *Handler) DeleteExtraField(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteExtraField(r.Context(), hr.ExtraFieldID(chi.URLParam(r, "id"))); err != nil {
		h.fail(w, r, "Failed to delete extra field", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// PAYMENT TYPE HANDLERS
// =============================================================================

// ListPaymentTypes returns all payment types.
func (h *Handler) ListPaymentTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.ListPaymentTypes(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list payment types", err)
		return
	}

	dtos := make([]PaymentTypeDTO, 0, len(types))
	for _, pt := range types {
		dtos = append(dtos, h.toPaymentTypeDTO(pt))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPaymentType returns a single payment type.
func (h *Handler) GetPaymentType(w http.ResponseWriter, r *http.Request) {
	pt, err := h.Store.GetPaymentType(r.Context(), payroll.PaymentTypeID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, "Failed to get payment type", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toPaymentTypeDTO(*pt))
}

// CreatePaymentType creates a payment type from its JSON form.
func (h *Handler) CreatePaymentType(w http.ResponseWriter, r *http.Request) {
	var req factory.PaymentTypeJSON
	if !decode(w, r, &req) {
		return
	}

	pt, err := h.Factory.FromTypeJSON(req)
	if err != nil {
		h.fail(w, r, "Invalid payment type", err)
		return
	}

	created, err := h.Store.CreatePaymentType(r.Context(), *pt)
	if err != nil {
		h.fail(w, r, "Failed to create payment type", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toPaymentTypeDTO(*created))
}

// UpdatePaymentType replaces a payment type.
func (h *Handler) UpdatePaymentType(w http.ResponseWriter, r *http.Request) {
	var req factory.PaymentTypeJSON
	if !decode(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	pt, err := h.Factory.FromTypeJSON(req)
	if err != nil {
		h.fail(w, r, "Invalid payment type", err)
		return
	}

	updated, err := h.Store.UpdatePaymentType(r.Context(), *pt)
	if err != nil {
		h.fail(w, r, "Failed to update payment type", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toPaymentTypeDTO(*updated))
}

// DeletePaymentType removes a payment type no payment uses.
func (h *Handler) DeletePaymentType(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeletePaymentType(r.Context(), payroll.PaymentTypeID(chi.URLParam(r, "id"))); err != nil {
		h.fail(w, r, "Failed to delete payment type", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns all payments, or those of ?employee_id=.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	h.writePayments(w, r, payroll.EmployeeID(r.URL.Query().Get("employee_id")))
}

func (h *Handler) writePayments(w http.ResponseWriter, r *http.Request, employeeID payroll.EmployeeID) {
	payments, err := h.Store.ListPayments(r.Context(), employeeID)
	if err != nil {
		h.fail(w, r, "Failed to list payments", err)
		return
	}

	dtos := make([]PaymentDTO, 0, len(payments))
	for _, p := range payments {
		dtos = append(dtos, h.toPaymentDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPayment returns a single payment.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetPayment(r.Context(), payroll.PaymentID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, "Failed to get payment", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toPaymentDTO(*p))
}

// CreatePayment creates a payment from its JSON form.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req factory.PaymentJSON
	if !decode(w, r, &req) {
		return
	}

	p, err := h.Factory.FromJSON(req)
	if err != nil {
		h.fail(w, r, "Invalid payment", err)
		return
	}

	created, err := h.Store.CreatePayment(r.Context(), *p)
	if err != nil {
		h.fail(w, r, "Failed to create payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toPaymentDTO(*created))
}

// UpdatePayment replaces a payment.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req factory.PaymentJSON
	if !decode(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	p, err := h.Factory.FromJSON(req)
	if err != nil {
		h.fail(w, r, "Invalid payment", err)
		return
	}

	updated, err := h.Store.UpdatePayment(r.Context(), *p)
	if err != nil {
		h.fail(w, r, "Failed to update payment", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toPaymentDTO(*updated))
}

// DeletePayment removes a payment.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeletePayment(r.Context(), payroll.PaymentID(chi.URLParam(r, "id"))); err != nil {
		h.fail(w, r, "Failed to delete payment", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Dashboard returns every record with counts.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var dash DashboardDTO

	companies, err := h.Store.ListCompanies(ctx)
	if err != nil {
		h.fail(w, r, "Failed to load dashboard", err)
		return
	}
	employees, err := h.Store.ListEmployees(ctx, "")
	if err != nil {
		h.fail(w, r, "Failed to load dashboard", err)
		return
	}
	fieldTypes, err := h.Store.ListFieldTypes(ctx)
	if err != nil {
		h.fail(w, r, "Failed to load dashboard", err)
		return
	}
	fields, err := h.Store.ListExtraFields(ctx)
	if err != nil {
		h.fail(w, r, "Failed to load dashboard", err)
		return
	}
	paymentTypes, err := h.Store.ListPaymentTypes(ctx)
	if err != nil {
		h.fail(w, r, "Failed to load dashboard", err)
		return
	}
	payments, err := h.Store.ListPayments(ctx, "")
	if err != nil {
		h.fail(w, r, "Failed to load dashboard", err)
		return
	}

	dash.Companies = make([]CompanyDTO, 0, len(companies))
	for _, c := range companies {
		dash.Companies = append(dash.Companies, toCompanyDTO(c))
	}
	dash.Employees = make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dash.Employees = append(dash.Employees, toEmployeeDTO(e))
	}
	dash.FieldTypes = make([]FieldTypeDTO, 0, len(fieldTypes))
	for _, ft := range fieldTypes {
		dash.FieldTypes = append(dash.FieldTypes, toFieldTypeDTO(ft))
	}
	dash.ExtraFields = make([]ExtraFieldDTO, 0, len(fields))
	for _, f := range fields {
		dash.ExtraFields = append(dash.ExtraFields, toExtraFieldDTO(f))
	}
	dash.PaymentTypes = make([]PaymentTypeDTO, 0, len(paymentTypes))
	for _, pt := range paymentTypes {
		dash.PaymentTypes = append(dash.PaymentTypes, h.toPaymentTypeDTO(pt))
	}
	dash.Payments = make([]PaymentDTO, 0, len(payments))
	for _, p := range payments {
		dash.Payments = append(dash.Payments, h.toPaymentDTO(p))
	}

	dash.Counts = DashboardCounts{
		Companies:    len(companies),
		Employees:    len(employees),
		FieldTypes:   len(fieldTypes),
		ExtraFields:  len(fields),
		PaymentTypes: len(paymentTypes),
		Payments:     len(payments),
	}
	writeJSON(w, http.StatusOK, dash)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: errorCode(status)}
	if err != nil {
		resp.Details = err.Error()
		var ve *payroll.ValidationError
		if errors.As(err, &ve) {
			resp.Details = map[string]string{"field": ve.Field, "message": ve.Message}
		}
	}
	writeJSON(w, status, resp)
}

// fail classifies err, logs server-side failures and writes the response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg(message)
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case payroll.IsConfigError(err):
		return http.StatusUnprocessableEntity
	case payroll.IsClientError(err):
		return http.StatusBadRequest
	case hr.IsNotFound(err):
		return http.StatusNotFound
	case hr.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "unsupported_configuration"
	case http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return "internal_error"
	}
}

// decode reads a JSON body into v, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}
