/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the payroll and hr records from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts and sums are decimal strings with two places ("1100.00"), never
  JSON numbers, so no client ever sees a float.

DATES:
  Naive wall-clock values, "2006-01-02T15:04:05".

SEE ALSO:
  - handlers.go: Uses these types
  - factory/payment.go: PaymentJSON and PaymentTypeJSON
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payslip-engine/factory"
	"github.com/warp/payslip-engine/hr"
	"github.com/warp/payslip-engine/payroll"
)

// =============================================================================
// COMPANIES AND EMPLOYEES
// =============================================================================

// CompanyDTO represents a company in API requests and responses.
type CompanyDTO struct {
	ID          string            `json:"id,omitempty"`
	Name        string            `json:"name"`
	Address     string            `json:"address"`
	ExtraFields map[string]string `json:"extra_fields"`
}

// EmployeeDTO represents an employee in API responses. The password hash is
// never returned.
type EmployeeDTO struct {
	ID          string            `json:"id"`
	CompanyID   string            `json:"company_id"`
	CompanyName string            `json:"company_name"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	FullName    string            `json:"full_name"`
	Email       string            `json:"email"`
	HRNumber    *int              `json:"hr_number"`
	Address     string            `json:"address"`
	Title       string            `json:"title"`
	TitleLabel  string            `json:"title_label"`
	IsManager   bool              `json:"is_manager"`
	ExtraFields map[string]string `json:"extra_fields"`
}

// EmployeeRequest is the body of an employee update.
type EmployeeRequest struct {
	CompanyID   string            `json:"company_id"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	Email       string            `json:"email"`
	HRNumber    *int              `json:"hr_number"`
	Address     string            `json:"address"`
	Title       string            `json:"title"`
	IsManager   bool              `json:"is_manager"`
	ExtraFields map[string]string `json:"extra_fields"`
}

// CreateEmployeeRequest adds the password pair to an employee.
type CreateEmployeeRequest struct {
	EmployeeRequest
	ID             string `json:"id"`
	Password       string `json:"password"`
	RetypePassword string `json:"retype_password"`
}

// =============================================================================
// EXTRA FIELDS
// =============================================================================

// FieldTypeDTO represents an extra field type.
type FieldTypeDTO struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Model       string `json:"model"`
	FixedValues bool   `json:"fixed_values"`
}

// ExtraFieldDTO represents a global value of a fixed-value field type.
type ExtraFieldDTO struct {
	ID          string `json:"id,omitempty"`
	FieldTypeID string `json:"field_type_id"`
	FieldType   string `json:"field_type,omitempty"`
	Value       string `json:"value"`
}

// =============================================================================
// PAYMENTS
// =============================================================================

// PaymentTypeDTO adds the display name to the stored payment type.
type PaymentTypeDTO struct {
	factory.PaymentTypeJSON
	DisplayName string `json:"display_name"`
	Recurring   bool   `json:"recurring"`
}

// PaymentDTO adds display values to the stored payment.
type PaymentDTO struct {
	factory.PaymentJSON
	PaymentType string `json:"payment_type"`
}

// =============================================================================
// PAYSLIPS
// =============================================================================

// PayslipRequest asks for one employee's payslip.
type PayslipRequest struct {
	Employee string `json:"employee"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
}

// CompanyPayslipsRequest asks for the payslips of every employee of a company.
type CompanyPayslipsRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// PayslipLineDTO is one payment's contribution to the reporting month.
type PayslipLineDTO struct {
	PaymentID   string            `json:"payment_id"`
	PaymentType string            `json:"payment_type"`
	Description string            `json:"description"`
	Date        string            `json:"date"`
	EndDate     string            `json:"end_date,omitempty"`
	Amount      string            `json:"amount"`
	Occurrences int               `json:"occurrences"`
	Total       string            `json:"total"`
	ExtraFields map[string]string `json:"extra_fields"`
}

// PayslipDTO is the computed payslip handed to the renderer.
type PayslipDTO struct {
	Employee           EmployeeDTO      `json:"employee"`
	Year               int              `json:"year"`
	Month              int              `json:"month"`
	DateStart          string           `json:"date_start"`
	DateEnd            string           `json:"date_end"`
	Payments           []PayslipLineDTO `json:"payments"`
	Sum                string           `json:"sum"`
	SumNeg             string           `json:"sum_neg"`
	SumYear            string           `json:"sum_year"`
	SumYearNeg         string           `json:"sum_year_neg"`
	Net                string           `json:"net"`
	NetYear            string           `json:"net_year"`
	Currency           string           `json:"currency"`
	PaymentExtraFields []FieldTypeDTO   `json:"payment_extra_fields"`
}

// CompanyPayslipsDTO is the result of a company payslip run.
type CompanyPayslipsDTO struct {
	Company  CompanyDTO   `json:"company"`
	Year     int          `json:"year"`
	Month    int          `json:"month"`
	Payslips []PayslipDTO `json:"payslips"`
	Net      string       `json:"net"`
	Currency string       `json:"currency"`
}

// =============================================================================
// DASHBOARD AND SCENARIOS
// =============================================================================

// DashboardCounts holds the number of records of each kind.
type DashboardCounts struct {
	Companies    int `json:"companies"`
	Employees    int `json:"employees"`
	FieldTypes   int `json:"field_types"`
	ExtraFields  int `json:"extra_fields"`
	PaymentTypes int `json:"payment_types"`
	Payments     int `json:"payments"`
}

// DashboardDTO lists every record for the overview page.
type DashboardDTO struct {
	Counts       DashboardCounts  `json:"counts"`
	Companies    []CompanyDTO     `json:"companies"`
	Employees    []EmployeeDTO    `json:"employees"`
	FieldTypes   []FieldTypeDTO   `json:"field_types"`
	ExtraFields  []ExtraFieldDTO  `json:"extra_fields"`
	PaymentTypes []PaymentTypeDTO `json:"payment_types"`
	Payments     []PaymentDTO     `json:"payments"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func money(d decimal.Decimal) string {
	return d.StringFixed(factory.AmountPlaces)
}

func bag(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func toCompanyDTO(c hr.Company) CompanyDTO {
	return CompanyDTO{
		ID:          string(c.ID),
		Name:        c.Name,
		Address:     c.Address,
		ExtraFields: bag(c.ExtraFields),
	}
}

func toEmployeeDTO(e hr.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:          string(e.ID),
		CompanyID:   string(e.CompanyID),
		CompanyName: e.CompanyName,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		FullName:    e.FullName(),
		Email:       e.Email,
		HRNumber:    e.HRNumber,
		Address:     e.Address,
		Title:       string(e.Title),
		TitleLabel:  e.Title.Label(),
		IsManager:   e.IsManager,
		ExtraFields: bag(e.ExtraFields),
	}
}

func (req EmployeeRequest) toEmployee(id payroll.EmployeeID) hr.Employee {
	return hr.Employee{
		ID:          id,
		CompanyID:   hr.CompanyID(req.CompanyID),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		HRNumber:    req.HRNumber,
		Address:     req.Address,
		Title:       hr.Title(req.Title),
		IsManager:   req.IsManager,
		ExtraFields: req.ExtraFields,
	}
}

func toFieldTypeDTO(ft hr.ExtraFieldType) FieldTypeDTO {
	return FieldTypeDTO{
		ID:          string(ft.ID),
		Name:        ft.Name,
		Description: ft.Description,
		Model:       string(ft.Model),
		FixedValues: ft.FixedValues,
	}
}

func toExtraFieldDTO(f hr.ExtraField) ExtraFieldDTO {
	return ExtraFieldDTO{
		ID:          string(f.ID),
		FieldTypeID: string(f.FieldTypeID),
		FieldType:   f.FieldType,
		Value:       f.Value,
	}
}

func (h *Handler) toPaymentTypeDTO(pt payroll.PaymentType) PaymentTypeDTO {
	return PaymentTypeDTO{
		PaymentTypeJSON: h.Factory.ToTypeJSON(pt),
		DisplayName:     pt.DisplayName(),
		Recurring:       pt.IsRecurring(),
	}
}

func (h *Handler) toPaymentDTO(p payroll.Payment) PaymentDTO {
	return PaymentDTO{
		PaymentJSON: h.Factory.ToJSON(p),
		PaymentType: p.Type.DisplayName(),
	}
}

func toPayslipLineDTO(l payroll.Line) PayslipLineDTO {
	dto := PayslipLineDTO{
		PaymentID:   string(l.Payment.ID),
		PaymentType: l.Payment.Type.DisplayName(),
		Description: l.Payment.Description,
		Date:        factory.FormatDate(l.Payment.Date),
		Amount:      money(l.Payment.Amount),
		Occurrences: l.Occurrences,
		Total:       money(l.Total),
		ExtraFields: bag(l.Payment.Attributes),
	}
	if l.Payment.EndDate != nil {
		dto.EndDate = factory.FormatDate(*l.Payment.EndDate)
	}
	return dto
}

// toPayslipDTO renders a payslip. paymentFields are the field types shown
// as columns next to the itemized payments.
func toPayslipDTO(slip *payroll.Payslip, e hr.Employee, paymentFields []FieldTypeDTO) PayslipDTO {
	lines := make([]PayslipLineDTO, 0, len(slip.Payments))
	for _, l := range slip.Payments {
		lines = append(lines, toPayslipLineDTO(l))
	}

	return PayslipDTO{
		Employee:           toEmployeeDTO(e),
		Year:               slip.Year,
		Month:              int(slip.Month),
		DateStart:          factory.FormatDate(slip.DateStart),
		DateEnd:            factory.FormatDate(slip.DateEnd),
		Payments:           lines,
		Sum:                money(slip.Totals.Period.Positive),
		SumNeg:             money(slip.Totals.Period.Negative),
		SumYear:            money(slip.Totals.Year.Positive),
		SumYearNeg:         money(slip.Totals.Year.Negative),
		Net:                money(slip.Totals.Period.Net()),
		NetYear:            money(slip.Totals.Year.Net()),
		Currency:           slip.Currency,
		PaymentExtraFields: paymentFields,
	}
}
