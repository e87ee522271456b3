/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates a company, the shared
	payment types and extra field catalogue, employees and their payments,
	and demonstrates one aggregation rule.

AVAILABLE SCENARIOS:

	single-payments:  One-off payments count in their own month only
	monthly-salary:   Monthly salary starting mid-January
	yearly-bonus:     Yearly bonus started last June, ending this June
	ended-contract:   Monthly salary that stops in the summer
	month-end-clamp:  Allowance dated the 31st, clamped in short months
	company-run:      Several employees for the company payslip run

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create the company and the shared catalogue
 3. Create employees
 4. Add payments dated in the current year (and the one before)

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "yearly-bonus"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler context
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payslip-engine/hr"
	"github.com/warp/payslip-engine/payroll"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "single-payments",
		Name:        "Single Payments",
		Description: "One-off payments and deductions that count in their own month only",
		Category:    "single",
	},
	{
		ID:          "monthly-salary",
		Name:        "Monthly Salary",
		Description: "Monthly salary starting on January 5th, paid every month of the year",
		Category:    "recurring",
	},
	{
		ID:          "yearly-bonus",
		Name:        "Yearly Bonus",
		Description: "Yearly bonus started last June and ending this June",
		Category:    "recurring",
	},
	{
		ID:          "ended-contract",
		Name:        "Ended Contract",
		Description: "Monthly salary ending on July 15th; nothing is paid afterwards",
		Category:    "recurring",
	},
	{
		ID:          "month-end-clamp",
		Name:        "Month-End Clamp",
		Description: "Monthly allowance dated January 31st, clamped to the last day of short months",
		Category:    "recurring",
	},
	{
		ID:          "company-run",
		Name:        "Company Payslip Run",
		Description: "Three employees mixing every payment kind, for the company payslip run",
		Category:    "company",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decode(w, r, &req) {
		return
	}

	load, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	h.mu.Lock()
	defer h.mu.Unlock()

	h.currentScenario = ""
	if err := h.Store.Reset(ctx); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}

	year := time.Now().Year()
	seed, err := h.seedCatalog(ctx)
	if err != nil {
		h.fail(w, r, "Failed to load scenario", err)
		return
	}
	if err := load(ctx, seed, year); err != nil {
		h.fail(w, r, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"year":     year,
	})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SHARED CATALOGUE
// =============================================================================

// seed holds what every scenario builds on.
type seed struct {
	h       *Handler
	company *hr.Company
	types   map[string]*payroll.PaymentType
	hired   int
}

func (h *Handler) seedCatalog(ctx context.Context) (*seed, error) {
	company, err := h.Store.CreateCompany(ctx, hr.Company{
		ID:      "acme",
		Name:    "Acme Payroll GmbH",
		Address: "Hauptstrasse 1, 10115 Berlin",
	})
	if err != nil {
		return nil, err
	}

	taxClass, err := h.Store.CreateFieldType(ctx, hr.ExtraFieldType{
		ID: "ft-tax-class", Name: "Tax class", Model: hr.ModelEmployee, FixedValues: true,
		Description: "Wage tax class",
	})
	if err != nil {
		return nil, err
	}
	for _, v := range []string{"I", "II", "III", "IV", "V", "VI"} {
		if _, err := h.Store.CreateExtraField(ctx, hr.ExtraField{FieldTypeID: taxClass.ID, Value: v}); err != nil {
			return nil, err
		}
	}
	if _, err := h.Store.CreateFieldType(ctx, hr.ExtraFieldType{
		ID: "ft-cost-center", Name: "Cost center", Model: hr.ModelPayment,
		Description: "Booking account of the payment",
	}); err != nil {
		return nil, err
	}

	s := &seed{h: h, company: company, types: make(map[string]*payroll.PaymentType)}
	for _, pt := range []payroll.PaymentType{
		{ID: "pt-salary", Name: "Salary", Rule: payroll.FrequencyMonthly},
		{ID: "pt-allowance", Name: "Allowance", Rule: payroll.FrequencyMonthly},
		{ID: "pt-bonus", Name: "Bonus", Rule: payroll.FrequencyYearly},
		{ID: "pt-expense", Name: "Expense", Description: "Reimbursed once"},
		{ID: "pt-deduction", Name: "Deduction", Description: "Withheld once"},
	} {
		created, err := h.Store.CreatePaymentType(ctx, pt)
		if err != nil {
			return nil, err
		}
		s.types[created.Name] = created
	}
	return s, nil
}

func (s *seed) employee(ctx context.Context, first, last string, title hr.Title, taxClass string) (*hr.Employee, error) {
	s.hired++
	number := 1000 + s.hired
	email := fmt.Sprintf("%s.%s@acme.example", first, last)
	return s.h.Store.CreateEmployee(ctx, hr.NewEmployee{
		Employee: hr.Employee{
			ID:          payroll.EmployeeID(fmt.Sprintf("emp-%03d", s.hired)),
			CompanyID:   s.company.ID,
			FirstName:   first,
			LastName:    last,
			Email:       email,
			HRNumber:    &number,
			Title:       title,
			ExtraFields: map[string]string{"Tax class": taxClass},
		},
		Password:       "demo-password",
		RetypePassword: "demo-password",
	})
}

func (s *seed) pay(ctx context.Context, e *hr.Employee, typeName, amount string, date time.Time, end *time.Time, description string) error {
	pt, ok := s.types[typeName]
	if !ok {
		return fmt.Errorf("unknown payment type %q", typeName)
	}
	_, err := s.h.Store.CreatePayment(ctx, payroll.Payment{
		EmployeeID:  e.ID,
		Type:        payroll.PaymentType{ID: pt.ID},
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
		EndDate:     end,
		Description: description,
		Attributes:  payroll.Attributes{"Cost center": "4100"},
	})
	return err
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(year int, month time.Month, d int) *time.Time {
	t := day(year, month, d)
	return &t
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

type scenarioLoader func(ctx context.Context, s *seed, year int) error

var scenarioLoaders = map[string]scenarioLoader{
	"single-payments": loadSinglePayments,
	"monthly-salary":  loadMonthlySalary,
	"yearly-bonus":    loadYearlyBonus,
	"ended-contract":  loadEndedContract,
	"month-end-clamp": loadMonthEndClamp,
	"company-run":     loadCompanyRun,
}

func loadSinglePayments(ctx context.Context, s *seed, year int) error {
	e, err := s.employee(ctx, "alice", "johnson", hr.TitleMs, "I")
	if err != nil {
		return err
	}
	if err := s.pay(ctx, e, "Expense", "120.00", day(year, time.February, 14), nil, "Train tickets"); err != nil {
		return err
	}
	if err := s.pay(ctx, e, "Deduction", "-50.00", day(year, time.March, 10), nil, "Parking fine"); err != nil {
		return err
	}
	// Last year's expense never shows up this year.
	return s.pay(ctx, e, "Expense", "80.00", day(year-1, time.December, 20), nil, "Conference")
}

func loadMonthlySalary(ctx context.Context, s *seed, year int) error {
	e, err := s.employee(ctx, "bob", "smith", hr.TitleMr, "III")
	if err != nil {
		return err
	}
	return s.pay(ctx, e, "Salary", "100.00", day(year, time.January, 5), nil, "Base salary")
}

func loadYearlyBonus(ctx context.Context, s *seed, year int) error {
	e, err := s.employee(ctx, "carol", "white", hr.TitleDr, "IV")
	if err != nil {
		return err
	}
	return s.pay(ctx, e, "Bonus", "1000.00", day(year-1, time.June, 15), dayPtr(year, time.June, 15), "Retention bonus")
}

func loadEndedContract(ctx context.Context, s *seed, year int) error {
	e, err := s.employee(ctx, "dave", "brown", hr.TitleMr, "I")
	if err != nil {
		return err
	}
	return s.pay(ctx, e, "Salary", "2500.00", day(year-1, time.March, 1), dayPtr(year, time.July, 15), "Fixed-term salary")
}

func loadMonthEndClamp(ctx context.Context, s *seed, year int) error {
	e, err := s.employee(ctx, "erin", "davis", hr.TitleMrs, "V")
	if err != nil {
		return err
	}
	return s.pay(ctx, e, "Allowance", "75.50", day(year, time.January, 31), nil, "Meal allowance")
}

func loadCompanyRun(ctx context.Context, s *seed, year int) error {
	alice, err := s.employee(ctx, "alice", "johnson", hr.TitleMs, "I")
	if err != nil {
		return err
	}
	bob, err := s.employee(ctx, "bob", "smith", hr.TitleMr, "III")
	if err != nil {
		return err
	}
	carol, err := s.employee(ctx, "carol", "white", hr.TitleDr, "IV")
	if err != nil {
		return err
	}

	payments := []struct {
		e           *hr.Employee
		typeName    string
		amount      string
		date        time.Time
		end         *time.Time
		description string
	}{
		{alice, "Salary", "3200.00", day(year-2, time.September, 1), nil, "Base salary"},
		{alice, "Deduction", "-150.00", day(year, time.March, 10), nil, "Advance repayment"},
		{bob, "Salary", "2800.00", day(year, time.January, 5), nil, "Base salary"},
		{bob, "Allowance", "75.50", day(year, time.January, 31), nil, "Meal allowance"},
		{bob, "Bonus", "1000.00", day(year-1, time.June, 15), dayPtr(year, time.June, 15), "Retention bonus"},
		{carol, "Salary", "4100.00", day(year-1, time.March, 1), dayPtr(year, time.July, 15), "Fixed-term salary"},
		{carol, "Expense", "240.00", day(year, time.March, 3), nil, "Travel"},
	}
	for _, p := range payments {
		if err := s.pay(ctx, p.e, p.typeName, p.amount, p.date, p.end, p.description); err != nil {
			return err
		}
	}
	return nil
}
