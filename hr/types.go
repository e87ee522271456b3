/*
Package hr holds the records around the payroll engine: companies,
employees and the extra-field catalogue used to attach custom attributes.

PURPOSE:
  The payroll package only knows payments. Everything a payslip prints
  about the people involved, and the typed attribute bags that hang off
  companies, employees and payments, lives here.

KEY CONCEPTS:
  - Company: The tenant. Employees belong to exactly one company.
  - Employee: A payslip recipient with a login password hash.
  - ExtraFieldType: A named attribute, optionally restricted to one model
    and optionally limited to a fixed list of values.
  - ExtraField: A value of a field type. Fields of fixed-value types are the
    global choices for that type.

ATTRIBUTE BAGS:
  Entities carry their extra fields as map[field type name]value. See
  ValidateAttributes for the rules applied on write.
*/
package hr

import (
	"strings"

	"github.com/warp/payslip-engine/payroll"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CompanyID string
type FieldTypeID string
type ExtraFieldID string

// =============================================================================
// MODEL - Which entity an extra field type applies to
// =============================================================================

type Model string

const (
	ModelAny      Model = ""
	ModelEmployee Model = "Employee"
	ModelPayment  Model = "Payment"
	ModelCompany  Model = "Company"
)

// ParseModel accepts the model names case-insensitively.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ModelAny, nil
	case "employee":
		return ModelEmployee, nil
	case "payment":
		return ModelPayment, nil
	case "company":
		return ModelCompany, nil
	default:
		return "", &payroll.ValidationError{Field: "model", Message: "must be empty, Employee, Payment or Company"}
	}
}

// Accepts reports whether a field type restricted to m may be used on target.
func (m Model) Accepts(target Model) bool {
	return m == ModelAny || m == target
}

// =============================================================================
// TITLE
// =============================================================================

// Title is the salutation code stored for an employee.
type Title string

const (
	TitleMs  Title = "1"
	TitleMrs Title = "2"
	TitleMr  Title = "3"
	TitleDr  Title = "4"
)

var titleLabels = map[Title]string{
	TitleMs:  "Ms.",
	TitleMrs: "Mrs.",
	TitleMr:  "Mr.",
	TitleDr:  "Dr.",
}

// Valid reports whether t is one of the four codes.
func (t Title) Valid() bool {
	_, ok := titleLabels[t]
	return ok
}

// Label returns "Ms.", "Mrs.", "Mr." or "Dr.".
func (t Title) Label() string { return titleLabels[t] }

// =============================================================================
// RECORDS
// =============================================================================

type Company struct {
	ID          CompanyID
	Name        string
	Address     string
	ExtraFields map[string]string
}

type Employee struct {
	ID           payroll.EmployeeID
	CompanyID    CompanyID
	CompanyName  string
	FirstName    string
	LastName     string
	Email        string
	HRNumber     *int
	Address      string
	Title        Title
	IsManager    bool
	ExtraFields  map[string]string
	PasswordHash string
}

// FullName is "First Last".
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

type ExtraFieldType struct {
	ID          FieldTypeID
	Name        string
	Description string
	Model       Model
	FixedValues bool
}

type ExtraField struct {
	ID          ExtraFieldID
	FieldTypeID FieldTypeID
	FieldType   string // name of the field type, for display
	Value       string
}
