package hr

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/warp/payslip-engine/payroll"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrCompanyNotFound     = errors.New("company not found")
	ErrPaymentTypeNotFound = errors.New("payment type not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrFieldTypeNotFound   = errors.New("extra field type not found")
	ErrExtraFieldNotFound  = errors.New("extra field not found")

	// ErrDuplicateEmail is returned when an employee email is already taken
	// (compared case-insensitively).
	ErrDuplicateEmail = errors.New("a user with that email already exists")

	// ErrDuplicateName is returned for a second extra field type of the same
	// name; attribute bags are keyed by it.
	ErrDuplicateName = errors.New("name already in use")

	// ErrInUse is returned when deleting a record other records still point to.
	ErrInUse = errors.New("record is still referenced")
)

// IsNotFound returns true for any missing-record error, the engine's
// ErrEmployeeNotFound included.
func IsNotFound(err error) bool {
	return payroll.IsNotFound(err) ||
		errors.Is(err, ErrCompanyNotFound) ||
		errors.Is(err, ErrPaymentTypeNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrFieldTypeNotFound) ||
		errors.Is(err, ErrExtraFieldNotFound)
}

// IsConflict returns true for uniqueness and reference violations.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrInUse)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

const maxPasswordBytes = 72 // bcrypt input limit

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NewEmployee is an employee being created, with the password typed twice.
type NewEmployee struct {
	Employee
	Password       string
	RetypePassword string
}

// Validate checks the fields every employee needs.
func (e Employee) Validate() error {
	if e.CompanyID == "" {
		return &payroll.ValidationError{Field: "company_id", Message: "is required"}
	}
	if strings.TrimSpace(e.FirstName) == "" {
		return &payroll.ValidationError{Field: "first_name", Message: "is required"}
	}
	if strings.TrimSpace(e.LastName) == "" {
		return &payroll.ValidationError{Field: "last_name", Message: "is required"}
	}
	if !emailRegex.MatchString(e.Email) {
		return &payroll.ValidationError{Field: "email", Message: "is not a valid email address"}
	}
	if !e.Title.Valid() {
		return &payroll.ValidationError{Field: "title", Message: "must be 1 (Ms.), 2 (Mrs.), 3 (Mr.) or 4 (Dr.)"}
	}
	if e.HRNumber != nil && *e.HRNumber < 0 {
		return &payroll.ValidationError{Field: "hr_number", Message: "must not be negative"}
	}
	return nil
}

// Validate also checks the two passwords.
func (n NewEmployee) Validate() error {
	if err := n.Employee.Validate(); err != nil {
		return err
	}
	if n.Password == "" {
		return &payroll.ValidationError{Field: "password", Message: "is required"}
	}
	if len(n.Password) > maxPasswordBytes {
		return &payroll.ValidationError{Field: "password", Message: fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)}
	}
	if n.Password != n.RetypePassword {
		return &payroll.ValidationError{Field: "retype_password", Message: "the two password fields didn't match"}
	}
	return nil
}

// HashPassword returns the bcrypt hash stored for an employee login.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NormalizeEmail is the form emails are compared and stored in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// =============================================================================
// ATTRIBUTE BAGS
// =============================================================================

// Catalog is the extra-field configuration an attribute bag is checked
// against: field types by name and the global values of fixed-value types.
type Catalog struct {
	Types map[string]ExtraFieldType
	Fixed map[FieldTypeID][]string
}

// ValidateAttributes checks a bag for target. Every key must name an existing
// field type usable on target; values of fixed-value types must be one of the
// type's global values.
func (c Catalog) ValidateAttributes(target Model, bag map[string]string) error {
	for name, value := range bag {
		field := "extra_fields." + name

		ft, ok := c.Types[name]
		if !ok {
			return &payroll.ValidationError{Field: field, Message: "unknown field type"}
		}
		if !ft.Model.Accepts(target) {
			return &payroll.ValidationError{Field: field, Message: fmt.Sprintf("field type is reserved for %s", ft.Model)}
		}
		if ft.FixedValues && !slices.Contains(c.Fixed[ft.ID], value) {
			return &payroll.ValidationError{Field: field, Message: fmt.Sprintf("%q is not one of the fixed values", value)}
		}
	}
	return nil
}
