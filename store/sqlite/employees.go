package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/warp/payslip-engine/hr"
	"github.com/warp/payslip-engine/payroll"
)

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

const employeeColumns = `
	e.id, e.company_id, c.name, e.first_name, e.last_name, e.email, e.hr_number,
	e.address, e.title, e.is_manager, e.password_hash`

// CreateEmployee validates and inserts an employee, hashing its password.
// Emails are unique regardless of case.
func (s *Store) CreateEmployee(ctx context.Context, n hr.NewEmployee) (*hr.Employee, error) {
	n.Email = hr.NormalizeEmail(n.Email)
	if err := n.Validate(); err != nil {
		return nil, err
	}

	hash, err := hr.HashPassword(n.Password)
	if err != nil {
		return nil, err
	}

	e := n.Employee
	e.PasswordHash = hash
	if e.ID == "" {
		e.ID = payroll.EmployeeID(uuid.NewString())
	}

	err = s.write(ctx, func(tx *sql.Tx) error {
		if err := lookupCompany(ctx, tx, &e); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO employees (id, company_id, first_name, last_name, email, hr_number,
				address, title, is_manager, password_hash, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.CompanyID, e.FirstName, e.LastName, e.Email, nullInt(e.HRNumber),
			e.Address, string(e.Title), e.IsManager, e.PasswordHash, now(),
		)
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%s: %w", e.Email, hr.ErrDuplicateEmail)
		}
		if err != nil {
			return fmt.Errorf("failed to insert employee: %w", err)
		}
		return saveAttributes(ctx, tx, hr.ModelEmployee, string(e.ID), e.ExtraFields)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEmployee replaces an employee's fields and attribute bag. The
// password hash is left untouched.
func (s *Store) UpdateEmployee(ctx context.Context, e hr.Employee) (*hr.Employee, error) {
	e.Email = hr.NormalizeEmail(e.Email)
	if err := e.Validate(); err != nil {
		return nil, err
	}

	err := s.write(ctx, func(tx *sql.Tx) error {
		if err := lookupCompany(ctx, tx, &e); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE employees SET company_id = ?, first_name = ?, last_name = ?, email = ?,
				hr_number = ?, address = ?, title = ?, is_manager = ?
			WHERE id = ?`,
			e.CompanyID, e.FirstName, e.LastName, e.Email, nullInt(e.HRNumber),
			e.Address, string(e.Title), e.IsManager, e.ID,
		)
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%s: %w", e.Email, hr.ErrDuplicateEmail)
		}
		if err != nil {
			return fmt.Errorf("failed to update employee: %w", err)
		}
		if err := affected(res, payroll.ErrEmployeeNotFound); err != nil {
			return err
		}
		return saveAttributes(ctx, tx, hr.ModelEmployee, string(e.ID), e.ExtraFields)
	})
	if err != nil {
		return nil, err
	}

	e.PasswordHash = ""
	return &e, nil
}

func lookupCompany(ctx context.Context, q queryer, e *hr.Employee) error {
	err := q.QueryRowContext(ctx, "SELECT name FROM companies WHERE id = ?", e.CompanyID).Scan(&e.CompanyName)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.ErrCompanyNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up company: %w", err)
	}
	return nil
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id payroll.EmployeeID) (*hr.Employee, error) {
	var e *hr.Employee
	err := s.read(ctx, func(tx *sql.Tx) error {
		list, err := queryEmployees(ctx, tx, "WHERE e.id = ?", id)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return payroll.ErrEmployeeNotFound
		}
		e = &list[0]
		return nil
	})
	return e, err
}

// ListEmployees returns employees ordered by company name then first name.
// An empty companyID lists every company.
func (s *Store) ListEmployees(ctx context.Context, companyID hr.CompanyID) ([]hr.Employee, error) {
	var employees []hr.Employee
	err := s.read(ctx, func(tx *sql.Tx) error {
		var err error
		if companyID == "" {
			employees, err = queryEmployees(ctx, tx, "")
		} else {
			employees, err = queryEmployees(ctx, tx, "WHERE e.company_id = ?", companyID)
		}
		return err
	})
	return employees, err
}

// CompanyEmployeeIDs returns the ids of a company's employees, in list order.
func (s *Store) CompanyEmployeeIDs(ctx context.Context, companyID hr.CompanyID) ([]payroll.EmployeeID, error) {
	var ids []payroll.EmployeeID
	err := s.read(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "companies", string(companyID))
		if err != nil {
			return err
		}
		if !ok {
			return hr.ErrCompanyNotFound
		}

		rows, err := tx.QueryContext(ctx,
			"SELECT id FROM employees WHERE company_id = ? ORDER BY first_name, last_name, id", companyID,
		)
		if err != nil {
			return fmt.Errorf("failed to list employee ids: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var id payroll.EmployeeID
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("failed to scan employee id: %w", err)
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	return ids, err
}

func queryEmployees(ctx context.Context, q queryer, where string, args ...any) ([]hr.Employee, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+employeeColumns+`
		FROM employees e JOIN companies c ON c.id = e.company_id
		`+where+`
		ORDER BY c.name, e.first_name, e.last_name, e.id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var (
		employees []hr.Employee
		ids       []string
	)
	for rows.Next() {
		var (
			e        hr.Employee
			hrNumber sql.NullInt64
			title    string
		)
		err := rows.Scan(
			&e.ID, &e.CompanyID, &e.CompanyName, &e.FirstName, &e.LastName, &e.Email, &hrNumber,
			&e.Address, &title, &e.IsManager, &e.PasswordHash,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		if hrNumber.Valid {
			n := int(hrNumber.Int64)
			e.HRNumber = &n
		}
		e.Title = hr.Title(title)
		employees = append(employees, e)
		ids = append(ids, string(e.ID))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	bags, err := loadAttributes(ctx, q, hr.ModelEmployee, ids)
	if err != nil {
		return nil, err
	}
	for i := range employees {
		employees[i].ExtraFields = bags[string(employees[i].ID)]
	}
	return employees, nil
}

// DeleteEmployee removes an employee and their payments.
func (s *Store) DeleteEmployee(ctx context.Context, id payroll.EmployeeID) error {
	return s.write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM entity_attributes WHERE entity_type = ? AND entity_id IN (
				SELECT id FROM payments WHERE employee_id = ?)`,
			string(hr.ModelPayment), id,
		)
		if err != nil {
			return fmt.Errorf("failed to delete payment attributes: %w", err)
		}
		if err := deleteAttributes(ctx, tx, hr.ModelEmployee, string(id)); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete employee: %w", err)
		}
		return affected(res, payroll.ErrEmployeeNotFound)
	})
}

// Authenticate checks an employee's email and password. It is the hook the
// external login layer calls; it returns ErrEmployeeNotFound for any mismatch.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*hr.Employee, error) {
	var e *hr.Employee
	err := s.read(ctx, func(tx *sql.Tx) error {
		list, err := queryEmployees(ctx, tx, "WHERE e.email = ?", hr.NormalizeEmail(email))
		if err != nil {
			return err
		}
		if len(list) == 0 || !hr.CheckPassword(list[0].PasswordHash, password) {
			return payroll.ErrEmployeeNotFound
		}
		e = &list[0]
		return nil
	})
	return e, err
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
