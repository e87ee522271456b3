package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/payslip-engine/hr"
	"github.com/warp/payslip-engine/payroll"
)

// =============================================================================
// PAYMENT TYPE STORE
// =============================================================================

// CreatePaymentType inserts a payment type.
func (s *Store) CreatePaymentType(ctx context.Context, pt payroll.PaymentType) (*payroll.PaymentType, error) {
	if strings.TrimSpace(pt.Name) == "" {
		return nil, validation("name", "is required")
	}
	if pt.ID == "" {
		pt.ID = payroll.PaymentTypeID(uuid.NewString())
	}

	err := s.write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO payment_types (id, name, rrule, description) VALUES (?, ?, ?, ?)",
			pt.ID, pt.Name, pt.Rule.String(), pt.Description,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment type: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pt, nil
}

// UpdatePaymentType replaces a payment type. Changing the rule changes how
// every existing payment of the type is aggregated.
func (s *Store) UpdatePaymentType(ctx context.Context, pt payroll.PaymentType) (*payroll.PaymentType, error) {
	if strings.TrimSpace(pt.Name) == "" {
		return nil, validation("name", "is required")
	}

	err := s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE payment_types SET name = ?, rrule = ?, description = ? WHERE id = ?",
			pt.Name, pt.Rule.String(), pt.Description, pt.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update payment type: %w", err)
		}
		return affected(res, hr.ErrPaymentTypeNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &pt, nil
}

// GetPaymentType retrieves a payment type by ID.
func (s *Store) GetPaymentType(ctx context.Context, id payroll.PaymentTypeID) (*payroll.PaymentType, error) {
	var pt payroll.PaymentType
	err := s.read(ctx, func(tx *sql.Tx) error {
		var rule string
		err := tx.QueryRowContext(ctx,
			"SELECT id, name, rrule, description FROM payment_types WHERE id = ?", id,
		).Scan(&pt.ID, &pt.Name, &rule, &pt.Description)
		if errors.Is(err, sql.ErrNoRows) {
			return hr.ErrPaymentTypeNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get payment type: %w", err)
		}
		pt.Rule, err = payroll.ParseFrequency(rule)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &pt, nil
}

// ListPaymentTypes returns all payment types ordered by name.
func (s *Store) ListPaymentTypes(ctx context.Context) ([]payroll.PaymentType, error) {
	var types []payroll.PaymentType
	err := s.read(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, "SELECT id, name, rrule, description FROM payment_types ORDER BY name, id")
		if err != nil {
			return fmt.Errorf("failed to list payment types: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var pt payroll.PaymentType
			var rule string
			if err := rows.Scan(&pt.ID, &pt.Name, &rule, &pt.Description); err != nil {
				return fmt.Errorf("failed to scan payment type: %w", err)
			}
			if pt.Rule, err = payroll.ParseFrequency(rule); err != nil {
				return fmt.Errorf("payment type %s: %w", pt.ID, err)
			}
			types = append(types, pt)
		}
		return rows.Err()
	})
	return types, err
}

// DeletePaymentType removes a payment type that no payment uses.
func (s *Store) DeletePaymentType(ctx context.Context, id payroll.PaymentTypeID) error {
	return s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM payment_types WHERE id = ?", id)
		if isForeignKeyError(err) {
			return fmt.Errorf("payment type %s: %w", id, hr.ErrInUse)
		}
		if err != nil {
			return fmt.Errorf("failed to delete payment type: %w", err)
		}
		return affected(res, hr.ErrPaymentTypeNotFound)
	})
}

// =============================================================================
// PAYMENT STORE
// =============================================================================

const paymentColumns = `
	p.id, p.employee_id, p.amount, p.date, p.end_date, p.description,
	t.id, t.name, t.rrule, t.description`

// CreatePayment inserts a payment. Its type and employee must exist; the
// returned payment carries the full type.
func (s *Store) CreatePayment(ctx context.Context, p payroll.Payment) (*payroll.Payment, error) {
	p = p.WholeSeconds()
	if err := checkPayment(p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = payroll.PaymentID(uuid.NewString())
	}

	err := s.write(ctx, func(tx *sql.Tx) error {
		if err := resolvePaymentRefs(ctx, tx, &p); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO payments (id, payment_type_id, employee_id, amount, date, end_date, description, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Type.ID, p.EmployeeID, p.Amount.String(), formatDate(p.Date), nullDate(p.EndDate),
			p.Description, now(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
		return saveAttributes(ctx, tx, hr.ModelPayment, string(p.ID), p.Attributes)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePayment replaces a payment.
func (s *Store) UpdatePayment(ctx context.Context, p payroll.Payment) (*payroll.Payment, error) {
	p = p.WholeSeconds()
	if err := checkPayment(p); err != nil {
		return nil, err
	}

	err := s.write(ctx, func(tx *sql.Tx) error {
		if err := resolvePaymentRefs(ctx, tx, &p); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE payments SET payment_type_id = ?, employee_id = ?, amount = ?, date = ?,
				end_date = ?, description = ?
			WHERE id = ?`,
			p.Type.ID, p.EmployeeID, p.Amount.String(), formatDate(p.Date), nullDate(p.EndDate),
			p.Description, p.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		if err := affected(res, hr.ErrPaymentNotFound); err != nil {
			return err
		}
		return saveAttributes(ctx, tx, hr.ModelPayment, string(p.ID), p.Attributes)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func checkPayment(p payroll.Payment) error {
	if p.Date.IsZero() {
		return validation("date", "is required")
	}
	if p.EndDate != nil && p.EndDate.Before(p.Date) {
		return validation("end_date", "must not be before date")
	}
	return nil
}

// resolvePaymentRefs checks the employee and loads the full payment type.
func resolvePaymentRefs(ctx context.Context, q queryer, p *payroll.Payment) error {
	ok, err := exists(ctx, q, "employees", string(p.EmployeeID))
	if err != nil {
		return err
	}
	if !ok {
		return payroll.ErrEmployeeNotFound
	}

	var rule string
	err = q.QueryRowContext(ctx,
		"SELECT name, rrule, description FROM payment_types WHERE id = ?", p.Type.ID,
	).Scan(&p.Type.Name, &rule, &p.Type.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.ErrPaymentTypeNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up payment type: %w", err)
	}
	p.Type.Rule, err = payroll.ParseFrequency(rule)
	return err
}

// GetPayment retrieves a payment by ID.
func (s *Store) GetPayment(ctx context.Context, id payroll.PaymentID) (*payroll.Payment, error) {
	var p *payroll.Payment
	err := s.read(ctx, func(tx *sql.Tx) error {
		list, err := queryPayments(ctx, tx, "WHERE p.id = ?", id)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return hr.ErrPaymentNotFound
		}
		p = &list[0]
		return nil
	})
	return p, err
}

// ListPayments returns payments ordered by employee first name, newest
// first. An empty employeeID lists every employee.
func (s *Store) ListPayments(ctx context.Context, employeeID payroll.EmployeeID) ([]payroll.Payment, error) {
	var payments []payroll.Payment
	err := s.read(ctx, func(tx *sql.Tx) error {
		var err error
		if employeeID == "" {
			payments, err = queryPayments(ctx, tx, "")
		} else {
			payments, err = queryPayments(ctx, tx, "WHERE p.employee_id = ?", employeeID)
		}
		return err
	})
	return payments, err
}

// DeletePayment removes a payment.
func (s *Store) DeletePayment(ctx context.Context, id payroll.PaymentID) error {
	return s.write(ctx, func(tx *sql.Tx) error {
		if err := deleteAttributes(ctx, tx, hr.ModelPayment, string(id)); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}
		return affected(res, hr.ErrPaymentNotFound)
	})
}

// =============================================================================
// PAYMENT SOURCE (payroll.PaymentSource interface)
// =============================================================================

// EmployeePayments returns the payments SelectYear needs for year, read in
// one transaction. The year rules are pushed down into the query.
func (s *Store) EmployeePayments(ctx context.Context, employeeID payroll.EmployeeID, year int) ([]payroll.Payment, error) {
	bounds := payroll.YearPeriod(year)
	start, end := formatDate(bounds.Start), formatDate(bounds.End)

	var payments []payroll.Payment
	err := s.read(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "employees", string(employeeID))
		if err != nil {
			return err
		}
		if !ok {
			return payroll.ErrEmployeeNotFound
		}

		// Upper bounds compare the whole-second prefix so a stored fraction
		// never sorts past 23:59:59.
		payments, err = queryPayments(ctx, tx, `
			WHERE p.employee_id = ? AND (
				(t.rrule = '' AND p.date >= ? AND substr(p.date, 1, 19) <= ?)
				OR (t.rrule <> '' AND substr(p.date, 1, 19) <= ? AND (p.end_date IS NULL OR p.end_date >= ?))
			)`,
			employeeID, start, end, end, start,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func queryPayments(ctx context.Context, q queryer, where string, args ...any) ([]payroll.Payment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments p
		JOIN payment_types t ON t.id = p.payment_type_id
		JOIN employees e ON e.id = p.employee_id
		`+where+`
		ORDER BY e.first_name, p.date DESC, p.id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var (
		payments []payroll.Payment
		ids      []string
	)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
		ids = append(ids, string(p.ID))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	bags, err := loadAttributes(ctx, q, hr.ModelPayment, ids)
	if err != nil {
		return nil, err
	}
	for i := range payments {
		payments[i].Attributes = bags[string(payments[i].ID)]
	}
	return payments, nil
}

func scanPayment(rows *sql.Rows) (payroll.Payment, error) {
	var (
		p       payroll.Payment
		amount  string
		date    string
		endDate sql.NullString
		rule    string
	)

	err := rows.Scan(
		&p.ID, &p.EmployeeID, &amount, &date, &endDate, &p.Description,
		&p.Type.ID, &p.Type.Name, &rule, &p.Type.Description,
	)
	if err != nil {
		return p, fmt.Errorf("failed to scan payment: %w", err)
	}

	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return p, fmt.Errorf("payment %s: invalid amount %q: %w", p.ID, amount, err)
	}
	if p.Date, err = parseDate(date); err != nil {
		return p, fmt.Errorf("payment %s: %w", p.ID, err)
	}
	if endDate.Valid {
		end, err := parseDate(endDate.String)
		if err != nil {
			return p, fmt.Errorf("payment %s: %w", p.ID, err)
		}
		p.EndDate = &end
	}
	// Unknown stored rules fail the read with ErrUnsupportedFrequency.
	p.Type.Rule, err = payroll.ParseFrequency(rule)
	if err != nil {
		return p, fmt.Errorf("payment %s: %w", p.ID, err)
	}
	return p, nil
}
