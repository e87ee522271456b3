package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/warp/payslip-engine/hr"
)

// =============================================================================
// COMPANY STORE
// =============================================================================

// CreateCompany inserts a company, assigning an id when it has none.
func (s *Store) CreateCompany(ctx context.Context, c hr.Company) (*hr.Company, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, validation("name", "is required")
	}
	if c.ID == "" {
		c.ID = hr.CompanyID(uuid.NewString())
	}

	err := s.write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO companies (id, name, address, created_at) VALUES (?, ?, ?, ?)",
			c.ID, c.Name, c.Address, now(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert company: %w", err)
		}
		return saveAttributes(ctx, tx, hr.ModelCompany, string(c.ID), c.ExtraFields)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCompany replaces a company's fields and attribute bag.
func (s *Store) UpdateCompany(ctx context.Context, c hr.Company) (*hr.Company, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, validation("name", "is required")
	}

	err := s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE companies SET name = ?, address = ? WHERE id = ?",
			c.Name, c.Address, c.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update company: %w", err)
		}
		if err := affected(res, hr.ErrCompanyNotFound); err != nil {
			return err
		}
		return saveAttributes(ctx, tx, hr.ModelCompany, string(c.ID), c.ExtraFields)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCompany retrieves a company by ID.
func (s *Store) GetCompany(ctx context.Context, id hr.CompanyID) (*hr.Company, error) {
	var c hr.Company
	err := s.read(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			"SELECT id, name, address FROM companies WHERE id = ?", id,
		).Scan(&c.ID, &c.Name, &c.Address)
		if errors.Is(err, sql.ErrNoRows) {
			return hr.ErrCompanyNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get company: %w", err)
		}

		bags, err := loadAttributes(ctx, tx, hr.ModelCompany, []string{string(c.ID)})
		c.ExtraFields = bags[string(c.ID)]
		return err
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCompanies returns all companies ordered by name.
func (s *Store) ListCompanies(ctx context.Context) ([]hr.Company, error) {
	var companies []hr.Company
	err := s.read(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, "SELECT id, name, address FROM companies ORDER BY name, id")
		if err != nil {
			return fmt.Errorf("failed to list companies: %w", err)
		}
		defer rows.Close()

		var ids []string
		for rows.Next() {
			var c hr.Company
			if err := rows.Scan(&c.ID, &c.Name, &c.Address); err != nil {
				return fmt.Errorf("failed to scan company: %w", err)
			}
			companies = append(companies, c)
			ids = append(ids, string(c.ID))
		}
		if err := rows.Err(); err != nil {
			return err
		}

		bags, err := loadAttributes(ctx, tx, hr.ModelCompany, ids)
		if err != nil {
			return err
		}
		for i := range companies {
			companies[i].ExtraFields = bags[string(companies[i].ID)]
		}
		return nil
	})
	return companies, err
}

// DeleteCompany removes a company with its employees and their payments.
func (s *Store) DeleteCompany(ctx context.Context, id hr.CompanyID) error {
	return s.write(ctx, func(tx *sql.Tx) error {
		// Attribute bags are not reached by the cascade.
		cleanup := []struct {
			query string
			model hr.Model
		}{
			{`DELETE FROM entity_attributes WHERE entity_type = ? AND entity_id IN (
				SELECT p.id FROM payments p JOIN employees e ON e.id = p.employee_id WHERE e.company_id = ?)`, hr.ModelPayment},
			{`DELETE FROM entity_attributes WHERE entity_type = ? AND entity_id IN (
				SELECT id FROM employees WHERE company_id = ?)`, hr.ModelEmployee},
			{`DELETE FROM entity_attributes WHERE entity_type = ? AND entity_id = ?`, hr.ModelCompany},
		}
		for _, c := range cleanup {
			if _, err := tx.ExecContext(ctx, c.query, string(c.model), id); err != nil {
				return fmt.Errorf("failed to delete attributes: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM companies WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete company: %w", err)
		}
		return affected(res, hr.ErrCompanyNotFound)
	})
}
