package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/warp/payslip-engine/hr"
	"github.com/warp/payslip-engine/payroll"
)

// =============================================================================
// EXTRA FIELD TYPES
// =============================================================================

// CreateFieldType inserts an extra field type. Names are unique.
func (s *Store) CreateFieldType(ctx context.Context, ft hr.ExtraFieldType) (*hr.ExtraFieldType, error) {
	if strings.TrimSpace(ft.Name) == "" {
		return nil, validation("name", "is required")
	}
	if ft.ID == "" {
		ft.ID = hr.FieldTypeID(uuid.NewString())
	}

	err := s.write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO extra_field_types (id, name, description, model, fixed_values) VALUES (?, ?, ?, ?, ?)",
			ft.ID, ft.Name, ft.Description, string(ft.Model), ft.FixedValues,
		)
		if isUniqueConstraintError(err) {
			return fmt.Errorf("extra field type %q: %w", ft.Name, hr.ErrDuplicateName)
		}
		if err != nil {
			return fmt.Errorf("failed to insert extra field type: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ft, nil
}

// UpdateFieldType replaces an extra field type.
func (s *Store) UpdateFieldType(ctx context.Context, ft hr.ExtraFieldType) (*hr.ExtraFieldType, error) {
	if strings.TrimSpace(ft.Name) == "" {
		return nil, validation("name", "is required")
	}

	err := s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE extra_field_types SET name = ?, description = ?, model = ?, fixed_values = ? WHERE id = ?",
			ft.Name, ft.Description, string(ft.Model), ft.FixedValues, ft.ID,
		)
		if isUniqueConstraintError(err) {
			return fmt.Errorf("extra field type %q: %w", ft.Name, hr.ErrDuplicateName)
		}
		if err != nil {
			return fmt.Errorf("failed to update extra field type: %w", err)
		}
		return affected(res, hr.ErrFieldTypeNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &ft, nil
}

// GetFieldType retrieves an extra field type by ID.
func (s *Store) GetFieldType(ctx context.Context, id hr.FieldTypeID) (*hr.ExtraFieldType, error) {
	var ft hr.ExtraFieldType
	err := s.read(ctx, func(tx *sql.Tx) error {
		var err error
		ft, err = getFieldType(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ft, nil
}

func getFieldType(ctx context.Context, q queryer, id hr.FieldTypeID) (hr.ExtraFieldType, error) {
	var ft hr.ExtraFieldType
	var model string
	err := q.QueryRowContext(ctx,
		"SELECT id, name, description, model, fixed_values FROM extra_field_types WHERE id = ?", id,
	).Scan(&ft.ID, &ft.Name, &ft.Description, &model, &ft.FixedValues)
	if errors.Is(err, sql.ErrNoRows) {
		return ft, hr.ErrFieldTypeNotFound
	}
	if err != nil {
		return ft, fmt.Errorf("failed to get extra field type: %w", err)
	}
	ft.Model = hr.Model(model)
	return ft, nil
}

// ListFieldTypes returns all extra field types ordered by name.
func (s *Store) ListFieldTypes(ctx context.Context) ([]hr.ExtraFieldType, error) {
	var types []hr.ExtraFieldType
	err := s.read(ctx, func(tx *sql.Tx) error {
		var err error
		types, err = listFieldTypes(ctx, tx)
		return err
	})
	return types, err
}

func listFieldTypes(ctx context.Context, q queryer) ([]hr.ExtraFieldType, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name, description, model, fixed_values FROM extra_field_types ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list extra field types: %w", err)
	}
	defer rows.Close()

	var types []hr.ExtraFieldType
	for rows.Next() {
		var ft hr.ExtraFieldType
		var model string
		if err := rows.Scan(&ft.ID, &ft.Name, &ft.Description, &model, &ft.FixedValues); err != nil {
			return nil, fmt.Errorf("failed to scan extra field type: %w", err)
		}
		ft.Model = hr.Model(model)
		types = append(types, ft)
	}
	return types, rows.Err()
}

// DeleteFieldType removes a field type, its global values and every
// attribute that used it.
func (s *Store) DeleteFieldType(ctx context.Context, id hr.FieldTypeID) error {
	return s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM extra_field_types WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete extra field type: %w", err)
		}
		return affected(res, hr.ErrFieldTypeNotFound)
	})
}

// =============================================================================
// EXTRA FIELDS (global values)
// =============================================================================

// CreateExtraField adds a global value. Only fixed-value field types take
// global values.
func (s *Store) CreateExtraField(ctx context.Context, f hr.ExtraField) (*hr.ExtraField, error) {
	if f.ID == "" {
		f.ID = hr.ExtraFieldID(uuid.NewString())
	}

	err := s.write(ctx, func(tx *sql.Tx) error {
		ft, err := checkFixedType(ctx, tx, f.FieldTypeID)
		if err != nil {
			return err
		}
		f.FieldType = ft.Name

		_, err = tx.ExecContext(ctx,
			"INSERT INTO extra_fields (id, field_type_id, value) VALUES (?, ?, ?)",
			f.ID, f.FieldTypeID, f.Value,
		)
		if err != nil {
			return fmt.Errorf("failed to insert extra field: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateExtraField changes a global value.
func (s *Store) UpdateExtraField(ctx context.Context, f hr.ExtraField) (*hr.ExtraField, error) {
	err := s.write(ctx, func(tx *sql.Tx) error {
		ft, err := checkFixedType(ctx, tx, f.FieldTypeID)
		if err != nil {
			return err
		}
		f.FieldType = ft.Name

		res, err := tx.ExecContext(ctx,
			"UPDATE extra_fields SET field_type_id = ?, value = ? WHERE id = ?",
			f.FieldTypeID, f.Value, f.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update extra field: %w", err)
		}
		return affected(res, hr.ErrExtraFieldNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func checkFixedType(ctx context.Context, q queryer, id hr.FieldTypeID) (hr.ExtraFieldType, error) {
	if id == "" {
		return hr.ExtraFieldType{}, validation("field_type_id", "is required")
	}
	ft, err := getFieldType(ctx, q, id)
	if err != nil {
		return ft, err
	}
	if !ft.FixedValues {
		return ft, validation("field_type_id", "only field types with fixed values take global values")
	}
	return ft, nil
}

// ListExtraFields returns the global values ordered by field type name.
func (s *Store) ListExtraFields(ctx context.Context) ([]hr.ExtraField, error) {
	var fields []hr.ExtraField
	err := s.read(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT f.id, f.field_type_id, t.name, f.value
			FROM extra_fields f JOIN extra_field_types t ON t.id = f.field_type_id
			ORDER BY t.name, f.value`)
		if err != nil {
			return fmt.Errorf("failed to list extra fields: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var f hr.ExtraField
			if err := rows.Scan(&f.ID, &f.FieldTypeID, &f.FieldType, &f.Value); err != nil {
				return fmt.Errorf("failed to scan extra field: %w", err)
			}
			fields = append(fields, f)
		}
		return rows.Err()
	})
	return fields, err
}

// DeleteExtraField removes a global value.
func (s *Store) DeleteExtraField(ctx context.Context, id hr.ExtraFieldID) error {
	return s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM extra_fields WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete extra field: %w", err)
		}
		return affected(res, hr.ErrExtraFieldNotFound)
	})
}

// =============================================================================
// ATTRIBUTE BAGS
// =============================================================================

// Catalog loads the field types and global values attribute bags are
// validated against.
func (s *Store) Catalog(ctx context.Context) (hr.Catalog, error) {
	var c hr.Catalog
	err := s.read(ctx, func(tx *sql.Tx) error {
		var err error
		c, err = loadCatalog(ctx, tx)
		return err
	})
	return c, err
}

func loadCatalog(ctx context.Context, q queryer) (hr.Catalog, error) {
	c := hr.Catalog{
		Types: make(map[string]hr.ExtraFieldType),
		Fixed: make(map[hr.FieldTypeID][]string),
	}

	types, err := listFieldTypes(ctx, q)
	if err != nil {
		return c, err
	}
	for _, ft := range types {
		c.Types[ft.Name] = ft
	}

	rows, err := q.QueryContext(ctx, "SELECT field_type_id, value FROM extra_fields")
	if err != nil {
		return c, fmt.Errorf("failed to load extra fields: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id hr.FieldTypeID
		var value string
		if err := rows.Scan(&id, &value); err != nil {
			return c, fmt.Errorf("failed to scan extra field: %w", err)
		}
		c.Fixed[id] = append(c.Fixed[id], value)
	}
	return c, rows.Err()
}

// saveAttributes validates bag against the catalogue and replaces the
// stored bag of the entity.
func saveAttributes(ctx context.Context, tx *sql.Tx, model hr.Model, id string, bag map[string]string) error {
	catalog, err := loadCatalog(ctx, tx)
	if err != nil {
		return err
	}
	if err := catalog.ValidateAttributes(model, bag); err != nil {
		return err
	}

	if err := deleteAttributes(ctx, tx, model, id); err != nil {
		return err
	}
	for name, value := range bag {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO entity_attributes (entity_type, entity_id, field_type_id, value) VALUES (?, ?, ?, ?)",
			string(model), id, catalog.Types[name].ID, value,
		)
		if err != nil {
			return fmt.Errorf("failed to save attribute %q: %w", name, err)
		}
	}
	return nil
}

func deleteAttributes(ctx context.Context, q queryer, model hr.Model, id string) error {
	_, err := q.ExecContext(ctx,
		"DELETE FROM entity_attributes WHERE entity_type = ? AND entity_id = ?",
		string(model), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete attributes: %w", err)
	}
	return nil
}

// loadAttributes returns the bags of the given entities keyed by entity id.
// Entities without attributes are absent from the result.
func loadAttributes(ctx context.Context, q queryer, model hr.Model, ids []string) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, string(model))
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := q.QueryContext(ctx, `
		SELECT a.entity_id, t.name, a.value
		FROM entity_attributes a JOIN extra_field_types t ON t.id = a.field_type_id
		WHERE a.entity_type = ? AND a.entity_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load attributes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name, value string
		if err := rows.Scan(&id, &name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan attribute: %w", err)
		}
		if out[id] == nil {
			out[id] = make(map[string]string)
		}
		out[id][name] = value
	}
	return out, rows.Err()
}

func validation(field, message string) error {
	return &payroll.ValidationError{Field: field, Message: message}
}
