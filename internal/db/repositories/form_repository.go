// form_repository.go implements FormRepository over the admin-managed form schema:
// field definitions and the groups that section them.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

// FormRepository handles form schema database operations
type FormRepository struct {
	db *sql.DB
}

// NewFormRepository creates a new FormRepository
func NewFormRepository(db *sql.DB) *FormRepository {
	return &FormRepository{db: db}
}

// ListFields returns all field definitions ordered by (group, order)
func (r *FormRepository) ListFields(ctx context.Context) ([]*models.FormField, error) {
	query := `
		SELECT id, field_name, label, type, options, required, group_key, field_order, created_at
		FROM form_fields
		ORDER BY group_key, field_order, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list form fields: %w", err)
	}
	defer rows.Close()

	fields := make([]*models.FormField, 0)
	for rows.Next() {
		field := &models.FormField{}
		err := rows.Scan(
			&field.ID,
			&field.FieldName,
			&field.Label,
			&field.Type,
			&field.Options,
			&field.Required,
			&field.GroupKey,
			&field.Order,
			&field.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}

	return fields, rows.Err()
}

// GetFieldByNameOrLabel finds a field matching either the name or the label,
// used for the uniqueness pre-check. Returns nil if no field matches.
func (r *FormRepository) GetFieldByNameOrLabel(ctx context.Context, fieldName, label string) (*models.FormField, error) {
	query := `
		SELECT id, field_name, label, type, options, required, group_key, field_order, created_at
		FROM form_fields
		WHERE field_name = $1 OR label = $2
		LIMIT 1
	`

	field := &models.FormField{}
	err := r.db.QueryRowContext(ctx, query, fieldName, label).Scan(
		&field.ID,
		&field.FieldName,
		&field.Label,
		&field.Type,
		&field.Options,
		&field.Required,
		&field.GroupKey,
		&field.Order,
		&field.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up form field: %w", err)
	}

	return field, nil
}

// CreateField inserts a new field definition and returns its ID
func (r *FormRepository) CreateField(ctx context.Context, field *models.FormField) (int64, error) {
	query := `
		INSERT INTO form_fields (field_name, label, type, options, required, group_key, field_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		field.FieldName,
		field.Label,
		field.Type,
		field.Options,
		field.Required,
		field.GroupKey,
		field.Order,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create form field: %w", err)
	}

	return id, nil
}

// UpdateField overwrites a field definition. Returns false if the field does
// not exist.
func (r *FormRepository) UpdateField(ctx context.Context, id int64, field *models.FormField) (bool, error) {
	query := `
		UPDATE form_fields
		SET field_name = $1, label = $2, type = $3, options = $4, required = $5, group_key = $6, field_order = $7
		WHERE id = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		field.FieldName,
		field.Label,
		field.Type,
		field.Options,
		field.Required,
		field.GroupKey,
		field.Order,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update form field: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteField removes a field definition
func (r *FormRepository) DeleteField(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM form_fields WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete form field: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Reorder applies a bulk set of order updates inside one transaction so a
// failure partway through leaves the previous ordering intact
func (r *FormRepository) Reorder(ctx context.Context, orders []models.FieldOrder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reorder transaction: %w", err)
	}
	defer tx.Rollback()

	for _, o := range orders {
		if _, err := tx.ExecContext(ctx,
			`UPDATE form_fields SET field_order = $1 WHERE id = $2`, o.Order, o.ID); err != nil {
			return fmt.Errorf("failed to reorder form field %d: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}

// ListGroups returns all form groups ordered by label
func (r *FormRepository) ListGroups(ctx context.Context) ([]*models.FormGroup, error) {
	query := `SELECT id, group_key, group_label FROM form_groups ORDER BY group_label`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list form groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*models.FormGroup, 0)
	for rows.Next() {
		group := &models.FormGroup{}
		if err := rows.Scan(&group.ID, &group.GroupKey, &group.GroupLabel); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}

	return groups, rows.Err()
}

// GetGroupByKeyOrLabel finds a group matching either the key or the label,
// used for the uniqueness pre-check. Returns nil if no group matches.
func (r *FormRepository) GetGroupByKeyOrLabel(ctx context.Context, groupKey, groupLabel string) (*models.FormGroup, error) {
	query := `SELECT id, group_key, group_label FROM form_groups WHERE group_key = $1 OR group_label = $2 LIMIT 1`

	group := &models.FormGroup{}
	err := r.db.QueryRowContext(ctx, query, groupKey, groupLabel).Scan(&group.ID, &group.GroupKey, &group.GroupLabel)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up form group: %w", err)
	}

	return group, nil
}

// CreateGroup inserts a new form group and returns its ID
func (r *FormRepository) CreateGroup(ctx context.Context, group *models.FormGroup) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO form_groups (group_key, group_label) VALUES ($1, $2) RETURNING id`,
		group.GroupKey, group.GroupLabel,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create form group: %w", err)
	}
	return id, nil
}
