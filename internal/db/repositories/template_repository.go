// template_repository.go implements TemplateRepository, the CRUD store for reusable
// SMS message bodies.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

// TemplateRepository handles SMS template database operations
type TemplateRepository struct {
	db *sql.DB
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// List returns all templates ordered by name
func (r *TemplateRepository) List(ctx context.Context) ([]*models.SMSTemplate, error) {
	query := `SELECT id, name, message, category, created_at, updated_at FROM sms_templates ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	templates := make([]*models.SMSTemplate, 0)
	for rows.Next() {
		t := &models.SMSTemplate{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Message, &t.Category, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}

	return templates, rows.Err()
}

// GetByID retrieves a template, or nil if not found
func (r *TemplateRepository) GetByID(ctx context.Context, id int64) (*models.SMSTemplate, error) {
	t := &models.SMSTemplate{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, message, category, created_at, updated_at FROM sms_templates WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Message, &t.Category, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

// Create inserts a new template and returns its ID
func (r *TemplateRepository) Create(ctx context.Context, template *models.SMSTemplate) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO sms_templates (name, message, category) VALUES ($1, $2, $3) RETURNING id`,
		template.Name, template.Message, template.Category).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create template: %w", err)
	}
	return id, nil
}

// Update overwrites a template. Returns false if it does not exist.
func (r *TemplateRepository) Update(ctx context.Context, id int64, template *models.SMSTemplate) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sms_templates SET name = $1, message = $2, category = $3, updated_at = NOW() WHERE id = $4`,
		template.Name, template.Message, template.Category, id)
	if err != nil {
		return false, fmt.Errorf("failed to update template: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Delete removes a template
func (r *TemplateRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sms_templates WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete template: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
