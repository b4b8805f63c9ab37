// benefit_repository.go implements BenefitRepository. Benefits soft-delete like
// citizens but expose no restore or purge routes; deleted rows simply leave listings.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

// BenefitRepository handles benefit database operations
type BenefitRepository struct {
	db *sql.DB
}

// NewBenefitRepository creates a new BenefitRepository
func NewBenefitRepository(db *sql.DB) *BenefitRepository {
	return &BenefitRepository{db: db}
}

const benefitColumns = `id, type, name, description, provider, image_url, image_public_id, deleted, created_at, updated_at`

// ListByType returns all non-deleted benefits of one type, newest first
func (r *BenefitRepository) ListByType(ctx context.Context, benefitType string) ([]*models.Benefit, error) {
	query := `SELECT ` + benefitColumns + ` FROM benefits WHERE NOT deleted AND type = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, benefitType)
	if err != nil {
		return nil, fmt.Errorf("failed to list benefits: %w", err)
	}
	defer rows.Close()

	return scanBenefits(rows)
}

// List returns all non-deleted benefits, newest first
func (r *BenefitRepository) List(ctx context.Context) ([]*models.Benefit, error) {
	query := `SELECT ` + benefitColumns + ` FROM benefits WHERE NOT deleted ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list benefits: %w", err)
	}
	defer rows.Close()

	return scanBenefits(rows)
}

// GetByID retrieves a non-deleted benefit, or nil if not found
func (r *BenefitRepository) GetByID(ctx context.Context, id int64) (*models.Benefit, error) {
	query := `SELECT ` + benefitColumns + ` FROM benefits WHERE id = $1 AND NOT deleted`

	b := &models.Benefit{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Type, &b.Name, &b.Description, &b.Provider,
		&b.ImageURL, &b.ImagePublicID, &b.Deleted, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get benefit: %w", err)
	}
	return b, nil
}

// Create inserts a new benefit and returns its ID
func (r *BenefitRepository) Create(ctx context.Context, benefit *models.Benefit) (int64, error) {
	query := `
		INSERT INTO benefits (type, name, description, provider, image_url, image_public_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		benefit.Type, benefit.Name, benefit.Description, benefit.Provider,
		benefit.ImageURL, benefit.ImagePublicID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create benefit: %w", err)
	}
	return id, nil
}

// Update overwrites a non-deleted benefit. Returns false if it does not exist
// or is deleted.
func (r *BenefitRepository) Update(ctx context.Context, id int64, benefit *models.Benefit) (bool, error) {
	query := `
		UPDATE benefits
		SET type = $1, name = $2, description = $3, provider = $4, image_url = $5, image_public_id = $6, updated_at = NOW()
		WHERE id = $7 AND NOT deleted
	`

	result, err := r.db.ExecContext(ctx, query,
		benefit.Type, benefit.Name, benefit.Description, benefit.Provider,
		benefit.ImageURL, benefit.ImagePublicID, id)
	if err != nil {
		return false, fmt.Errorf("failed to update benefit: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SoftDelete hides a benefit. Returns false if already deleted or missing.
func (r *BenefitRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE benefits SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT deleted`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete benefit: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CountByType returns non-deleted benefit counts per type, excluding the
// republic acts reference pages
func (r *BenefitRepository) CountByType(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT type, COUNT(*)
		FROM benefits
		WHERE NOT deleted AND type <> $1
		GROUP BY type
	`

	rows, err := r.db.QueryContext(ctx, query, models.BenefitTypeRepublicActs)
	if err != nil {
		return nil, fmt.Errorf("failed to count benefits: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var benefitType string
		var count int
		if err := rows.Scan(&benefitType, &count); err != nil {
			return nil, err
		}
		counts[benefitType] = count
	}

	return counts, rows.Err()
}

func scanBenefits(rows *sql.Rows) ([]*models.Benefit, error) {
	benefits := make([]*models.Benefit, 0)
	for rows.Next() {
		b := &models.Benefit{}
		err := rows.Scan(&b.ID, &b.Type, &b.Name, &b.Description, &b.Provider,
			&b.ImageURL, &b.ImagePublicID, &b.Deleted, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return nil, err
		}
		benefits = append(benefits, b)
	}
	return benefits, rows.Err()
}
