// barangay_repository.go implements BarangayRepository, the keyed CRUD store for
// barangays. Names are unique case-insensitively.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

// ErrDuplicateName is returned by directory stores whose insert or rename
// collides with a case-insensitive unique name constraint.
var ErrDuplicateName = errors.New("a record with the same name already exists")

// BarangayRepository handles barangay database operations
type BarangayRepository struct {
	db *sql.DB
}

// NewBarangayRepository creates a new BarangayRepository
func NewBarangayRepository(db *sql.DB) *BarangayRepository {
	return &BarangayRepository{db: db}
}

// List returns a page of barangays plus the total count
func (r *BarangayRepository) List(ctx context.Context, limit, offset int) ([]*models.Barangay, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM barangays`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count barangays: %w", err)
	}

	query := `
		SELECT id, name, created_at, updated_at
		FROM barangays
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list barangays: %w", err)
	}
	defer rows.Close()

	barangays := make([]*models.Barangay, 0)
	for rows.Next() {
		b := &models.Barangay{}
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, err
		}
		barangays = append(barangays, b)
	}

	return barangays, total, rows.Err()
}

// ListAll returns every barangay ordered by name
func (r *BarangayRepository) ListAll(ctx context.Context) ([]*models.Barangay, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM barangays ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list barangays: %w", err)
	}
	defer rows.Close()

	barangays := make([]*models.Barangay, 0)
	for rows.Next() {
		b := &models.Barangay{}
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		barangays = append(barangays, b)
	}

	return barangays, rows.Err()
}

// GetByID retrieves a barangay by ID, or nil if not found
func (r *BarangayRepository) GetByID(ctx context.Context, id int64) (*models.Barangay, error) {
	b := &models.Barangay{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM barangays WHERE id = $1`, id,
	).Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get barangay: %w", err)
	}
	return b, nil
}

// GetByName retrieves a barangay by case-insensitive name, or nil if not found
func (r *BarangayRepository) GetByName(ctx context.Context, name string) (*models.Barangay, error) {
	b := &models.Barangay{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM barangays WHERE LOWER(name) = LOWER($1)`, name,
	).Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get barangay by name: %w", err)
	}
	return b, nil
}

// Create inserts a new barangay and returns its ID
func (r *BarangayRepository) Create(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO barangays (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, ErrDuplicateName
		}
		return 0, fmt.Errorf("failed to create barangay: %w", err)
	}
	return id, nil
}

// Update renames a barangay. Returns false if the barangay does not exist.
func (r *BarangayRepository) Update(ctx context.Context, id int64, name string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE barangays SET name = $1, updated_at = NOW() WHERE id = $2`, name, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return false, ErrDuplicateName
		}
		return false, fmt.Errorf("failed to update barangay: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Delete removes a barangay
func (r *BarangayRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM barangays WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete barangay: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Count returns the total number of barangays
func (r *BarangayRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM barangays`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count barangays: %w", err)
	}
	return count, nil
}
