// position_repository.go implements PositionRepository, the keyed CRUD store for
// named offices. (name, type) is unique case-insensitively.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

// PositionRepository handles position database operations
type PositionRepository struct {
	db *sql.DB
}

// NewPositionRepository creates a new PositionRepository
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// List returns all positions, optionally filtered by type
func (r *PositionRepository) List(ctx context.Context, positionType string) ([]*models.Position, error) {
	query := `SELECT id, name, type, created_at, updated_at FROM positions`
	args := make([]interface{}, 0, 1)
	if positionType != "" {
		query += ` WHERE type = $1`
		args = append(args, positionType)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	positions := make([]*models.Position, 0)
	for rows.Next() {
		p := &models.Position{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}

	return positions, rows.Err()
}

// GetByID retrieves a position by ID, or nil if not found
func (r *PositionRepository) GetByID(ctx context.Context, id int64) (*models.Position, error) {
	p := &models.Position{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, created_at, updated_at FROM positions WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Type, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return p, nil
}

// GetByNameAndType retrieves a position by its unique (name, type) pair, or
// nil if not found
func (r *PositionRepository) GetByNameAndType(ctx context.Context, name, positionType string) (*models.Position, error) {
	p := &models.Position{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, created_at, updated_at FROM positions WHERE LOWER(name) = LOWER($1) AND type = $2`,
		name, positionType,
	).Scan(&p.ID, &p.Name, &p.Type, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position by name: %w", err)
	}
	return p, nil
}

// Create inserts a new position and returns its ID
func (r *PositionRepository) Create(ctx context.Context, name, positionType string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO positions (name, type) VALUES ($1, $2) RETURNING id`, name, positionType).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, ErrDuplicateName
		}
		return 0, fmt.Errorf("failed to create position: %w", err)
	}
	return id, nil
}

// Update renames or retypes a position. Returns false if it does not exist.
func (r *PositionRepository) Update(ctx context.Context, id int64, name, positionType string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE positions SET name = $1, type = $2, updated_at = NOW() WHERE id = $3`, name, positionType, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return false, ErrDuplicateName
		}
		return false, fmt.Errorf("failed to update position: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Delete removes a position
func (r *PositionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete position: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
