// official_repository.go implements the stores for municipal officials, the
// organizational chart, and barangay officials. Municipal and org chart entries share
// a shape and slot rules (one "top", one "mid") and differ only in their table.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

// ErrSlotOccupied is returned when a create or type change would give the
// single-occupant "top" or "mid" slot a second holder.
var ErrSlotOccupied = errors.New("the position slot already has an occupant")

// ErrSeatTaken is returned when a barangay official insert collides with the
// unique (barangay, position) seat.
var ErrSeatTaken = errors.New("an official already holds that position in this barangay")

// OfficialRepository handles municipal official and org chart database
// operations; the backing table is fixed at construction
type OfficialRepository struct {
	db    *sql.DB
	table string
}

// NewMunicipalOfficialRepository creates an OfficialRepository over the
// municipal officials table
func NewMunicipalOfficialRepository(db *sql.DB) *OfficialRepository {
	return &OfficialRepository{db: db, table: "municipal_officials"}
}

// NewOrgChartRepository creates an OfficialRepository over the org chart table
func NewOrgChartRepository(db *sql.DB) *OfficialRepository {
	return &OfficialRepository{db: db, table: "org_chart_entries"}
}

// List returns all entries, top slot first, then mid, then the rest by name
func (r *OfficialRepository) List(ctx context.Context) ([]*models.Official, error) {
	query := fmt.Sprintf(`
		SELECT id, name, position, type, image_url, image_public_id, created_at, updated_at
		FROM %s
		ORDER BY CASE type WHEN 'top' THEN 0 WHEN 'mid' THEN 1 ELSE 2 END, name
	`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list officials: %w", err)
	}
	defer rows.Close()

	officials := make([]*models.Official, 0)
	for rows.Next() {
		o := &models.Official{}
		err := rows.Scan(&o.ID, &o.Name, &o.Position, &o.Type, &o.ImageURL, &o.ImagePublicID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, err
		}
		officials = append(officials, o)
	}

	return officials, rows.Err()
}

// GetByID retrieves one entry, or nil if not found
func (r *OfficialRepository) GetByID(ctx context.Context, id int64) (*models.Official, error) {
	query := fmt.Sprintf(`
		SELECT id, name, position, type, image_url, image_public_id, created_at, updated_at
		FROM %s WHERE id = $1
	`, r.table)

	o := &models.Official{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.Name, &o.Position, &o.Type, &o.ImageURL, &o.ImagePublicID, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get official: %w", err)
	}
	return o, nil
}

// GetSlotOccupant returns the current holder of a single-occupant slot type,
// or nil when the slot is open
func (r *OfficialRepository) GetSlotOccupant(ctx context.Context, slotType string) (*models.Official, error) {
	query := fmt.Sprintf(`
		SELECT id, name, position, type, image_url, image_public_id, created_at, updated_at
		FROM %s WHERE type = $1 LIMIT 1
	`, r.table)

	o := &models.Official{}
	err := r.db.QueryRowContext(ctx, query, slotType).Scan(
		&o.ID, &o.Name, &o.Position, &o.Type, &o.ImageURL, &o.ImagePublicID, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot occupant: %w", err)
	}
	return o, nil
}

// Create inserts a new entry and returns its ID
func (r *OfficialRepository) Create(ctx context.Context, official *models.Official) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, position, type, image_url, image_public_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, r.table)

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		official.Name, official.Position, official.Type, official.ImageURL, official.ImagePublicID).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, ErrSlotOccupied
		}
		return 0, fmt.Errorf("failed to create official: %w", err)
	}
	return id, nil
}

// Update overwrites an entry. Returns false if it does not exist.
func (r *OfficialRepository) Update(ctx context.Context, id int64, official *models.Official) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, position = $2, type = $3, image_url = $4, image_public_id = $5, updated_at = NOW()
		WHERE id = $6
	`, r.table)

	result, err := r.db.ExecContext(ctx, query,
		official.Name, official.Position, official.Type, official.ImageURL, official.ImagePublicID, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return false, ErrSlotOccupied
		}
		return false, fmt.Errorf("failed to update official: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Delete removes an entry
func (r *OfficialRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete official: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// BarangayOfficialRepository handles barangay official database operations
type BarangayOfficialRepository struct {
	db *sql.DB
}

// NewBarangayOfficialRepository creates a new BarangayOfficialRepository
func NewBarangayOfficialRepository(db *sql.DB) *BarangayOfficialRepository {
	return &BarangayOfficialRepository{db: db}
}

// List returns all barangay officials ordered by barangay then position
func (r *BarangayOfficialRepository) List(ctx context.Context) ([]*models.BarangayOfficial, error) {
	query := `
		SELECT id, barangay_name, position, official_name, image_url, image_public_id, created_at, updated_at
		FROM barangay_officials
		ORDER BY barangay_name, position
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list barangay officials: %w", err)
	}
	defer rows.Close()

	officials := make([]*models.BarangayOfficial, 0)
	for rows.Next() {
		o := &models.BarangayOfficial{}
		err := rows.Scan(&o.ID, &o.BarangayName, &o.Position, &o.OfficialName,
			&o.ImageURL, &o.ImagePublicID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, err
		}
		officials = append(officials, o)
	}

	return officials, rows.Err()
}

// GetByID retrieves one barangay official, or nil if not found
func (r *BarangayOfficialRepository) GetByID(ctx context.Context, id int64) (*models.BarangayOfficial, error) {
	query := `
		SELECT id, barangay_name, position, official_name, image_url, image_public_id, created_at, updated_at
		FROM barangay_officials WHERE id = $1
	`

	o := &models.BarangayOfficial{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&o.ID, &o.BarangayName, &o.Position, &o.OfficialName,
		&o.ImageURL, &o.ImagePublicID, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get barangay official: %w", err)
	}
	return o, nil
}

// GetBySeat returns the official holding a (barangay, position) seat, or nil
// when the seat is open
func (r *BarangayOfficialRepository) GetBySeat(ctx context.Context, barangayName, position string) (*models.BarangayOfficial, error) {
	query := `
		SELECT id, barangay_name, position, official_name, image_url, image_public_id, created_at, updated_at
		FROM barangay_officials
		WHERE LOWER(barangay_name) = LOWER($1) AND LOWER(position) = LOWER($2)
	`

	o := &models.BarangayOfficial{}
	err := r.db.QueryRowContext(ctx, query, barangayName, position).Scan(&o.ID, &o.BarangayName, &o.Position,
		&o.OfficialName, &o.ImageURL, &o.ImagePublicID, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get barangay official seat: %w", err)
	}
	return o, nil
}

// Create inserts a new barangay official and returns its ID
func (r *BarangayOfficialRepository) Create(ctx context.Context, official *models.BarangayOfficial) (int64, error) {
	query := `
		INSERT INTO barangay_officials (barangay_name, position, official_name, image_url, image_public_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		official.BarangayName, official.Position, official.OfficialName,
		official.ImageURL, official.ImagePublicID).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, ErrSeatTaken
		}
		return 0, fmt.Errorf("failed to create barangay official: %w", err)
	}
	return id, nil
}

// Update overwrites a barangay official. Returns false if it does not exist.
func (r *BarangayOfficialRepository) Update(ctx context.Context, id int64, official *models.BarangayOfficial) (bool, error) {
	query := `
		UPDATE barangay_officials
		SET barangay_name = $1, position = $2, official_name = $3, image_url = $4, image_public_id = $5, updated_at = NOW()
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		official.BarangayName, official.Position, official.OfficialName,
		official.ImageURL, official.ImagePublicID, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return false, ErrSeatTaken
		}
		return false, fmt.Errorf("failed to update barangay official: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Delete removes a barangay official
func (r *BarangayOfficialRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM barangay_officials WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete barangay official: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
