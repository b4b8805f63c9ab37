// system_repository.go implements SystemRepository over the settings singleton and
// the short-lived dev keys that gate account registration.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

// SystemRepository handles system settings and dev key database operations
type SystemRepository struct {
	db *sql.DB
}

// NewSystemRepository creates a new SystemRepository
func NewSystemRepository(db *sql.DB) *SystemRepository {
	return &SystemRepository{db: db}
}

// GetSettings returns the settings singleton, or nil if it has never been
// written (the seed migration normally guarantees the row exists)
func (r *SystemRepository) GetSettings(ctx context.Context) (*models.SystemSettings, error) {
	query := `
		SELECT id, municipality, province, address, contact_email, contact_number, about,
		       seal_url, seal_public_id, updated_at
		FROM system_settings WHERE id = 1
	`

	s := &models.SystemSettings{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.ID, &s.Municipality, &s.Province, &s.Address, &s.ContactEmail,
		&s.ContactNumber, &s.About, &s.SealURL, &s.SealPublicID, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get system settings: %w", err)
	}
	return s, nil
}

// UpsertSettings writes the settings singleton
func (r *SystemRepository) UpsertSettings(ctx context.Context, s *models.SystemSettings) error {
	query := `
		INSERT INTO system_settings (id, municipality, province, address, contact_email, contact_number, about, seal_url, seal_public_id, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (id) DO UPDATE SET
			municipality = $1, province = $2, address = $3, contact_email = $4,
			contact_number = $5, about = $6, seal_url = $7, seal_public_id = $8, updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		s.Municipality, s.Province, s.Address, s.ContactEmail,
		s.ContactNumber, s.About, s.SealURL, s.SealPublicID)
	if err != nil {
		return fmt.Errorf("failed to upsert system settings: %w", err)
	}
	return nil
}

// UpdateAbout writes only the about text
func (r *SystemRepository) UpdateAbout(ctx context.Context, about string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE system_settings SET about = $1, updated_at = NOW() WHERE id = 1`, about)
	if err != nil {
		return fmt.Errorf("failed to update about text: %w", err)
	}
	return nil
}

// GetValidDevKey returns an unused dev key created within the validity window,
// or nil when none exists. Expired unused keys are swept first so they cannot
// accumulate.
func (r *SystemRepository) GetValidDevKey(ctx context.Context, validity time.Duration) (*models.DevKey, error) {
	cutoff := time.Now().Add(-validity)

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM dev_keys WHERE NOT used AND created_at < $1`, cutoff); err != nil {
		return nil, fmt.Errorf("failed to sweep expired dev keys: %w", err)
	}

	k := &models.DevKey{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, key, used, created_at
		FROM dev_keys
		WHERE NOT used AND created_at >= $1
		ORDER BY created_at DESC
		LIMIT 1
	`, cutoff).Scan(&k.ID, &k.Key, &k.Used, &k.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dev key: %w", err)
	}
	return k, nil
}

// CreateDevKey stores a freshly generated key
func (r *SystemRepository) CreateDevKey(ctx context.Context, key string) (*models.DevKey, error) {
	k := &models.DevKey{Key: key}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO dev_keys (key) VALUES ($1) RETURNING id, created_at`, key).Scan(&k.ID, &k.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create dev key: %w", err)
	}
	return k, nil
}

// ConsumeDevKey atomically matches an unused key within the validity window
// and marks it used. Returns false when the key is unknown, spent, or expired.
func (r *SystemRepository) ConsumeDevKey(ctx context.Context, key string, validity time.Duration) (bool, error) {
	cutoff := time.Now().Add(-validity)

	result, err := r.db.ExecContext(ctx,
		`UPDATE dev_keys SET used = TRUE WHERE key = $1 AND NOT used AND created_at >= $2`, key, cutoff)
	if err != nil {
		return false, fmt.Errorf("failed to consume dev key: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
