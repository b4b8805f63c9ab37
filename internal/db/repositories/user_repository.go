// user_repository.go implements UserRepository, providing account lookup, creation,
// profile updates, and login/logout status bookkeeping.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

// ErrDuplicateUser is returned when an insert or update collides with the
// unique email or contact number constraints.
var ErrDuplicateUser = errors.New("user with the same email or contact number already exists")

const userColumns = `id, username, email, password, cp_number, role, status, blocked,
	last_login, last_logout, image_url, image_public_id, created_at, updated_at`

// UserRepository handles user account database operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by ID, or nil if not found
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email, or nil if not found
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// Create inserts a new account and returns its ID
func (r *UserRepository) Create(ctx context.Context, user *models.User) (int64, error) {
	query := `
		INSERT INTO users (username, email, password, cp_number, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.Password,
		user.CPNumber,
		user.Role,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, ErrDuplicateUser
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	return id, nil
}

// UpdateProfile updates the username and contact number
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, username string, cpNumber *string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = $1, cp_number = $2, updated_at = NOW() WHERE id = $3`,
		username, cpNumber, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return false, ErrDuplicateUser
		}
		return false, fmt.Errorf("failed to update user profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return false, fmt.Errorf("failed to update user password: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateImage replaces the profile image reference and returns the previous
// public ID so the caller can release the old asset
func (r *UserRepository) UpdateImage(ctx context.Context, id int64, imageURL, imagePublicID *string) (*string, error) {
	var previous *string
	err := r.db.QueryRowContext(ctx, `
		UPDATE users u SET image_url = $1, image_public_id = $2, updated_at = NOW()
		FROM (SELECT id, image_public_id FROM users WHERE id = $3) old
		WHERE u.id = old.id
		RETURNING old.image_public_id
	`, imageURL, imagePublicID, id).Scan(&previous)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user image: %w", err)
	}
	return previous, nil
}

// SetBlocked flips the blocked flag
func (r *UserRepository) SetBlocked(ctx context.Context, id int64, blocked bool) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET blocked = $1, updated_at = NOW() WHERE id = $2`, blocked, id)
	if err != nil {
		return false, fmt.Errorf("failed to update user blocked flag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// RecordLogin marks the account active and stamps the login time
func (r *UserRepository) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = $1, last_login = $2, updated_at = NOW() WHERE id = $3`,
		models.UserStatusActive, at, id)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// RecordLogout marks the account inactive and stamps the logout time
func (r *UserRepository) RecordLogout(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = $1, last_logout = $2, updated_at = NOW() WHERE id = $3`,
		models.UserStatusInactive, at, id)
	if err != nil {
		return fmt.Errorf("failed to record logout: %w", err)
	}
	return nil
}

// Delete removes an account
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Count returns the total number of accounts
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// List returns all accounts ordered by username
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.Password,
			&user.CPNumber,
			&user.Role,
			&user.Status,
			&user.Blocked,
			&user.LastLogin,
			&user.LastLogout,
			&user.ImageURL,
			&user.ImagePublicID,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password,
		&user.CPNumber,
		&user.Role,
		&user.Status,
		&user.Blocked,
		&user.LastLogin,
		&user.LastLogout,
		&user.ImageURL,
		&user.ImagePublicID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
