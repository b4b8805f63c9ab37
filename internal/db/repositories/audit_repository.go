// audit_repository.go implements AuditRepository, the append-and-query store for the
// audit trail. Entries are immutable once written; nothing in the application updates
// or deletes them.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

// AuditRepository handles audit log database operations
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// AuditFilters contains filters for querying audit logs
type AuditFilters struct {
	Search    *string
	Username  *string
	UserRole  *string
	Action    *string
	SortBy    string
	SortOrder string
}

// auditSortColumns maps the caller-facing sort keys to real columns. Anything
// not listed here silently falls back to the timestamp.
var auditSortColumns = map[string]string{
	"timestamp": "created_at",
	"user":      "username",
	"action":    "action",
	"userRole":  "user_role",
}

// Create appends one audit log entry
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (user_id, username, user_role, action, details, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		entry.UserID,
		entry.Username,
		entry.UserRole,
		entry.Action,
		entry.Details,
		entry.IPAddress,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

// List retrieves audit logs with optional filters and pagination
func (r *AuditRepository) List(ctx context.Context, filters AuditFilters, limit, offset int) ([]*models.AuditLog, int, error) {
	countQuery := `SELECT COUNT(*) FROM audit_logs WHERE 1=1`
	query := `
		SELECT id, user_id, username, user_role, action, details, ip_address, created_at
		FROM audit_logs
		WHERE 1=1
	`

	args := make([]interface{}, 0)
	paramIndex := 1

	if filters.Search != nil && *filters.Search != "" {
		clause := fmt.Sprintf(` AND (username ILIKE $%d OR action ILIKE $%d OR details ILIKE $%d)`,
			paramIndex, paramIndex, paramIndex)
		countQuery += clause
		query += clause
		args = append(args, "%"+*filters.Search+"%")
		paramIndex++
	}

	if filters.Username != nil && *filters.Username != "" {
		countQuery += fmt.Sprintf(` AND username = $%d`, paramIndex)
		query += fmt.Sprintf(` AND username = $%d`, paramIndex)
		args = append(args, *filters.Username)
		paramIndex++
	}

	if filters.UserRole != nil && *filters.UserRole != "" {
		countQuery += fmt.Sprintf(` AND user_role = $%d`, paramIndex)
		query += fmt.Sprintf(` AND user_role = $%d`, paramIndex)
		args = append(args, *filters.UserRole)
		paramIndex++
	}

	if filters.Action != nil && *filters.Action != "" {
		countQuery += fmt.Sprintf(` AND action = $%d`, paramIndex)
		query += fmt.Sprintf(` AND action = $%d`, paramIndex)
		args = append(args, *filters.Action)
		paramIndex++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	sortColumn, ok := auditSortColumns[filters.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	direction := "ASC"
	if normalizeSortOrder(filters.SortOrder) {
		direction = "DESC"
	}

	query += fmt.Sprintf(` ORDER BY %s %s LIMIT $%d OFFSET $%d`, sortColumn, direction, paramIndex, paramIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*models.AuditLog, 0)
	for rows.Next() {
		entry := &models.AuditLog{}
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Username,
			&entry.UserRole,
			&entry.Action,
			&entry.Details,
			&entry.IPAddress,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, entry)
	}

	return logs, total, rows.Err()
}

// ListFilters returns the distinct actor names and actions present in the log,
// used to populate the UI filter dropdowns
func (r *AuditRepository) ListFilters(ctx context.Context) (users []string, actions []string, err error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT username FROM audit_logs ORDER BY username`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list audit users: %w", err)
	}
	defer rows.Close()

	users = make([]string, 0)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	actionRows, err := r.db.QueryContext(ctx, `SELECT DISTINCT action FROM audit_logs ORDER BY action`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list audit actions: %w", err)
	}
	defer actionRows.Close()

	actions = make([]string, 0)
	for actionRows.Next() {
		var a string
		if err := actionRows.Scan(&a); err != nil {
			return nil, nil, err
		}
		actions = append(actions, a)
	}

	return users, actions, actionRows.Err()
}

// ListLoginTrails returns all LOGIN entries for a user, newest first
func (r *AuditRepository) ListLoginTrails(ctx context.Context, userID int64) ([]*models.AuditLog, error) {
	query := `
		SELECT id, user_id, username, user_role, action, details, ip_address, created_at
		FROM audit_logs
		WHERE user_id = $1 AND action = $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, models.ActionLogin)
	if err != nil {
		return nil, fmt.Errorf("failed to list login trails: %w", err)
	}
	defer rows.Close()

	logs := make([]*models.AuditLog, 0)
	for rows.Next() {
		entry := &models.AuditLog{}
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Username,
			&entry.UserRole,
			&entry.Action,
			&entry.Details,
			&entry.IPAddress,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}

	return logs, rows.Err()
}

// DeleteOlderThan removes entries past a retention horizon. Called by the
// audit prune background job, never from a request path.
func (r *AuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit logs: %w", err)
	}
	return result.RowsAffected()
}

// normalizeSortOrder parses a caller-supplied sort order string; anything other
// than an explicit ascending marker sorts descending, matching the UI default.
func normalizeSortOrder(order string) bool {
	switch strings.ToLower(order) {
	case "asc", "ascending":
		return false
	default:
		return true
	}
}
