// citizen_repository.go implements CitizenRepository, the store behind the senior
// citizen registry. Fixed identity columns live beside a JSONB form document; age and
// gender are derived from that document at query time against the repository clock, so
// a record read after a birthday reports the new age without any write having happened.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

// ErrDuplicateCitizen is returned when an insert collides with the identity
// index on (first name, last name, birthdate) among non-deleted rows. The
// in-service pre-check catches most duplicates first; this covers the race
// where two identical creates pass the pre-check concurrently.
var ErrDuplicateCitizen = errors.New("citizen with the same name and birthdate already exists")

// ageExpr derives the citizen's age in full years from the form document's
// birthdate, relative to the reference time bound as $1. Rows without a
// parseable birthdate yield NULL.
const ageExpr = `DATE_PART('year', AGE($1::timestamptz, (sc.form_data->>'birthdate')::date))::INT`

// citizenSortColumns maps caller-facing sort keys to ORDER BY expressions.
// Unlisted keys fall back to last name ascending.
var citizenSortColumns = map[string]string{
	"lastName":      "sc.last_name",
	"firstName":     "sc.first_name",
	"gender":        "sc.form_data->>'gender'",
	"age":           "age",
	"created_at":    "sc.created_at",
	"barangay_name": "b.name",
}

// CitizenRepository handles senior citizen database operations
type CitizenRepository struct {
	db *sql.DB

	// now supplies the reference time for age derivation; overridable in tests
	// to pin age computations across birthday boundaries.
	now func() time.Time
}

// NewCitizenRepository creates a new CitizenRepository
func NewCitizenRepository(db *sql.DB) *CitizenRepository {
	return &CitizenRepository{db: db, now: time.Now}
}

// CitizenListOptions contains filters for the paginated citizen listing
type CitizenListOptions struct {
	Page         int
	Limit        int
	Search       string
	Barangay     string
	BarangayID   *int64
	Gender       string
	AgeRange     string
	HealthStatus string
	SortBy       string
	SortOrder    string
}

// parseAgeRange turns a bucket label like "60 - 69" or "80+" into inclusive
// bounds. The open-ended bucket uses 200 as its ceiling.
func parseAgeRange(s string) (min, max int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}
	if strings.HasSuffix(s, "+") {
		min, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "+")))
		if err != nil {
			return 0, 0, false
		}
		return min, 200, true
	}
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	min, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	max, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return min, max, true
}

// FindDuplicate returns the non-deleted citizen matching the identity key
// (case-insensitive names plus birthdate), or nil when there is none
func (r *CitizenRepository) FindDuplicate(ctx context.Context, firstName, lastName, birthdate string) (*models.SeniorCitizen, error) {
	query := `
		SELECT sc.id, sc.first_name, sc.last_name
		FROM senior_citizens sc
		WHERE LOWER(sc.first_name) = LOWER($1)
		  AND LOWER(sc.last_name) = LOWER($2)
		  AND sc.form_data->>'birthdate' = $3
		  AND NOT sc.deleted
	`

	citizen := &models.SeniorCitizen{}
	err := r.db.QueryRowContext(ctx, query, firstName, lastName, birthdate).Scan(
		&citizen.ID,
		&citizen.FirstName,
		&citizen.LastName,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate citizen: %w", err)
	}

	return citizen, nil
}

// Create inserts a new citizen record and returns its ID
func (r *CitizenRepository) Create(ctx context.Context, citizen *models.SeniorCitizen) (int64, error) {
	formJSON, err := json.Marshal(citizen.FormData)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize form data: %w", err)
	}

	query := `
		INSERT INTO senior_citizens (first_name, last_name, middle_name, suffix, barangay_id, form_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err = r.db.QueryRowContext(ctx, query,
		citizen.FirstName,
		citizen.LastName,
		citizen.MiddleName,
		citizen.Suffix,
		citizen.BarangayID,
		formJSON,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, ErrDuplicateCitizen
		}
		return 0, fmt.Errorf("failed to create citizen: %w", err)
	}

	return id, nil
}

// GetByID returns one citizen with derived age and gender, or nil if not found
func (r *CitizenRepository) GetByID(ctx context.Context, id int64) (*models.SeniorCitizen, error) {
	query := `
		SELECT sc.id, sc.first_name, sc.last_name, sc.middle_name, sc.suffix,
		       sc.barangay_id, b.name, sc.form_data, ` + ageExpr + ` AS age,
		       sc.form_data->>'gender' AS gender,
		       sc.deleted, sc.deleted_at, sc.created_at, sc.updated_at
		FROM senior_citizens sc
		LEFT JOIN barangays b ON b.id = sc.barangay_id
		WHERE sc.id = $2
	`

	citizen, err := r.scanCitizen(r.db.QueryRowContext(ctx, query, r.now(), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get citizen: %w", err)
	}

	return citizen, nil
}

// Update overwrites the mutable fields of a non-deleted citizen. Returns false
// when the target row is missing or already soft-deleted.
func (r *CitizenRepository) Update(ctx context.Context, id int64, citizen *models.SeniorCitizen) (bool, error) {
	formJSON, err := json.Marshal(citizen.FormData)
	if err != nil {
		return false, fmt.Errorf("failed to serialize form data: %w", err)
	}

	query := `
		UPDATE senior_citizens
		SET first_name = $1, last_name = $2, middle_name = $3, suffix = $4,
		    barangay_id = $5, form_data = $6, updated_at = NOW()
		WHERE id = $7 AND NOT deleted
	`

	result, err := r.db.ExecContext(ctx, query,
		citizen.FirstName,
		citizen.LastName,
		citizen.MiddleName,
		citizen.Suffix,
		citizen.BarangayID,
		formJSON,
		id,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return false, ErrDuplicateCitizen
		}
		return false, fmt.Errorf("failed to update citizen: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// List returns the paginated, filtered set of active citizens plus the total
// matching count. Only non-deleted rows aged 60 or over are eligible.
func (r *CitizenRepository) List(ctx context.Context, opts CitizenListOptions) ([]*models.SeniorCitizen, int, error) {
	base := `
		FROM senior_citizens sc
		LEFT JOIN barangays b ON b.id = sc.barangay_id
		WHERE NOT sc.deleted AND ` + ageExpr + ` >= 60
	`

	args := []interface{}{r.now()}
	paramIndex := 2

	if opts.Search != "" {
		base += fmt.Sprintf(` AND (sc.first_name ILIKE $%d OR sc.last_name ILIKE $%d OR sc.middle_name ILIKE $%d OR b.name ILIKE $%d)`,
			paramIndex, paramIndex, paramIndex, paramIndex)
		args = append(args, "%"+opts.Search+"%")
		paramIndex++
	}

	if opts.BarangayID != nil {
		base += fmt.Sprintf(` AND sc.barangay_id = $%d`, paramIndex)
		args = append(args, *opts.BarangayID)
		paramIndex++
	} else if opts.Barangay != "" {
		base += fmt.Sprintf(` AND b.name = $%d`, paramIndex)
		args = append(args, opts.Barangay)
		paramIndex++
	}

	if opts.Gender != "" {
		base += fmt.Sprintf(` AND sc.form_data->>'gender' = $%d`, paramIndex)
		args = append(args, opts.Gender)
		paramIndex++
	}

	if min, max, ok := parseAgeRange(opts.AgeRange); ok {
		base += fmt.Sprintf(` AND `+ageExpr+` BETWEEN $%d AND $%d`, paramIndex, paramIndex+1)
		args = append(args, min, max)
		paramIndex += 2
	}

	if opts.HealthStatus != "" {
		base += fmt.Sprintf(` AND sc.form_data->>'healthStatus' = $%d`, paramIndex)
		args = append(args, opts.HealthStatus)
		paramIndex++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) `+base, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count citizens: %w", err)
	}

	sortColumn, ok := citizenSortColumns[opts.SortBy]
	if !ok {
		sortColumn = "sc.last_name"
	}
	direction := "ASC"
	if strings.EqualFold(opts.SortOrder, "desc") {
		direction = "DESC"
	}

	query := `
		SELECT sc.id, sc.first_name, sc.last_name, sc.middle_name, sc.suffix,
		       sc.barangay_id, b.name, sc.form_data, ` + ageExpr + ` AS age,
		       sc.form_data->>'gender' AS gender,
		       sc.deleted, sc.deleted_at, sc.created_at, sc.updated_at
	` + base + fmt.Sprintf(` ORDER BY %s %s LIMIT $%d OFFSET $%d`, sortColumn, direction, paramIndex, paramIndex+1)

	limit := opts.Limit
	if limit < 1 {
		limit = 10
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list citizens: %w", err)
	}
	defer rows.Close()

	citizens := make([]*models.SeniorCitizen, 0)
	for rows.Next() {
		citizen, err := r.scanCitizen(rows)
		if err != nil {
			return nil, 0, err
		}
		citizens = append(citizens, citizen)
	}

	return citizens, total, rows.Err()
}

// Count returns the number of active citizens aged 60 or over
func (r *CitizenRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM senior_citizens sc WHERE NOT sc.deleted AND ` + ageExpr + ` >= 60`

	var count int
	if err := r.db.QueryRowContext(ctx, query, r.now()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count citizens: %w", err)
	}
	return count, nil
}

// SoftDelete hides a record without removing it. Returns false if the row is
// missing or already soft-deleted.
func (r *CitizenRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE senior_citizens SET deleted = TRUE, deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND NOT deleted`, id)
	if err != nil {
		return false, fmt.Errorf("failed to soft delete citizen: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Restore brings a soft-deleted record back. Returns false if the row is
// missing or not currently deleted. A restore that would recreate a duplicate
// identity fails with ErrDuplicateCitizen.
func (r *CitizenRepository) Restore(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE senior_citizens SET deleted = FALSE, deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return false, ErrDuplicateCitizen
		}
		return false, fmt.Errorf("failed to restore citizen: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// PermanentDelete irreversibly removes a record
func (r *CitizenRepository) PermanentDelete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM senior_citizens WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to permanently delete citizen: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListDeleted returns all soft-deleted records, most recently deleted first
func (r *CitizenRepository) ListDeleted(ctx context.Context) ([]*models.SeniorCitizen, error) {
	query := `
		SELECT sc.id, sc.first_name, sc.last_name, sc.middle_name, sc.suffix,
		       sc.barangay_id, b.name, sc.form_data, ` + ageExpr + ` AS age,
		       sc.form_data->>'gender' AS gender,
		       sc.deleted, sc.deleted_at, sc.created_at, sc.updated_at
		FROM senior_citizens sc
		LEFT JOIN barangays b ON b.id = sc.barangay_id
		WHERE sc.deleted
		ORDER BY sc.deleted_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, r.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list deleted citizens: %w", err)
	}
	defer rows.Close()

	citizens := make([]*models.SeniorCitizen, 0)
	for rows.Next() {
		citizen, err := r.scanCitizen(rows)
		if err != nil {
			return nil, err
		}
		citizens = append(citizens, citizen)
	}

	return citizens, rows.Err()
}

// SMSRecipients resolves contact numbers for active citizens, preferring the
// mobile number and falling back to the emergency contact number. Citizens
// with neither are excluded. A barangay ID filter takes precedence over a
// barangay name filter when both are given.
func (r *CitizenRepository) SMSRecipients(ctx context.Context, barangayName string, barangayID *int64, search string) ([]*models.SMSRecipient, error) {
	query := `
		SELECT sc.id, sc.first_name, sc.last_name, b.name,
		       COALESCE(NULLIF(sc.form_data->>'mobileNumber', ''), NULLIF(sc.form_data->>'emergencyContactNumber', '')) AS number
		FROM senior_citizens sc
		LEFT JOIN barangays b ON b.id = sc.barangay_id
		WHERE NOT sc.deleted AND ` + ageExpr + ` >= 60
		  AND COALESCE(NULLIF(sc.form_data->>'mobileNumber', ''), NULLIF(sc.form_data->>'emergencyContactNumber', '')) IS NOT NULL
	`

	args := []interface{}{r.now()}
	paramIndex := 2

	if barangayID != nil {
		query += fmt.Sprintf(` AND sc.barangay_id = $%d`, paramIndex)
		args = append(args, *barangayID)
		paramIndex++
	} else if barangayName != "" {
		query += fmt.Sprintf(` AND b.name = $%d`, paramIndex)
		args = append(args, barangayName)
		paramIndex++
	}

	if search != "" {
		query += fmt.Sprintf(` AND (sc.first_name ILIKE $%d OR sc.last_name ILIKE $%d)`, paramIndex, paramIndex)
		args = append(args, "%"+search+"%")
		paramIndex++
	}

	query += ` ORDER BY sc.last_name, sc.first_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sms recipients: %w", err)
	}
	defer rows.Close()

	recipients := make([]*models.SMSRecipient, 0)
	for rows.Next() {
		rec := &models.SMSRecipient{}
		if err := rows.Scan(&rec.ID, &rec.FirstName, &rec.LastName, &rec.BarangayName, &rec.Number); err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}

	return recipients, rows.Err()
}

// CountByBarangay returns the active citizen count per barangay, largest first
func (r *CitizenRepository) CountByBarangay(ctx context.Context) ([]*models.BarangayCount, error) {
	query := `
		SELECT b.name, COUNT(sc.id) AS count
		FROM barangays b
		LEFT JOIN senior_citizens sc ON sc.barangay_id = b.id AND NOT sc.deleted
		GROUP BY b.name
		ORDER BY count DESC, b.name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count citizens by barangay: %w", err)
	}
	defer rows.Close()

	counts := make([]*models.BarangayCount, 0)
	for rows.Next() {
		bc := &models.BarangayCount{}
		if err := rows.Scan(&bc.BarangayName, &bc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, bc)
	}

	return counts, rows.Err()
}

// PurgeSoftDeletedBefore permanently removes a bounded batch of soft-deleted
// rows whose deletion predates the cutoff. The batch limit keeps the sweep
// from holding long-lived locks against live traffic; callers loop until the
// returned count is zero.
func (r *CitizenRepository) PurgeSoftDeletedBefore(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	query := `
		DELETE FROM senior_citizens
		WHERE id IN (
			SELECT id FROM senior_citizens
			WHERE deleted AND deleted_at < $1
			ORDER BY deleted_at
			LIMIT $2
		)
	`

	result, err := r.db.ExecContext(ctx, query, cutoff, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to purge soft-deleted citizens: %w", err)
	}
	return result.RowsAffected()
}

// citizenScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type citizenScanner interface {
	Scan(dest ...interface{}) error
}

func (r *CitizenRepository) scanCitizen(row citizenScanner) (*models.SeniorCitizen, error) {
	citizen := &models.SeniorCitizen{}
	var formJSON []byte

	err := row.Scan(
		&citizen.ID,
		&citizen.FirstName,
		&citizen.LastName,
		&citizen.MiddleName,
		&citizen.Suffix,
		&citizen.BarangayID,
		&citizen.BarangayName,
		&formJSON,
		&citizen.Age,
		&citizen.Gender,
		&citizen.Deleted,
		&citizen.DeletedAt,
		&citizen.CreatedAt,
		&citizen.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if formJSON != nil {
		if err := json.Unmarshal(formJSON, &citizen.FormData); err != nil {
			return nil, fmt.Errorf("failed to decode form data: %w", err)
		}
	}

	return citizen, nil
}
