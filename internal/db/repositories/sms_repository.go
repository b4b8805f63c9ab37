// sms_repository.go implements SMSRepository over the gateway credentials singleton,
// the delivery log, and one-time passwords. Uses sqlx struct scanning since these
// tables map cleanly onto their models.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/crypto"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

// SMSRepository handles SMS credential, log, and OTP database operations
type SMSRepository struct {
	db     *sqlx.DB
	cipher *crypto.KeyCipher
}

// NewSMSRepository creates a new SMSRepository sharing the given pool. The
// gateway API key is stored in plaintext; use NewSMSRepositoryWithCipher to
// encrypt it at rest.
func NewSMSRepository(db *sql.DB) *SMSRepository {
	return &SMSRepository{db: sqlx.NewDb(db, "postgres")}
}

// NewSMSRepositoryWithCipher creates an SMSRepository that seals the gateway
// API key before writing it and opens it on read
func NewSMSRepositoryWithCipher(db *sql.DB, cipher *crypto.KeyCipher) *SMSRepository {
	return &SMSRepository{db: sqlx.NewDb(db, "postgres"), cipher: cipher}
}

// GetCredentials returns the singleton credential row, or nil when none has
// been configured yet
func (r *SMSRepository) GetCredentials(ctx context.Context) (*models.SMSCredentials, error) {
	creds := &models.SMSCredentials{}
	err := r.db.GetContext(ctx, creds,
		`SELECT id, api_key, sender_name, updated_at FROM sms_credentials WHERE id = 1`)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sms credentials: %w", err)
	}
	if r.cipher != nil {
		key, err := r.cipher.Open(creds.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt sms api key: %w", err)
		}
		creds.APIKey = key
	}
	return creds, nil
}

// UpsertCredentials writes the singleton credential row and reports whether a
// new row was inserted (true) or an existing one updated (false)
func (r *SMSRepository) UpsertCredentials(ctx context.Context, apiKey, senderName string) (inserted bool, err error) {
	if r.cipher != nil {
		apiKey, err = r.cipher.Seal(apiKey)
		if err != nil {
			return false, fmt.Errorf("failed to encrypt sms api key: %w", err)
		}
	}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO sms_credentials (id, api_key, sender_name, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET api_key = $1, sender_name = $2, updated_at = NOW()
		RETURNING (xmax = 0)
	`, apiKey, senderName).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert sms credentials: %w", err)
	}
	return inserted, nil
}

// CreateLog appends one delivery outcome row
func (r *SMSRepository) CreateLog(ctx context.Context, log *models.SMSLog) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sms_logs (recipient, message, status, reference_id, credit_used)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, log.Recipient, log.Message, log.Status, log.ReferenceID, log.CreditUsed).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create sms log: %w", err)
	}
	return nil
}

// ListLogs returns a page of delivery records, newest first, plus the total
func (r *SMSRepository) ListLogs(ctx context.Context, limit, offset int) ([]*models.SMSLog, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM sms_logs`); err != nil {
		return nil, 0, fmt.Errorf("failed to count sms logs: %w", err)
	}

	logs := make([]*models.SMSLog, 0)
	err := r.db.SelectContext(ctx, &logs, `
		SELECT id, recipient, message, status, reference_id, credit_used, created_at
		FROM sms_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sms logs: %w", err)
	}

	return logs, total, nil
}

// DeleteLog removes one delivery record
func (r *SMSRepository) DeleteLog(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sms_logs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete sms log: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CreateOTP stores a freshly generated code
func (r *SMSRepository) CreateOTP(ctx context.Context, otp *models.OTPCode) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO otp_codes (mobile, otp, purpose, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, otp.Mobile, otp.OTP, otp.Purpose, otp.ExpiresAt).Scan(&otp.ID, &otp.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create otp: %w", err)
	}
	return nil
}

// ConsumeOTP atomically matches an unused, unexpired code on (mobile, otp,
// purpose) and marks it used. Returns false when nothing matched, with no
// indication of why.
func (r *SMSRepository) ConsumeOTP(ctx context.Context, mobile, code, purpose string, now time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE otp_codes
		SET used = TRUE
		WHERE mobile = $1 AND otp = $2 AND purpose = $3 AND NOT used AND expires_at > $4
	`, mobile, code, purpose, now)
	if err != nil {
		return false, fmt.Errorf("failed to verify otp: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteExpiredOTPs removes used or expired codes, returning the count removed
func (r *SMSRepository) DeleteExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM otp_codes WHERE used OR expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired otps: %w", err)
	}
	return result.RowsAffected()
}
