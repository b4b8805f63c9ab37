package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
)

func newCleaner(t *testing.T, interval time.Duration) (*ExpiryCleaner, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sessions := repositories.NewSessionRepository(db)
	sms := repositories.NewSMSRepository(db)
	return NewExpiryCleaner(sessions, sms, interval), mock
}

func TestRun_DeletesExpiredSessionsAndOTPs(t *testing.T) {
	cleaner, mock := newCleaner(t, time.Hour)

	mock.ExpectExec("DELETE FROM sessions WHERE expires_at").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM otp_codes").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	cleaner.run(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRun_SessionErrorDoesNotSkipOTPCleanup(t *testing.T) {
	cleaner, mock := newCleaner(t, time.Hour)

	mock.ExpectExec("DELETE FROM sessions WHERE expires_at").
		WillReturnError(errDB)
	mock.ExpectExec("DELETE FROM otp_codes").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	cleaner.run(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExpiryCleaner_ContextCancelUnblocksStart(t *testing.T) {
	cleaner, mock := newCleaner(t, time.Hour)

	mock.ExpectExec("DELETE FROM sessions WHERE expires_at").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM otp_codes").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cleaner.Start(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}
}

func TestNewExpiryCleaner_DefaultsInterval(t *testing.T) {
	cleaner, _ := newCleaner(t, 0)

	if cleaner.interval != 15*time.Minute {
		t.Errorf("expected default interval of 15m, got %v", cleaner.interval)
	}
}
