package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/repositories"
)

func newAuditPruner(t *testing.T, window, interval time.Duration) (*AuditPruner, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewAuditPruner(repositories.NewAuditRepository(db), window, interval), mock
}

// ---------------------------------------------------------------------------
// prune
// ---------------------------------------------------------------------------

func TestPrune_DeletesPastRetentionHorizon(t *testing.T) {
	pruner, mock := newAuditPruner(t, 365*24*time.Hour, time.Hour)

	mock.ExpectExec("DELETE FROM audit_logs").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 42))

	pruner.prune(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPrune_ZeroWindowDisablesSweep(t *testing.T) {
	pruner, mock := newAuditPruner(t, 0, time.Hour)

	// No expectations: a disabled pruner must never touch the database.
	pruner.prune(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPrune_DatabaseErrorIsSwallowed(t *testing.T) {
	pruner, mock := newAuditPruner(t, 365*24*time.Hour, time.Hour)

	mock.ExpectExec("DELETE FROM audit_logs").
		WillReturnError(errDB)

	pruner.prune(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Start / Stop
// ---------------------------------------------------------------------------

func TestAuditPruner_StopUnblocksStart(t *testing.T) {
	pruner, mock := newAuditPruner(t, 365*24*time.Hour, time.Hour)

	// Only the immediate first pass runs before Stop.
	mock.ExpectExec("DELETE FROM audit_logs").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	done := make(chan struct{})
	go func() {
		pruner.Start(context.Background())
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	pruner.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestNewAuditPruner_DefaultsInterval(t *testing.T) {
	pruner, _ := newAuditPruner(t, 365*24*time.Hour, 0)

	if pruner.interval != time.Hour {
		t.Errorf("expected default interval of 1h, got %v", pruner.interval)
	}
}
