package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

var errDB = errors.New("db error")

// ---------------------------------------------------------------------------
// Column definitions
// ---------------------------------------------------------------------------

var auditCols = []string{
	"id", "user_id", "username", "user_role", "action", "details", "ip_address", "created_at",
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newAuditRepo(t *testing.T) (*AuditRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAuditRepository(db), mock
}

func sampleAuditRow() *sqlmock.Rows {
	return sqlmock.NewRows(auditCols).
		AddRow(int64(1), int64(7), "admin", "Admin", "CREATE",
			"Added senior citizen 'Ana Reyes'.", "127.0.0.1", time.Now())
}

func int64Ptr(i int64) *int64 { return &i }
func strPtr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestAuditCreate_Success(t *testing.T) {
	repo, mock := newAuditRepo(t)
	mock.ExpectQuery("INSERT INTO audit_logs").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	entry := &models.AuditLog{
		UserID:    int64Ptr(7),
		Username:  "admin",
		UserRole:  "Admin",
		Action:    models.ActionCreate,
		Details:   "Added senior citizen 'Ana Reyes'.",
		IPAddress: "127.0.0.1",
	}
	if err := repo.Create(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID != 1 {
		t.Errorf("entry.ID = %d, want 1", entry.ID)
	}
}

func TestAuditCreate_DBError(t *testing.T) {
	repo, mock := newAuditRepo(t)
	mock.ExpectQuery("INSERT INTO audit_logs").
		WillReturnError(errDB)

	entry := &models.AuditLog{Username: "admin", UserRole: "Admin", Action: models.ActionCreate}
	if err := repo.Create(context.Background(), entry); err == nil {
		t.Error("expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestAuditList_NoFilters(t *testing.T) {
	repo, mock := newAuditRepo(t)
	mock.ExpectQuery("SELECT COUNT.*FROM audit_logs").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT id.*FROM audit_logs").
		WillReturnRows(sampleAuditRow())

	logs, total, err := repo.List(context.Background(), AuditFilters{}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
	if len(logs) != 1 {
		t.Errorf("len(logs) = %d, want 1", len(logs))
	}
}

func TestAuditList_WithFilters(t *testing.T) {
	repo, mock := newAuditRepo(t)
	mock.ExpectQuery("SELECT COUNT.*FROM audit_logs").
		WithArgs("%reyes%", "admin", "Admin", "CREATE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT id.*FROM audit_logs").
		WillReturnRows(sqlmock.NewRows(auditCols))

	logs, total, err := repo.List(context.Background(), AuditFilters{
		Search:   strPtr("reyes"),
		Username: strPtr("admin"),
		UserRole: strPtr("Admin"),
		Action:   strPtr("CREATE"),
	}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
	if len(logs) != 0 {
		t.Errorf("len(logs) = %d, want 0", len(logs))
	}
}

func TestAuditList_UnknownSortFallsBackToTimestamp(t *testing.T) {
	repo, mock := newAuditRepo(t)
	mock.ExpectQuery("SELECT COUNT.*FROM audit_logs").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WillReturnRows(sampleAuditRow())

	if _, _, err := repo.List(context.Background(), AuditFilters{SortBy: "evil_column"}, 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuditList_SortByUserAscending(t *testing.T) {
	repo, mock := newAuditRepo(t)
	mock.ExpectQuery("SELECT COUNT.*FROM audit_logs").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY username ASC`).
		WillReturnRows(sampleAuditRow())

	if _, _, err := repo.List(context.Background(), AuditFilters{SortBy: "user", SortOrder: "asc"}, 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuditList_CountError(t *testing.T) {
	repo, mock := newAuditRepo(t)
	mock.ExpectQuery("SELECT COUNT.*FROM audit_logs").
		WillReturnError(errDB)

	if _, _, err := repo.List(context.Background(), AuditFilters{}, 10, 0); err == nil {
		t.Error("expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// ListFilters
// ---------------------------------------------------------------------------

func TestAuditListFilters(t *testing.T) {
	repo, mock := newAuditRepo(t)
	mock.ExpectQuery("SELECT DISTINCT username").
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("admin").AddRow("staff1"))
	mock.ExpectQuery("SELECT DISTINCT action").
		WillReturnRows(sqlmock.NewRows([]string{"action"}).AddRow("CREATE").AddRow("LOGIN"))

	users, actions, err := repo.ListFilters(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("len(users) = %d, want 2", len(users))
	}
	if len(actions) != 2 {
		t.Errorf("len(actions) = %d, want 2", len(actions))
	}
}

// ---------------------------------------------------------------------------
// ListLoginTrails
// ---------------------------------------------------------------------------

func TestAuditListLoginTrails(t *testing.T) {
	repo, mock := newAuditRepo(t)
	mock.ExpectQuery("SELECT id.*FROM audit_logs").
		WithArgs(int64(7), models.ActionLogin).
		WillReturnRows(sampleAuditRow())

	logs, err := repo.ListLoginTrails(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("len(logs) = %d, want 1", len(logs))
	}
}

func TestAuditListLoginTrails_Empty(t *testing.T) {
	repo, mock := newAuditRepo(t)
	mock.ExpectQuery("SELECT id.*FROM audit_logs").
		WillReturnRows(sqlmock.NewRows(auditCols))

	logs, err := repo.ListLoginTrails(context.Background(), 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("len(logs) = %d, want 0", len(logs))
	}
}
