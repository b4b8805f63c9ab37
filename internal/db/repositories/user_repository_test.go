package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

// ---------------------------------------------------------------------------
// Column definitions
// ---------------------------------------------------------------------------

var userCols = []string{
	"id", "username", "email", "password", "cp_number", "role", "status", "blocked",
	"last_login", "last_logout", "image_url", "image_public_id", "created_at", "updated_at",
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(db), mock
}

func sampleUserRow() *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow(int64(1), "admin", "admin@example.com", "$2a$10$hash", "09171234567",
			"admin", models.UserStatusInactive, false,
			nil, nil, nil, nil, time.Now(), time.Now())
}

// ---------------------------------------------------------------------------
// GetByID / GetByEmail
// ---------------------------------------------------------------------------

func TestUserGetByID_Found(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(sampleUserRow())

	user, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || user.Email != "admin@example.com" {
		t.Errorf("user = %+v, want admin@example.com", user)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WillReturnRows(sqlmock.NewRows(userCols))

	user, err := repo.GetByID(context.Background(), 404)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("user = %+v, want nil", user)
	}
}

func TestUserGetByEmail_CaseInsensitive(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery(`LOWER\(email\) = LOWER`).
		WithArgs("Admin@Example.com").
		WillReturnRows(sampleUserRow())

	user, err := repo.GetByEmail(context.Background(), "Admin@Example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil {
		t.Fatal("user = nil, want record")
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestUserCreate_Success(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("staff1", "staff1@example.com", "$2a$10$hash", "09170000000", "staff").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))

	id, err := repo.Create(context.Background(), &models.User{
		Username: "staff1",
		Email:    "staff1@example.com",
		Password: "$2a$10$hash",
		CPNumber: strPtr("09170000000"),
		Role:     "staff",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 2 {
		t.Errorf("id = %d, want 2", id)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(dupErr())

	_, err := repo.Create(context.Background(), &models.User{Username: "staff1", Email: "staff1@example.com"})
	if !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("err = %v, want ErrDuplicateUser", err)
	}
}

// ---------------------------------------------------------------------------
// Profile updates
// ---------------------------------------------------------------------------

func TestUpdateProfile_Success(t *testing.T) {
	repo, mock := newUserRepo(t)
	cp := "09179999999"
	mock.ExpectExec("UPDATE users SET username").
		WithArgs("renamed", &cp, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.UpdateProfile(context.Background(), 1, "renamed", &cp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("ok = false, want true")
	}
}

func TestUpdateProfile_DuplicateContactNumber(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("UPDATE users SET username").
		WillReturnError(dupErr())

	_, err := repo.UpdateProfile(context.Background(), 1, "renamed", nil)
	if !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("err = %v, want ErrDuplicateUser", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("UPDATE users SET password").
		WithArgs("$2a$10$newhash", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.UpdatePassword(context.Background(), 1, "$2a$10$newhash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("ok = false, want true")
	}
}

func TestUpdateImage_ReturnsPreviousPublicID(t *testing.T) {
	repo, mock := newUserRepo(t)
	url := "https://cdn.example.com/avatars/new.png"
	publicID := "avatars/new"
	mock.ExpectQuery("UPDATE users u SET image_url").
		WithArgs(&url, &publicID, int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"image_public_id"}).AddRow("avatars/old"))

	previous, err := repo.UpdateImage(context.Background(), 1, &url, &publicID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if previous == nil || *previous != "avatars/old" {
		t.Errorf("previous = %v, want avatars/old", previous)
	}
}

func TestUpdateImage_UserMissing(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("UPDATE users u SET image_url").
		WillReturnRows(sqlmock.NewRows([]string{"image_public_id"}))

	previous, err := repo.UpdateImage(context.Background(), 404, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if previous != nil {
		t.Errorf("previous = %v, want nil", previous)
	}
}

// ---------------------------------------------------------------------------
// Status bookkeeping
// ---------------------------------------------------------------------------

func TestRecordLogin(t *testing.T) {
	repo, mock := newUserRepo(t)
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE users SET status").
		WithArgs(models.UserStatusActive, at, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.RecordLogin(context.Background(), 1, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecordLogout(t *testing.T) {
	repo, mock := newUserRepo(t)
	at := time.Date(2024, 6, 1, 17, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE users SET status").
		WithArgs(models.UserStatusInactive, at, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.RecordLogout(context.Background(), 1, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetBlocked(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("UPDATE users SET blocked").
		WithArgs(true, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.SetBlocked(context.Background(), 1, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("ok = false, want true")
	}
}

// ---------------------------------------------------------------------------
// List / Count / Delete
// ---------------------------------------------------------------------------

func TestUserList(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("FROM users ORDER BY username").
		WillReturnRows(sampleUserRow())

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("len(users) = %d, want 1", len(users))
	}
}

func TestUserCount_DBError(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT COUNT").
		WillReturnError(errDB)

	if _, err := repo.Count(context.Background()); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestUserDelete_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("DELETE FROM users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Delete(context.Background(), 404)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("ok = true, want false")
	}
}
