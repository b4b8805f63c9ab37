package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

var positionCols = []string{"id", "name", "type", "created_at", "updated_at"}

func newPositionRepo(t *testing.T) (*PositionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPositionRepository(db), mock
}

func TestPositionList_All(t *testing.T) {
	repo, mock := newPositionRepo(t)
	mock.ExpectQuery("FROM positions ORDER BY name").
		WillReturnRows(sqlmock.NewRows(positionCols).
			AddRow(int64(1), "Barangay Captain", "barangay", time.Now(), time.Now()).
			AddRow(int64(2), "Municipal Mayor", "municipal", time.Now(), time.Now()))

	positions, err := repo.List(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 2 {
		t.Errorf("len(positions) = %d, want 2", len(positions))
	}
}

func TestPositionList_FilteredByType(t *testing.T) {
	repo, mock := newPositionRepo(t)
	mock.ExpectQuery("FROM positions WHERE type = \\$1 ORDER BY name").
		WithArgs("barangay").
		WillReturnRows(sqlmock.NewRows(positionCols).
			AddRow(int64(1), "Barangay Captain", "barangay", time.Now(), time.Now()))

	positions, err := repo.List(context.Background(), "barangay")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 1 {
		t.Errorf("len(positions) = %d, want 1", len(positions))
	}
}

func TestPositionGetByNameAndType_NotFound(t *testing.T) {
	repo, mock := newPositionRepo(t)
	mock.ExpectQuery(`LOWER\(name\) = LOWER`).
		WithArgs("Treasurer", "municipal").
		WillReturnRows(sqlmock.NewRows(positionCols))

	p, err := repo.GetByNameAndType(context.Background(), "Treasurer", "municipal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("position = %+v, want nil", p)
	}
}

func TestPositionCreate_Duplicate(t *testing.T) {
	repo, mock := newPositionRepo(t)
	mock.ExpectQuery("INSERT INTO positions").
		WillReturnError(dupErr())

	_, err := repo.Create(context.Background(), "barangay captain", "barangay")
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("err = %v, want ErrDuplicateName", err)
	}
}

func TestPositionUpdate_Success(t *testing.T) {
	repo, mock := newPositionRepo(t)
	mock.ExpectExec("UPDATE positions").
		WithArgs("Barangay Secretary", "barangay", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Update(context.Background(), 1, "Barangay Secretary", "barangay")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("ok = false, want true")
	}
}

func TestPositionDelete_NotFound(t *testing.T) {
	repo, mock := newPositionRepo(t)
	mock.ExpectExec("DELETE FROM positions").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Delete(context.Background(), 404)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("ok = true, want false")
	}
}
