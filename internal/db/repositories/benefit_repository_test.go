package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

var benefitCols = []string{
	"id", "type", "name", "description", "provider", "image_url", "image_public_id",
	"deleted", "created_at", "updated_at",
}

func newBenefitRepo(t *testing.T) (*BenefitRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBenefitRepository(db), mock
}

func sampleBenefitRow() *sqlmock.Rows {
	return sqlmock.NewRows(benefitCols).
		AddRow(int64(1), models.BenefitTypeDiscount, "Medicine Discount", "20% off prescriptions",
			"DOH", nil, nil, false, time.Now(), time.Now())
}

func TestBenefitListByType(t *testing.T) {
	repo, mock := newBenefitRepo(t)
	mock.ExpectQuery("FROM benefits WHERE NOT deleted AND type = \\$1").
		WithArgs(models.BenefitTypeDiscount).
		WillReturnRows(sampleBenefitRow())

	benefits, err := repo.ListByType(context.Background(), models.BenefitTypeDiscount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(benefits) != 1 {
		t.Fatalf("len(benefits) = %d, want 1", len(benefits))
	}
	if benefits[0].Name != "Medicine Discount" {
		t.Errorf("name = %q, want Medicine Discount", benefits[0].Name)
	}
}

func TestBenefitGetByID_DeletedHidden(t *testing.T) {
	repo, mock := newBenefitRepo(t)
	mock.ExpectQuery("FROM benefits WHERE id = \\$1 AND NOT deleted").
		WillReturnRows(sqlmock.NewRows(benefitCols))

	b, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b != nil {
		t.Errorf("benefit = %+v, want nil", b)
	}
}

func TestBenefitCreate(t *testing.T) {
	repo, mock := newBenefitRepo(t)
	mock.ExpectQuery("INSERT INTO benefits").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	id, err := repo.Create(context.Background(), &models.Benefit{
		Type: models.BenefitTypeFinancial,
		Name: "Financial Assistance Program",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 3 {
		t.Errorf("id = %d, want 3", id)
	}
}

func TestBenefitUpdate_DeletedRowUntouched(t *testing.T) {
	repo, mock := newBenefitRepo(t)
	mock.ExpectExec("UPDATE benefits").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Update(context.Background(), 1, &models.Benefit{
		Type: models.BenefitTypeDiscount, Name: "Medicine Discount",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("ok = true, want false")
	}
}

func TestBenefitSoftDelete(t *testing.T) {
	repo, mock := newBenefitRepo(t)
	mock.ExpectExec("UPDATE benefits SET deleted = TRUE").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.SoftDelete(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("ok = false, want true")
	}
}

func TestBenefitCountByType_ExcludesRepublicActs(t *testing.T) {
	repo, mock := newBenefitRepo(t)
	mock.ExpectQuery("GROUP BY type").
		WithArgs(models.BenefitTypeRepublicActs).
		WillReturnRows(sqlmock.NewRows([]string{"type", "count"}).
			AddRow(models.BenefitTypeDiscount, 4).
			AddRow(models.BenefitTypeFinancial, 2))

	counts, err := repo.CountByType(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts[models.BenefitTypeDiscount] != 4 {
		t.Errorf("discount count = %d, want 4", counts[models.BenefitTypeDiscount])
	}
	if counts[models.BenefitTypeFinancial] != 2 {
		t.Errorf("financial count = %d, want 2", counts[models.BenefitTypeFinancial])
	}
}
