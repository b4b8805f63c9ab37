package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

var templateCols = []string{"id", "name", "message", "category", "created_at", "updated_at"}

func newTemplateRepo(t *testing.T) (*TemplateRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTemplateRepository(db), mock
}

func TestTemplateList(t *testing.T) {
	repo, mock := newTemplateRepo(t)
	mock.ExpectQuery("FROM sms_templates ORDER BY name").
		WillReturnRows(sqlmock.NewRows(templateCols).
			AddRow(int64(1), "Pension Release", "Pension release on {date}.", "pension", time.Now(), time.Now()))

	templates, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("len(templates) = %d, want 1", len(templates))
	}
	if templates[0].Name != "Pension Release" {
		t.Errorf("name = %q, want Pension Release", templates[0].Name)
	}
}

func TestTemplateGetByID_NotFound(t *testing.T) {
	repo, mock := newTemplateRepo(t)
	mock.ExpectQuery("FROM sms_templates WHERE id").
		WillReturnRows(sqlmock.NewRows(templateCols))

	template, err := repo.GetByID(context.Background(), 404)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if template != nil {
		t.Errorf("template = %+v, want nil", template)
	}
}

func TestTemplateCreate(t *testing.T) {
	repo, mock := newTemplateRepo(t)
	mock.ExpectQuery("INSERT INTO sms_templates").
		WithArgs("Checkup Reminder", "Free checkup this {date}.", "health").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))

	id, err := repo.Create(context.Background(), &models.SMSTemplate{
		Name:     "Checkup Reminder",
		Message:  "Free checkup this {date}.",
		Category: strPtr("health"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 2 {
		t.Errorf("id = %d, want 2", id)
	}
}

func TestTemplateUpdate_NotFound(t *testing.T) {
	repo, mock := newTemplateRepo(t)
	mock.ExpectExec("UPDATE sms_templates").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Update(context.Background(), 404, &models.SMSTemplate{Name: "x", Message: "y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("ok = true, want false")
	}
}

func TestTemplateDelete(t *testing.T) {
	repo, mock := newTemplateRepo(t)
	mock.ExpectExec("DELETE FROM sms_templates").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Delete(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("ok = false, want true")
	}
}
