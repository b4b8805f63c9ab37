package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

var eventCols = []string{
	"id", "title", "description", "type", "event_date", "image_url", "image_public_id",
	"deleted", "created_at", "updated_at",
}

func newEventRepo(t *testing.T) (*EventRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewEventRepository(db), mock
}

func sampleEventRow() *sqlmock.Rows {
	eventDate := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(eventCols).
		AddRow(int64(1), "Elderly Week", "Annual celebration", models.EventTypeEvent,
			eventDate, nil, nil, false, time.Now(), time.Now())
}

func TestEventListByType(t *testing.T) {
	repo, mock := newEventRepo(t)
	mock.ExpectQuery("FROM events WHERE NOT deleted AND type = \\$1 ORDER BY created_at DESC").
		WithArgs(models.EventTypeSlideshow).
		WillReturnRows(sqlmock.NewRows(eventCols))

	events, err := repo.ListByType(context.Background(), models.EventTypeSlideshow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0", len(events))
	}
}

func TestEventListLatest(t *testing.T) {
	repo, mock := newEventRepo(t)
	mock.ExpectQuery("ORDER BY created_at DESC LIMIT \\$2").
		WithArgs(models.EventTypeEvent, 5).
		WillReturnRows(sampleEventRow())

	events, err := repo.ListLatest(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Title != "Elderly Week" {
		t.Errorf("title = %q, want Elderly Week", events[0].Title)
	}
}

func TestEventGetByID_DeletedHidden(t *testing.T) {
	repo, mock := newEventRepo(t)
	mock.ExpectQuery("FROM events WHERE id = \\$1 AND NOT deleted").
		WillReturnRows(sqlmock.NewRows(eventCols))

	e, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e != nil {
		t.Errorf("event = %+v, want nil", e)
	}
}

func TestEventCreate(t *testing.T) {
	repo, mock := newEventRepo(t)
	mock.ExpectQuery("INSERT INTO events").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := repo.Create(context.Background(), &models.Event{
		Title: "Medical Mission",
		Type:  models.EventTypeEvent,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 {
		t.Errorf("id = %d, want 7", id)
	}
}

func TestEventSoftDelete_AlreadyDeleted(t *testing.T) {
	repo, mock := newEventRepo(t)
	mock.ExpectExec("UPDATE events SET deleted = TRUE").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.SoftDelete(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("ok = true, want false")
	}
}

func TestEventCount(t *testing.T) {
	repo, mock := newEventRepo(t)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(models.EventTypeEvent).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 6 {
		t.Errorf("count = %d, want 6", count)
	}
}
