// event_repository.go implements EventRepository over announcements and slideshow
// images. Events soft-delete like benefits, with no restore route.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

// EventRepository handles event database operations
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, title, description, type, event_date, image_url, image_public_id, deleted, created_at, updated_at`

// ListByType returns all non-deleted events of one kind, newest first
func (r *EventRepository) ListByType(ctx context.Context, eventType string) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE NOT deleted AND type = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, eventType)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListLatest returns the most recent non-deleted events of the "event" kind
func (r *EventRepository) ListLatest(ctx context.Context, limit int) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE NOT deleted AND type = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, models.EventTypeEvent, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetByID retrieves a non-deleted event, or nil if not found
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND NOT deleted`

	e := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.Description, &e.Type, &e.EventDate,
		&e.ImageURL, &e.ImagePublicID, &e.Deleted, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

// Create inserts a new event and returns its ID
func (r *EventRepository) Create(ctx context.Context, event *models.Event) (int64, error) {
	query := `
		INSERT INTO events (title, description, type, event_date, image_url, image_public_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		event.Title, event.Description, event.Type, event.EventDate,
		event.ImageURL, event.ImagePublicID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create event: %w", err)
	}
	return id, nil
}

// Update overwrites a non-deleted event. Returns false if it does not exist
// or is deleted.
func (r *EventRepository) Update(ctx context.Context, id int64, event *models.Event) (bool, error) {
	query := `
		UPDATE events
		SET title = $1, description = $2, type = $3, event_date = $4, image_url = $5, image_public_id = $6, updated_at = NOW()
		WHERE id = $7 AND NOT deleted
	`

	result, err := r.db.ExecContext(ctx, query,
		event.Title, event.Description, event.Type, event.EventDate,
		event.ImageURL, event.ImagePublicID, id)
	if err != nil {
		return false, fmt.Errorf("failed to update event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SoftDelete hides an event. Returns false if already deleted or missing.
func (r *EventRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE events SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT deleted`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Count returns the number of non-deleted events of the "event" kind
func (r *EventRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE NOT deleted AND type = $1`, models.EventTypeEvent).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func scanEvents(rows *sql.Rows) ([]*models.Event, error) {
	events := make([]*models.Event, 0)
	for rows.Next() {
		e := &models.Event{}
		err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Type, &e.EventDate,
			&e.ImageURL, &e.ImagePublicID, &e.Deleted, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
