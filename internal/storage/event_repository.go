package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/parish-calendar/backend/internal/storage/models"
)

// EventRepository provides data access for events.
type EventRepository struct {
	BaseRepository
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// EventFilter narrows List queries. Zero values mean "no constraint".
type EventFilter struct {
	From     string // inclusive YYYY-MM-DD lower bound
	To       string // inclusive YYYY-MM-DD upper bound
	SeriesID string
}

const eventColumns = `
	id, title, content, date, start_time, end_date, end_time, location, url,
	documents, auto_doc_preset, series_id, cancelled, published, created_at, updated_at`

// Create inserts a new event. A missing ID is generated.
func (r *EventRepository) Create(ctx context.Context, ev *models.Event) error {
	if ev.ID == "" {
		ev.ID = GenerateID()
	}
	ev.CreatedAt = r.Now()
	ev.UpdatedAt = ev.CreatedAt

	docs, err := marshalDocuments(ev.Documents)
	if err != nil {
		return err
	}

	_, err = r.DB().ExecContext(ctx, `
		INSERT INTO events (
			id, title, content, date, start_time, end_date, end_time, location, url,
			documents, auto_doc_preset, series_id, cancelled, published, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ev.ID, ev.Title, ev.Content, ev.Date, ev.StartTime, ev.EndDate, ev.EndTime,
		ev.Location, ev.URL, docs, ev.AutoDocPreset, ev.SeriesID,
		ev.Cancelled, ev.Published, ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}

	return nil
}

// GetByID retrieves an event by its ID. Returns nil when not found.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	row := r.DB().QueryRowContext(ctx, `SELECT`+eventColumns+` FROM events WHERE id = ?`, id)

	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying event: %w", err)
	}

	return ev, nil
}

// List retrieves events matching the filter, in ascending date order.
func (r *EventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	query := `SELECT` + eventColumns + ` FROM events WHERE 1=1`
	var args []any

	if filter.From != "" {
		query += " AND date >= ?"
		args = append(args, filter.From)
	}
	if filter.To != "" {
		query += " AND date <= ?"
		args = append(args, filter.To)
	}
	if filter.SeriesID != "" {
		query += " AND series_id = ?"
		args = append(args, filter.SeriesID)
	}
	query += " ORDER BY date, start_time"

	return r.queryEvents(ctx, query, args...)
}

// ListPublished retrieves all published events in ascending date order.
// This is the feed's source: cancelled events are included (they carry a
// cancellation marker downstream), unpublished drafts are not.
func (r *EventRepository) ListPublished(ctx context.Context) ([]models.Event, error) {
	return r.queryEvents(ctx, `
		SELECT`+eventColumns+` FROM events
		WHERE published = 1
		ORDER BY date, start_time
	`)
}

// Update rewrites an event's editable attributes.
func (r *EventRepository) Update(ctx context.Context, ev *models.Event) error {
	ev.UpdatedAt = r.Now()

	docs, err := marshalDocuments(ev.Documents)
	if err != nil {
		return err
	}

	result, err := r.DB().ExecContext(ctx, `
		UPDATE events SET
			title = ?, content = ?, date = ?, start_time = ?, end_date = ?, end_time = ?,
			location = ?, url = ?, documents = ?, auto_doc_preset = ?,
			cancelled = ?, published = ?, updated_at = ?
		WHERE id = ?
	`,
		ev.Title, ev.Content, ev.Date, ev.StartTime, ev.EndDate, ev.EndTime,
		ev.Location, ev.URL, docs, ev.AutoDocPreset,
		ev.Cancelled, ev.Published, ev.UpdatedAt, ev.ID,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("event not found: %s", ev.ID)
	}

	return nil
}

// SetSeriesID marks an event as a member of a series.
func (r *EventRepository) SetSeriesID(ctx context.Context, id, seriesID string) error {
	_, err := r.DB().ExecContext(ctx, `
		UPDATE events SET series_id = ?, updated_at = ? WHERE id = ?
	`, seriesID, r.Now(), id)
	if err != nil {
		return fmt.Errorf("setting series id: %w", err)
	}
	return nil
}

// SetCancelled flips an event's cancellation flag. Cancelled events are never
// deleted; siblings in the same series are unaffected.
func (r *EventRepository) SetCancelled(ctx context.Context, id string, cancelled bool) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE events SET cancelled = ?, updated_at = ? WHERE id = ?
	`, cancelled, r.Now(), id)
	if err != nil {
		return fmt.Errorf("setting cancelled: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("event not found: %s", id)
	}

	return nil
}

// Delete removes a single event. Series siblings are left untouched.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("event not found: %s", id)
	}

	return nil
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, *ev)
	}

	return events, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*models.Event, error) {
	ev := &models.Event{}
	var docs string

	err := s.Scan(
		&ev.ID, &ev.Title, &ev.Content, &ev.Date, &ev.StartTime, &ev.EndDate,
		&ev.EndTime, &ev.Location, &ev.URL, &docs, &ev.AutoDocPreset,
		&ev.SeriesID, &ev.Cancelled, &ev.Published, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if docs != "" && docs != "[]" {
		if err := json.Unmarshal([]byte(docs), &ev.Documents); err != nil {
			return nil, fmt.Errorf("decoding documents for event %s: %w", ev.ID, err)
		}
	}

	return ev, nil
}

func marshalDocuments(docs []models.Document) (string, error) {
	if len(docs) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(docs)
	if err != nil {
		return "", fmt.Errorf("encoding documents: %w", err)
	}
	return string(b), nil
}
