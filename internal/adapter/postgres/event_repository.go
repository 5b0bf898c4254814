package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salvadorquinn/studynet/internal/domain"
)

// eventColumns must match the Scan order in scanEvent.
const eventColumns = `id, title, start_date, start_time, end_date, end_time,
	location, venue, address, description, region, image, disabled,
	map_link, link, email_template, created_at, updated_at`

// EventRepo implements domain.EventRepository backed by PostgreSQL.
type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.StartDate, &e.StartTime, &e.EndDate, &e.EndTime,
		&e.Location, &e.Venue, &e.Address, &e.Description, &e.Region, &e.Image,
		&e.Disabled, &e.MapLink, &e.Link, &e.EmailTemplate, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepo) GetByID(ctx context.Context, eventID int64) (*domain.Event, error) {
	event, err := scanEvent(r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// List returns events newest-first. Disabled events are excluded unless the
// filter asks for them; an empty region matches everything.
func (r *EventRepo) List(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE ($1 = '' OR region = $1)
		  AND ($2 OR NOT disabled)
		ORDER BY start_date DESC, id DESC
	`, filter.Region, filter.IncludeDisabled)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

func (r *EventRepo) Create(ctx context.Context, draft domain.EventDraft) (*domain.Event, error) {
	event, err := scanEvent(r.pool.QueryRow(ctx, `
		INSERT INTO events (title, start_date, start_time, end_date, end_time,
			location, venue, address, description, region, image,
			map_link, link, email_template)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+eventColumns,
		draft.Title, draft.StartDate, draft.StartTime, draft.EndDate, draft.EndTime,
		draft.Location, draft.Venue, draft.Address, draft.Description, draft.Region,
		draft.Image, draft.MapLink, draft.Link, draft.EmailTemplate))
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (r *EventRepo) Update(ctx context.Context, eventID int64, draft domain.EventDraft) (*domain.Event, error) {
	event, err := scanEvent(r.pool.QueryRow(ctx, `
		UPDATE events
		SET title = $1, start_date = $2, start_time = $3, end_date = $4,
		    end_time = $5, location = $6, venue = $7, address = $8,
		    description = $9, region = $10, image = $11, map_link = $12,
		    link = $13, email_template = $14, updated_at = NOW()
		WHERE id = $15
		RETURNING `+eventColumns,
		draft.Title, draft.StartDate, draft.StartTime, draft.EndDate, draft.EndTime,
		draft.Location, draft.Venue, draft.Address, draft.Description, draft.Region,
		draft.Image, draft.MapLink, draft.Link, draft.EmailTemplate, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

func (r *EventRepo) SetDisabled(ctx context.Context, eventID int64, disabled bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET disabled = $1, updated_at = NOW() WHERE id = $2`, disabled, eventID)
	if err != nil {
		return fmt.Errorf("failed to set event disabled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepo) Delete(ctx context.Context, eventID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}
