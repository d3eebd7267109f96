package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"speakermarket/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

// eventColumns selects an event with its topic names aggregated from
// event_topics.
const eventColumns = `e.id, e.organizer_id, e.title, e.description, e.event_type, e.format,
		e.location, e.date_time, e.duration_hours, e.budget_min, e.budget_max, e.status,
		e.created_at, e.updated_at,
		COALESCE((SELECT array_agg(t.name ORDER BY t.name)
		          FROM event_topics et JOIN topics t ON t.id = et.topic_id
		          WHERE et.event_id = e.id), '{}')`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.EventType, &e.Format,
		&e.Location, &e.DateTime, &e.DurationHours, &e.BudgetMin, &e.BudgetMax, &e.Status,
		&e.CreatedAt, &e.UpdatedAt, pq.Array(&e.Topics))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (organizer_id, title, description, event_type, format, location,
			date_time, duration_hours, budget_min, budget_max, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		event.OrganizerID, event.Title, event.Description, event.EventType, event.Format,
		event.Location, event.DateTime, event.DurationHours, event.BudgetMin, event.BudgetMax,
		event.Status, event.CreatedAt, event.UpdatedAt).
		Scan(&event.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) GetWithOrganizer(ctx context.Context, id string) (*domain.EventWithOrganizer, error) {
	query := `
		SELECT ` + eventColumns + `,
		       p.id, p.user_id, p.display_name, p.email, p.bio, p.location, p.avatar_url,
		       p.website, p.role, p.created_at, p.updated_at
		FROM events e
		JOIN profiles p ON p.id = e.organizer_id
		WHERE e.id = $1
	`
	e := &domain.Event{}
	p := &domain.Profile{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.EventType, &e.Format,
			&e.Location, &e.DateTime, &e.DurationHours, &e.BudgetMin, &e.BudgetMax, &e.Status,
			&e.CreatedAt, &e.UpdatedAt, pq.Array(&e.Topics),
			&p.ID, &p.UserID, &p.DisplayName, &p.Email, &p.Bio, &p.Location, &p.AvatarURL,
			&p.Website, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &domain.EventWithOrganizer{Event: e, Organizer: p}, nil
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.EventWithOrganizer, int, error) {
	where := `
		WHERE ($1 = '' OR e.status = $1)
		  AND ($2 = '' OR e.event_type = $2)
		  AND ($3 = '' OR e.format = $3)
		  AND ($4 = '' OR EXISTS (SELECT 1 FROM event_topics et JOIN topics t ON t.id = et.topic_id
		                          WHERE et.event_id = e.id AND t.name = $4))
		  AND ($5::timestamptz IS NULL OR e.date_time >= $5)
		  AND ($6::timestamptz IS NULL OR e.date_time <= $6)
	`
	var from, to *time.Time
	if !filter.From.IsZero() {
		from = &filter.From
	}
	if !filter.To.IsZero() {
		to = &filter.To
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM events e ` + where
	if err := r.DB.QueryRowContext(ctx, countQuery,
		filter.Status, filter.EventType, filter.Format, filter.Topic, from, to).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + eventColumns + `,
		       p.id, p.user_id, p.display_name, p.email, p.bio, p.location, p.avatar_url,
		       p.website, p.role, p.created_at, p.updated_at
		FROM events e
		JOIN profiles p ON p.id = e.organizer_id
	` + where + `
		ORDER BY e.date_time ASC
		LIMIT $7 OFFSET $8
	`
	rows, err := r.DB.QueryContext(ctx, query,
		filter.Status, filter.EventType, filter.Format, filter.Topic, from, to,
		params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*domain.EventWithOrganizer
	for rows.Next() {
		e := &domain.Event{}
		p := &domain.Profile{}
		if err := rows.Scan(&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.EventType, &e.Format,
			&e.Location, &e.DateTime, &e.DurationHours, &e.BudgetMin, &e.BudgetMax, &e.Status,
			&e.CreatedAt, &e.UpdatedAt, pq.Array(&e.Topics),
			&p.ID, &p.UserID, &p.DisplayName, &p.Email, &p.Bio, &p.Location, &p.AvatarURL,
			&p.Website, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &domain.EventWithOrganizer{Event: e, Organizer: p})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*domain.EventWithOrganizer{}
	}
	return items, total, nil
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.organizer_id = $1 ORDER BY e.date_time DESC`
	rows, err := r.DB.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id, expected, next string) error {
	query := `
		UPDATE events
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`
	res, err := r.DB.ExecContext(ctx, query, id, expected, next, time.Now())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrPreconditionFailed
	}
	return nil
}
