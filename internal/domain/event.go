package domain

import (
	"context"
	"time"
)

// Event lifecycle statuses.
const (
	EventStatusOpen       = "open"
	EventStatusInProgress = "in_progress"
	EventStatusCompleted  = "completed"
	EventStatusCancelled  = "cancelled"
)

// Event is an organizer's request for a speaker.
// swagger:model Event
type Event struct {
	ID            string    `json:"id"`
	OrganizerID   string    `json:"organizer_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	EventType     string    `json:"event_type"`
	Format        string    `json:"format"`
	Location      string    `json:"location"`
	DateTime      time.Time `json:"date_time"`
	DurationHours float64   `json:"duration_hours"`
	BudgetMin     float64   `json:"budget_min"`
	BudgetMax     float64   `json:"budget_max"`
	Topics        []string  `json:"topics"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with status open. ID is set by the repository
// on create.
func NewEvent(organizerID, title string, dateTime time.Time, durationHours float64, createdAt, updatedAt time.Time) *Event {
	return &Event{
		OrganizerID:   organizerID,
		Title:         title,
		DateTime:      dateTime,
		DurationHours: durationHours,
		Status:        EventStatusOpen,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

// EndTime returns when the event ends (start plus duration).
func (e *Event) EndTime() time.Time {
	return e.DateTime.Add(time.Duration(e.DurationHours * float64(time.Hour)))
}

// EventFilter narrows public event listings.
type EventFilter struct {
	Status    string
	EventType string
	Format    string
	Topic     string
	From      time.Time
	To        time.Time
}

// EventWithOrganizer is the read view joining an event with its organizer's
// profile, for display only.
type EventWithOrganizer struct {
	Event     *Event   `json:"event"`
	Organizer *Profile `json:"organizer"`
}

// EventRepository defines storage for events.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetWithOrganizer(ctx context.Context, id string) (*EventWithOrganizer, error)
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*EventWithOrganizer, int, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	// UpdateStatus moves the event from expected to next and returns
	// ErrPreconditionFailed if the event is no longer in expected.
	UpdateStatus(ctx context.Context, id, expected, next string) error
}

// EventService defines organizer-facing event management.
type EventService interface {
	Create(ctx context.Context, callerID string, event *Event) (*Event, error)
	Get(ctx context.Context, id string) (*EventWithOrganizer, error)
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*EventWithOrganizer, int, error)
	ListOwn(ctx context.Context, callerID string) ([]*Event, error)
	// Cancel cancels an open or in-progress event. Owner only.
	Cancel(ctx context.Context, callerID, eventID, reason string) error
}
