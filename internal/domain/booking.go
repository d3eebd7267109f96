package domain

import (
	"context"
	"time"
)

// Booking statuses.
const (
	BookingStatusPending   = "pending"
	BookingStatusAccepted  = "accepted"
	BookingStatusRejected  = "rejected"
	BookingStatusPaid      = "paid"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// CompletionGrace is how long after the event ends a paid booking may be
// marked completed.
const CompletionGrace = 2 * time.Hour

// bookingTransitions is the allowed edge set of the booking state machine.
var bookingTransitions = map[string][]string{
	BookingStatusPending:  {BookingStatusAccepted, BookingStatusRejected, BookingStatusCancelled},
	BookingStatusAccepted: {BookingStatusPaid, BookingStatusCancelled},
	BookingStatusPaid:     {BookingStatusCompleted, BookingStatusCancelled},
}

// BookingStatusAllowed reports whether moving from one booking status to
// another is a legal transition.
func BookingStatusAllowed(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// BookingStatusTerminal reports whether the status has no outgoing edges.
func BookingStatusTerminal(status string) bool {
	return len(bookingTransitions[status]) == 0
}

// Booking links one speaker to one event under one organizer. At most one
// booking exists per (event, speaker) pair, enforced by a unique constraint.
// Rating is a typed 1..5 value; RatedAt doubles as the "already rated" marker.
// swagger:model Booking
type Booking struct {
	ID               string     `json:"id"`
	EventID          string     `json:"event_id"`
	SpeakerID        string     `json:"speaker_id"`
	OrganizerID      string     `json:"organizer_id"`
	InvitationID     *string    `json:"invitation_id,omitempty"`
	Status           string     `json:"status"`
	AgreedRate       float64    `json:"agreed_rate"`
	Message          string     `json:"message"`
	StatusReason     string     `json:"status_reason"`
	PaymentReference string     `json:"payment_reference,omitempty"`
	PaymentAmount    float64    `json:"payment_amount"`
	Rating           *int       `json:"rating,omitempty"`
	RatingComment    string     `json:"rating_comment,omitempty"`
	RatedAt          *time.Time `json:"rated_at,omitempty"`
	RespondedAt      *time.Time `json:"responded_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Live reports whether the booking is in a non-terminal state.
func (b *Booking) Live() bool { return !BookingStatusTerminal(b.Status) }

// Rated reports whether a rating has been submitted for the booking.
func (b *Booking) Rated() bool { return b.RatedAt != nil }

// BookingDetail is the read view for display: the booking joined with event
// title/schedule and the two party names.
type BookingDetail struct {
	Booking       *Booking  `json:"booking"`
	EventTitle    string    `json:"event_title"`
	EventDateTime time.Time `json:"event_date_time"`
	SpeakerName   string    `json:"speaker_name"`
	OrganizerName string    `json:"organizer_name"`
}

// BookingRepository defines storage for bookings. Status mutations are
// conditional updates: the row only changes when it is still in the expected
// status, and ErrPreconditionFailed is returned otherwise.
type BookingRepository interface {
	// Create inserts the booking; a second live booking for the same
	// (event, speaker) pair fails with ErrDuplicate.
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	GetByEventAndSpeaker(ctx context.Context, eventID, speakerID string) (*Booking, error)
	GetDetail(ctx context.Context, id string) (*BookingDetail, error)
	ListByEventID(ctx context.Context, eventID string) ([]*BookingDetail, error)
	ListBySpeakerID(ctx context.Context, speakerID string) ([]*BookingDetail, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*BookingDetail, error)
	// ListAllBySpeakerID returns the speaker's full booking history for the
	// statistics aggregator, without joins.
	ListAllBySpeakerID(ctx context.Context, speakerID string) ([]*Booking, error)
	UpdateStatus(ctx context.Context, id, expected, next, reason string, respondedAt *time.Time) error
	// MarkPaid moves accepted -> paid and stamps the payment reference and amount.
	MarkPaid(ctx context.Context, id, reference string, amount float64) error
	// Rate stores the rating on a completed, not-yet-rated booking.
	Rate(ctx context.Context, id string, rating int, comment string, ratedAt time.Time) error
	// CancelStale cancels pending/accepted bookings whose event ended before
	// cutoff. Returns the number of bookings cancelled.
	CancelStale(ctx context.Context, cutoff time.Time, reason string) (int64, error)
	// CountByEventAndStatus reports how many of the event's bookings are in
	// the given status.
	CountByEventAndStatus(ctx context.Context, eventID, status string) (int, error)
}

// BookingService drives the booking state machine. Every operation takes the
// caller's user ID explicitly; the service resolves it to a profile and
// checks the role the transition requires.
type BookingService interface {
	// Apply creates a pending booking for an open event.
	Apply(ctx context.Context, callerID, eventID, message string, proposedRate float64) (*Booking, error)
	Get(ctx context.Context, callerID, bookingID string) (*BookingDetail, error)
	ListForEvent(ctx context.Context, callerID, eventID string) ([]*BookingDetail, error)
	ListAsSpeaker(ctx context.Context, callerID string) ([]*BookingDetail, error)
	ListAsOrganizer(ctx context.Context, callerID string) ([]*BookingDetail, error)
	// Accept and Reject respond to a pending application. Organizer only.
	Accept(ctx context.Context, callerID, bookingID string) (*Booking, error)
	Reject(ctx context.Context, callerID, bookingID, reason string) (*Booking, error)
	// Pay stamps a payment reference and amount on an accepted booking.
	Pay(ctx context.Context, callerID, bookingID string) (*Booking, error)
	// Complete marks a paid booking completed once the event has elapsed.
	Complete(ctx context.Context, callerID, bookingID string) (*Booking, error)
	// Rate stores a 1..5 rating with comment, once, and recomputes the
	// speaker's aggregate rating.
	Rate(ctx context.Context, callerID, bookingID string, rating int, comment string) (*Booking, error)
	Cancel(ctx context.Context, callerID, bookingID, reason string) (*Booking, error)
	// CancelStale cancels bookings never paid before their event elapsed.
	CancelStale(ctx context.Context) (int64, error)
}
