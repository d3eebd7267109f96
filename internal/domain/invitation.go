package domain

import (
	"context"
	"time"
)

// Invitation statuses. All of accepted, declined, and expired are terminal.
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusDeclined = "declined"
	InvitationStatusExpired  = "expired"
)

// Invitation is an organizer-initiated offer to a speaker, distinct from a
// booking until accepted. Accepting creates (or updates) the booking for the
// same (event, speaker) pair in one transaction.
// swagger:model Invitation
type Invitation struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	SpeakerID    string    `json:"speaker_id"`
	OrganizerID  string    `json:"organizer_id"`
	Status       string    `json:"status"`
	ProposedRate float64   `json:"proposed_rate"`
	Message      string    `json:"message"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Expired reports whether the invitation is past its expiry at the given
// time. Evaluated at read time; the batch sweep only catches up the stored
// status.
func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// InvitationDetail is the read view joining the invitation with event and
// party names.
type InvitationDetail struct {
	Invitation    *Invitation `json:"invitation"`
	EventTitle    string      `json:"event_title"`
	EventDateTime time.Time   `json:"event_date_time"`
	SpeakerName   string      `json:"speaker_name"`
	OrganizerName string      `json:"organizer_name"`
}

// InvitationRepository defines storage for invitations.
type InvitationRepository interface {
	// Create inserts the invitation; a second invitation for the same
	// (event, speaker) pair fails with ErrDuplicate.
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id string) (*Invitation, error)
	ListByEventID(ctx context.Context, eventID string) ([]*InvitationDetail, error)
	ListBySpeakerID(ctx context.Context, speakerID string) ([]*InvitationDetail, error)
	UpdateStatus(ctx context.Context, id, expected, next string) error
	// AcceptAndCreateBooking atomically marks the pending invitation accepted
	// and upserts the booking for its (event, speaker) pair, copying the
	// proposed rate and message. Exactly one booking exists afterwards
	// regardless of concurrent acceptance attempts.
	AcceptAndCreateBooking(ctx context.Context, inv *Invitation, now time.Time) (*Booking, error)
	// ExpireOld transitions pending invitations past their expiry to expired.
	// Idempotent; returns the number of rows transitioned.
	ExpireOld(ctx context.Context, now time.Time) (int64, error)
}

// InvitationService drives the invitation state machine.
type InvitationService interface {
	// Invite creates a pending invitation from the organizer's open event to
	// the speaker. expiresInDays <= 0 uses the speaker's configured default.
	Invite(ctx context.Context, callerID, eventID, speakerID string, proposedRate float64, message string, expiresInDays int) (*Invitation, error)
	// Accept converts the invitation into a booking. Invited speaker only.
	Accept(ctx context.Context, callerID, invitationID string) (*Booking, error)
	// Decline refuses the invitation. Invited speaker only, no side effects.
	Decline(ctx context.Context, callerID, invitationID string) (*Invitation, error)
	ListForEvent(ctx context.Context, callerID, eventID string) ([]*InvitationDetail, error)
	ListAsSpeaker(ctx context.Context, callerID string) ([]*InvitationDetail, error)
	// ExpireOld runs the batch expiry sweep (scheduler/admin entry point).
	ExpireOld(ctx context.Context) (int64, error)
}
