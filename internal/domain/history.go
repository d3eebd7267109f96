package domain

import (
	"context"
	"time"
)

// Entity types recorded in the status history.
const (
	EntityBooking    = "booking"
	EntityInvitation = "invitation"
	EntityEvent      = "event"
)

// StatusHistory is an append-only record of a status transition. Entries are
// never mutated.
// swagger:model StatusHistory
type StatusHistory struct {
	ID             string    `json:"id"`
	EntityType     string    `json:"entity_type"`
	EntityID       string    `json:"entity_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Reason         string    `json:"reason"`
	ActorID        string    `json:"actor_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// StatusHistoryRepository appends and lists transition records.
type StatusHistoryRepository interface {
	Append(ctx context.Context, h *StatusHistory) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*StatusHistory, error)
}

// Notification types.
const (
	NotificationApplicationReceived = "application_received"
	NotificationApplicationAccepted = "application_accepted"
	NotificationApplicationRejected = "application_rejected"
	NotificationPaymentReceived     = "payment_received"
	NotificationBookingCompleted    = "booking_completed"
	NotificationBookingRated        = "booking_rated"
	NotificationBookingCancelled    = "booking_cancelled"
	NotificationInvitationReceived  = "invitation_received"
	NotificationInvitationAccepted  = "invitation_accepted"
	NotificationInvitationDeclined  = "invitation_declined"
)

// Notification is an in-app message to a profile. Only ReadAt is ever
// mutated after creation.
// swagger:model Notification
type Notification struct {
	ID          string     `json:"id"`
	RecipientID string     `json:"recipient_id"`
	Type        string     `json:"type"`
	Message     string     `json:"message"`
	BookingID   *string    `json:"booking_id,omitempty"`
	InvitationID *string   `json:"invitation_id,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NotificationRepository defines storage for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByRecipientID(ctx context.Context, recipientID string, params PaginationParams) ([]*Notification, int, error)
	// MarkRead stamps read_at on the recipient's notification. Idempotent.
	MarkRead(ctx context.Context, id, recipientID string) error
}

// Notifier records a notification for a profile and sends a best-effort
// email. Failures are logged, never propagated into the transition that
// triggered them.
type Notifier interface {
	NotifyBooking(ctx context.Context, recipientID, ntype, message string, detail *BookingDetail)
	NotifyInvitation(ctx context.Context, recipientID, ntype, message string, detail *InvitationDetail)
}

// NotificationService exposes the recipient-facing notification feed.
type NotificationService interface {
	ListOwn(ctx context.Context, callerID string, params PaginationParams) ([]*Notification, int, error)
	MarkRead(ctx context.Context, callerID, notificationID string) error
}
