package services

import (
	"context"
	"log/slog"
	"time"

	"speakermarket/internal/domain"
)

type notifier struct {
	notificationRepo domain.NotificationRepository
	profileRepo      domain.ProfileRepository
	emailService     domain.EmailService
	logger           *slog.Logger
}

// NewNotifier creates a Notifier that records in-app notifications and sends
// best-effort emails. It never returns errors to callers: a failed
// notification must not fail the transition that triggered it.
func NewNotifier(
	notificationRepo domain.NotificationRepository,
	profileRepo domain.ProfileRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.Notifier {
	return &notifier{
		notificationRepo: notificationRepo,
		profileRepo:      profileRepo,
		emailService:     emailService,
		logger:           logger,
	}
}

func (n *notifier) NotifyBooking(ctx context.Context, recipientID, ntype, message string, detail *domain.BookingDetail) {
	notification := &domain.Notification{
		RecipientID: recipientID,
		Type:        ntype,
		Message:     message,
		BookingID:   &detail.Booking.ID,
		CreatedAt:   time.Now(),
	}
	if err := n.notificationRepo.Create(ctx, notification); err != nil {
		n.logger.ErrorContext(ctx, "create notification", "type", ntype, "recipient", recipientID, "err", err)
	}

	recipient, err := n.profileRepo.GetByID(ctx, recipientID)
	if err != nil {
		n.logger.ErrorContext(ctx, "resolve notification recipient", "recipient", recipientID, "err", err)
		return
	}
	counterpart := detail.SpeakerName
	if recipientID != detail.Booking.OrganizerID {
		counterpart = detail.OrganizerName
	}
	data := &domain.BookingEmailData{
		RecipientName:   recipient.DisplayName,
		EventTitle:      detail.EventTitle,
		CounterpartName: counterpart,
		Status:          detail.Booking.Status,
		Reason:          detail.Booking.StatusReason,
		Amount:          detail.Booking.PaymentAmount,
	}
	if err := n.emailService.SendBookingUpdate(ctx, recipient.Email, data); err != nil {
		n.logger.ErrorContext(ctx, "send booking email", "type", ntype, "recipient", recipientID, "err", err)
	}
}

func (n *notifier) NotifyInvitation(ctx context.Context, recipientID, ntype, message string, detail *domain.InvitationDetail) {
	notification := &domain.Notification{
		RecipientID:  recipientID,
		Type:         ntype,
		Message:      message,
		InvitationID: &detail.Invitation.ID,
		CreatedAt:    time.Now(),
	}
	if err := n.notificationRepo.Create(ctx, notification); err != nil {
		n.logger.ErrorContext(ctx, "create notification", "type", ntype, "recipient", recipientID, "err", err)
	}

	recipient, err := n.profileRepo.GetByID(ctx, recipientID)
	if err != nil {
		n.logger.ErrorContext(ctx, "resolve notification recipient", "recipient", recipientID, "err", err)
		return
	}
	data := &domain.InvitationEmailData{
		RecipientName: recipient.DisplayName,
		EventTitle:    detail.EventTitle,
		OrganizerName: detail.OrganizerName,
		SpeakerName:   detail.SpeakerName,
		ProposedRate:  detail.Invitation.ProposedRate,
		ExpiresAt:     detail.Invitation.ExpiresAt.Format("Jan 2, 2006"),
	}
	var sendErr error
	if ntype == domain.NotificationInvitationReceived {
		sendErr = n.emailService.SendInvitationReceived(ctx, recipient.Email, data)
	} else {
		sendErr = n.emailService.SendInvitationAnswered(ctx, recipient.Email, data)
	}
	if sendErr != nil {
		n.logger.ErrorContext(ctx, "send invitation email", "type", ntype, "recipient", recipientID, "err", sendErr)
	}
}
