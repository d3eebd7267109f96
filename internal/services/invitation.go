package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"speakermarket/internal/domain"
)

type invitationService struct {
	invitationRepo domain.InvitationRepository
	eventRepo      domain.EventRepository
	speakerRepo    domain.SpeakerRepository
	profileRepo    domain.ProfileRepository
	historyRepo    domain.StatusHistoryRepository
	notifier       domain.Notifier

	contextTimeout time.Duration
	now            func() time.Time
}

// NewInvitationService creates an InvitationService with the given
// repositories and collaborators.
func NewInvitationService(
	invitationRepo domain.InvitationRepository,
	eventRepo domain.EventRepository,
	speakerRepo domain.SpeakerRepository,
	profileRepo domain.ProfileRepository,
	historyRepo domain.StatusHistoryRepository,
	notifier domain.Notifier,
	timeout time.Duration,
) domain.InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		eventRepo:      eventRepo,
		speakerRepo:    speakerRepo,
		profileRepo:    profileRepo,
		historyRepo:    historyRepo,
		notifier:       notifier,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *invitationService) callerProfile(ctx context.Context, callerID string) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get caller profile: %w", err)
	}
	return profile, nil
}

func (s *invitationService) recordTransition(ctx context.Context, invitationID, previous, next, reason, actorID string) {
	_ = s.historyRepo.Append(ctx, &domain.StatusHistory{
		EntityType:     domain.EntityInvitation,
		EntityID:       invitationID,
		PreviousStatus: previous,
		NewStatus:      next,
		Reason:         reason,
		ActorID:        actorID,
		CreatedAt:      s.now(),
	})
}

// notifyTransition re-reads the invitation through the joined view so the
// email carries names and the event title.
func (s *invitationService) notifyTransition(ctx context.Context, inv *domain.Invitation, recipientID, ntype, message string) {
	list, err := s.invitationRepo.ListBySpeakerID(ctx, inv.SpeakerID)
	if err != nil {
		return
	}
	for _, d := range list {
		if d.Invitation.ID == inv.ID {
			s.notifier.NotifyInvitation(ctx, recipientID, ntype, message, d)
			return
		}
	}
}

func (s *invitationService) Invite(ctx context.Context, callerID, eventID, speakerID string, proposedRate float64, message string, expiresInDays int) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if proposedRate < 0 {
		return nil, domain.ErrInvalidInput
	}
	profile, err := s.callerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !profile.CanOrganize() {
		return nil, domain.ErrForbidden
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != profile.ID {
		return nil, domain.ErrForbidden
	}
	if event.Status != domain.EventStatusOpen {
		return nil, fmt.Errorf("event is not open: %w", domain.ErrPreconditionFailed)
	}

	speaker, err := s.speakerRepo.GetByID(ctx, speakerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	if speaker.ProfileID == profile.ID {
		return nil, fmt.Errorf("cannot invite yourself: %w", domain.ErrInvalidInput)
	}

	if expiresInDays <= 0 {
		expiresInDays = speaker.InviteExpiryDays
	}
	if expiresInDays <= 0 {
		expiresInDays = domain.DefaultInviteExpiryDays
	}

	now := s.now()
	inv := &domain.Invitation{
		EventID:      event.ID,
		SpeakerID:    speaker.ID,
		OrganizerID:  profile.ID,
		Status:       domain.InvitationStatusPending,
		ProposedRate: proposedRate,
		Message:      message,
		ExpiresAt:    now.AddDate(0, 0, expiresInDays),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	s.recordTransition(ctx, inv.ID, "", domain.InvitationStatusPending, "invitation sent", profile.ID)
	s.notifyTransition(ctx, inv, speaker.ProfileID, domain.NotificationInvitationReceived,
		fmt.Sprintf("you were invited to speak at %s", event.Title))
	return inv, nil
}

// loadForSpeaker fetches the invitation and verifies the caller is the
// invited speaker.
func (s *invitationService) loadForSpeaker(ctx context.Context, callerID, invitationID string) (*domain.Invitation, *domain.Profile, error) {
	profile, err := s.callerProfile(ctx, callerID)
	if err != nil {
		return nil, nil, err
	}
	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get invitation: %w", err)
	}
	speaker, err := s.speakerRepo.GetByID(ctx, inv.SpeakerID)
	if err != nil {
		return nil, nil, fmt.Errorf("get speaker: %w", err)
	}
	if speaker.ProfileID != profile.ID {
		return nil, nil, domain.ErrForbidden
	}
	return inv, profile, nil
}

func (s *invitationService) Accept(ctx context.Context, callerID, invitationID string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, profile, err := s.loadForSpeaker(ctx, callerID, invitationID)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.InvitationStatusPending {
		return nil, fmt.Errorf("invitation is %s: %w", inv.Status, domain.ErrPreconditionFailed)
	}
	now := s.now()
	// Expiry is evaluated at read time; the batch sweep may not have run yet.
	if inv.Expired(now) {
		return nil, domain.ErrInvitationExpired
	}

	booking, err := s.invitationRepo.AcceptAndCreateBooking(ctx, inv, now)
	if err != nil {
		if errors.Is(err, domain.ErrPreconditionFailed) {
			// The conditional update inside the transaction re-checks both
			// status and expiry, so a concurrent accept or sweep loses here.
			if inv.Expired(s.now()) {
				return nil, domain.ErrInvitationExpired
			}
			return nil, fmt.Errorf("invitation is no longer pending: %w", domain.ErrPreconditionFailed)
		}
		return nil, fmt.Errorf("accept invitation: %w", err)
	}
	s.recordTransition(ctx, inv.ID, domain.InvitationStatusPending, domain.InvitationStatusAccepted, "", profile.ID)
	_ = s.historyRepo.Append(ctx, &domain.StatusHistory{
		EntityType:     domain.EntityBooking,
		EntityID:       booking.ID,
		PreviousStatus: "",
		NewStatus:      booking.Status,
		Reason:         "created from invitation",
		ActorID:        profile.ID,
		CreatedAt:      now,
	})
	s.notifyTransition(ctx, inv, inv.OrganizerID, domain.NotificationInvitationAccepted,
		"your invitation was accepted")
	return booking, nil
}

func (s *invitationService) Decline(ctx context.Context, callerID, invitationID string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, profile, err := s.loadForSpeaker(ctx, callerID, invitationID)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.InvitationStatusPending {
		return nil, fmt.Errorf("invitation is %s: %w", inv.Status, domain.ErrPreconditionFailed)
	}

	err = s.invitationRepo.UpdateStatus(ctx, inv.ID, domain.InvitationStatusPending, domain.InvitationStatusDeclined)
	if err != nil {
		if errors.Is(err, domain.ErrPreconditionFailed) {
			return nil, fmt.Errorf("invitation is no longer pending: %w", domain.ErrPreconditionFailed)
		}
		return nil, fmt.Errorf("update invitation status: %w", err)
	}
	s.recordTransition(ctx, inv.ID, domain.InvitationStatusPending, domain.InvitationStatusDeclined, "", profile.ID)
	inv.Status = domain.InvitationStatusDeclined
	s.notifyTransition(ctx, inv, inv.OrganizerID, domain.NotificationInvitationDeclined,
		"your invitation was declined")
	return inv, nil
}

func (s *invitationService) ListForEvent(ctx context.Context, callerID, eventID string) ([]*domain.InvitationDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.callerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != profile.ID {
		return nil, domain.ErrForbidden
	}
	return s.invitationRepo.ListByEventID(ctx, eventID)
}

func (s *invitationService) ListAsSpeaker(ctx context.Context, callerID string) ([]*domain.InvitationDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.callerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}
	speaker, err := s.speakerRepo.GetByProfileID(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []*domain.InvitationDetail{}, nil
		}
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	return s.invitationRepo.ListBySpeakerID(ctx, speaker.ID)
}

func (s *invitationService) ExpireOld(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.invitationRepo.ExpireOld(ctx, s.now())
}
