package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"speakermarket/internal/domain"
)

type bookingService struct {
	bookingRepo domain.BookingRepository
	eventRepo   domain.EventRepository
	speakerRepo domain.SpeakerRepository
	profileRepo domain.ProfileRepository
	historyRepo domain.StatusHistoryRepository
	stats       domain.StatsService
	notifier    domain.Notifier

	contextTimeout time.Duration
	now            func() time.Time
}

// NewBookingService creates a BookingService with the given repositories and
// collaborators.
func NewBookingService(
	bookingRepo domain.BookingRepository,
	eventRepo domain.EventRepository,
	speakerRepo domain.SpeakerRepository,
	profileRepo domain.ProfileRepository,
	historyRepo domain.StatusHistoryRepository,
	stats domain.StatsService,
	notifier domain.Notifier,
	timeout time.Duration,
) domain.BookingService {
	return &bookingService{
		bookingRepo:    bookingRepo,
		eventRepo:      eventRepo,
		speakerRepo:    speakerRepo,
		profileRepo:    profileRepo,
		historyRepo:    historyRepo,
		stats:          stats,
		notifier:       notifier,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *bookingService) callerProfile(ctx context.Context, callerID string) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get caller profile: %w", err)
	}
	return profile, nil
}

// recordTransition appends the audit entry. Audit failures are not allowed to
// undo a transition that already landed, so they only surface as wrapped
// errors to the caller's logger via the controller path.
func (s *bookingService) recordTransition(ctx context.Context, bookingID, previous, next, reason, actorID string) {
	_ = s.historyRepo.Append(ctx, &domain.StatusHistory{
		EntityType:     domain.EntityBooking,
		EntityID:       bookingID,
		PreviousStatus: previous,
		NewStatus:      next,
		Reason:         reason,
		ActorID:        actorID,
		CreatedAt:      s.now(),
	})
}

func (s *bookingService) Apply(ctx context.Context, callerID, eventID, message string, proposedRate float64) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if proposedRate < 0 {
		return nil, domain.ErrInvalidInput
	}
	profile, err := s.callerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !profile.CanSpeak() {
		return nil, domain.ErrForbidden
	}
	speaker, err := s.speakerRepo.GetByProfileID(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("speaker profile required to apply: %w", domain.ErrPreconditionFailed)
		}
		return nil, fmt.Errorf("get speaker: %w", err)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.Status != domain.EventStatusOpen {
		return nil, fmt.Errorf("event is not open for applications: %w", domain.ErrPreconditionFailed)
	}
	if event.OrganizerID == profile.ID {
		return nil, fmt.Errorf("cannot apply to own event: %w", domain.ErrInvalidInput)
	}

	now := s.now()
	booking := &domain.Booking{
		EventID:     event.ID,
		SpeakerID:   speaker.ID,
		OrganizerID: event.OrganizerID,
		Status:      domain.BookingStatusPending,
		AgreedRate:  proposedRate,
		Message:     message,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// The unique constraint on (event_id, speaker_id) is the duplicate
	// guard; no read-then-insert check.
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}
	s.recordTransition(ctx, booking.ID, "", domain.BookingStatusPending, "application submitted", profile.ID)

	if detail, err := s.bookingRepo.GetDetail(ctx, booking.ID); err == nil {
		s.notifier.NotifyBooking(ctx, event.OrganizerID, domain.NotificationApplicationReceived,
			fmt.Sprintf("%s applied to speak at %s", detail.SpeakerName, detail.EventTitle), detail)
	}
	return booking, nil
}

// loadForOrganizer fetches the booking and verifies the caller organizes it.
func (s *bookingService) loadForOrganizer(ctx context.Context, callerID, bookingID string) (*domain.Booking, *domain.Profile, error) {
	profile, err := s.callerProfile(ctx, callerID)
	if err != nil {
		return nil, nil, err
	}
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get booking: %w", err)
	}
	if booking.OrganizerID != profile.ID {
		return nil, nil, domain.ErrForbidden
	}
	return booking, profile, nil
}

// speakerProfileID resolves the profile that owns the booking's speaker row,
// for notifications.
func (s *bookingService) speakerProfileID(ctx context.Context, booking *domain.Booking) (string, error) {
	speaker, err := s.speakerRepo.GetByID(ctx, booking.SpeakerID)
	if err != nil {
		return "", fmt.Errorf("get speaker: %w", err)
	}
	return speaker.ProfileID, nil
}

func (s *bookingService) notifyTransition(ctx context.Context, booking *domain.Booking, recipientID, ntype, message string) {
	detail, err := s.bookingRepo.GetDetail(ctx, booking.ID)
	if err != nil {
		return
	}
	s.notifier.NotifyBooking(ctx, recipientID, ntype, message, detail)
}

func (s *bookingService) Accept(ctx context.Context, callerID, bookingID string) (*domain.Booking, error) {
	return s.respond(ctx, callerID, bookingID, domain.BookingStatusAccepted, "", domain.NotificationApplicationAccepted)
}

func (s *bookingService) Reject(ctx context.Context, callerID, bookingID, reason string) (*domain.Booking, error) {
	return s.respond(ctx, callerID, bookingID, domain.BookingStatusRejected, reason, domain.NotificationApplicationRejected)
}

func (s *bookingService) respond(ctx context.Context, callerID, bookingID, next, reason, ntype string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	booking, profile, err := s.loadForOrganizer(ctx, callerID, bookingID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	err = s.bookingRepo.UpdateStatus(ctx, booking.ID, domain.BookingStatusPending, next, reason, &now)
	if err != nil {
		if errors.Is(err, domain.ErrPreconditionFailed) {
			return nil, fmt.Errorf("booking is not pending: %w", domain.ErrPreconditionFailed)
		}
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	s.recordTransition(ctx, booking.ID, domain.BookingStatusPending, next, reason, profile.ID)

	booking.Status = next
	booking.StatusReason = reason
	booking.RespondedAt = &now
	if recipientID, err := s.speakerProfileID(ctx, booking); err == nil {
		s.notifyTransition(ctx, booking, recipientID, ntype,
			fmt.Sprintf("your application was %s", next))
	}
	return booking, nil
}

const paymentReferenceLength = 10

var paymentReferenceAlphabet = []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")

func generatePaymentReference() (string, error) {
	b := make([]rune, paymentReferenceLength)
	max := big.NewInt(int64(len(paymentReferenceAlphabet)))
	for i := 0; i < paymentReferenceLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = paymentReferenceAlphabet[n.Int64()]
	}
	return "PAY-" + string(b), nil
}

func (s *bookingService) Pay(ctx context.Context, callerID, bookingID string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	booking, profile, err := s.loadForOrganizer(ctx, callerID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusAccepted {
		return nil, fmt.Errorf("booking is not accepted: %w", domain.ErrPreconditionFailed)
	}

	event, err := s.eventRepo.GetByID(ctx, booking.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	speaker, err := s.speakerRepo.GetByID(ctx, booking.SpeakerID)
	if err != nil {
		return nil, fmt.Errorf("get speaker: %w", err)
	}

	amount := speaker.HourlyRate * event.DurationHours
	if speaker.HourlyRate == 0 {
		amount = booking.AgreedRate
	}
	reference, err := generatePaymentReference()
	if err != nil {
		return nil, fmt.Errorf("generate payment reference: %w", err)
	}

	if err := s.bookingRepo.MarkPaid(ctx, booking.ID, reference, amount); err != nil {
		if errors.Is(err, domain.ErrPreconditionFailed) {
			return nil, fmt.Errorf("booking is not accepted: %w", domain.ErrPreconditionFailed)
		}
		return nil, fmt.Errorf("mark booking paid: %w", err)
	}
	s.recordTransition(ctx, booking.ID, domain.BookingStatusAccepted, domain.BookingStatusPaid, "payment recorded", profile.ID)

	booking.Status = domain.BookingStatusPaid
	booking.PaymentReference = reference
	booking.PaymentAmount = amount
	if recipientID, err := s.speakerProfileID(ctx, booking); err == nil {
		s.notifyTransition(ctx, booking, recipientID, domain.NotificationPaymentReceived,
			fmt.Sprintf("payment of %.2f recorded for %s", amount, event.Title))
	}
	return booking, nil
}

func (s *bookingService) Complete(ctx context.Context, callerID, bookingID string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.callerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}

	speaker, err := s.speakerRepo.GetByID(ctx, booking.SpeakerID)
	if err != nil {
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	// Either side of the engagement may mark it completed.
	if booking.OrganizerID != profile.ID && speaker.ProfileID != profile.ID {
		return nil, domain.ErrForbidden
	}
	if booking.Status != domain.BookingStatusPaid {
		return nil, fmt.Errorf("booking is not paid: %w", domain.ErrPreconditionFailed)
	}

	event, err := s.eventRepo.GetByID(ctx, booking.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	now := s.now()
	if earliest := event.EndTime().Add(domain.CompletionGrace); now.Before(earliest) {
		return nil, fmt.Errorf("event has not elapsed (completable after %s): %w",
			earliest.Format(time.RFC3339), domain.ErrPreconditionFailed)
	}

	err = s.bookingRepo.UpdateStatus(ctx, booking.ID, domain.BookingStatusPaid, domain.BookingStatusCompleted, "", nil)
	if err != nil {
		if errors.Is(err, domain.ErrPreconditionFailed) {
			return nil, fmt.Errorf("booking is not paid: %w", domain.ErrPreconditionFailed)
		}
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	s.recordTransition(ctx, booking.ID, domain.BookingStatusPaid, domain.BookingStatusCompleted, "", profile.ID)
	booking.Status = domain.BookingStatusCompleted

	// Derived counters are always recomputed from booking history, never
	// incremented blindly, so this agrees with the reconciliation sweep.
	if _, _, err := s.stats.RecomputeSpeaker(ctx, booking.SpeakerID); err != nil {
		return nil, fmt.Errorf("recompute speaker stats: %w", err)
	}
	s.checkEventCompletion(ctx, event)

	recipientID := speaker.ProfileID
	if profile.ID == speaker.ProfileID {
		recipientID = booking.OrganizerID
	}
	s.notifyTransition(ctx, booking, recipientID, domain.NotificationBookingCompleted,
		fmt.Sprintf("engagement for %s marked completed", event.Title))
	return booking, nil
}

// checkEventCompletion marks the event completed once no paid bookings
// remain. Best effort: a miss here is corrected the next time a booking for
// the event completes.
func (s *bookingService) checkEventCompletion(ctx context.Context, event *domain.Event) {
	remaining, err := s.bookingRepo.CountByEventAndStatus(ctx, event.ID, domain.BookingStatusPaid)
	if err != nil || remaining > 0 {
		return
	}
	for _, from := range []string{domain.EventStatusOpen, domain.EventStatusInProgress} {
		if err := s.eventRepo.UpdateStatus(ctx, event.ID, from, domain.EventStatusCompleted); err == nil {
			return
		}
	}
}

func (s *bookingService) Rate(ctx context.Context, callerID, bookingID string, rating int, comment string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", domain.ErrInvalidInput)
	}
	booking, _, err := s.loadForOrganizer(ctx, callerID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusCompleted {
		return nil, fmt.Errorf("booking is not completed: %w", domain.ErrPreconditionFailed)
	}
	if booking.Rated() {
		return nil, domain.ErrAlreadyRated
	}

	now := s.now()
	if err := s.bookingRepo.Rate(ctx, booking.ID, rating, comment, now); err != nil {
		if errors.Is(err, domain.ErrPreconditionFailed) {
			// Lost a race with another rating submission.
			return nil, domain.ErrAlreadyRated
		}
		return nil, fmt.Errorf("rate booking: %w", err)
	}
	booking.Rating = &rating
	booking.RatingComment = comment
	booking.RatedAt = &now

	if _, _, err := s.stats.RecomputeSpeaker(ctx, booking.SpeakerID); err != nil {
		return nil, fmt.Errorf("recompute speaker stats: %w", err)
	}
	if recipientID, err := s.speakerProfileID(ctx, booking); err == nil {
		s.notifyTransition(ctx, booking, recipientID, domain.NotificationBookingRated,
			fmt.Sprintf("you received a %d-star rating", rating))
	}
	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, callerID, bookingID, reason string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.callerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	speaker, err := s.speakerRepo.GetByID(ctx, booking.SpeakerID)
	if err != nil {
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	if booking.OrganizerID != profile.ID && speaker.ProfileID != profile.ID {
		return nil, domain.ErrForbidden
	}
	if !booking.Live() {
		return nil, fmt.Errorf("booking is already %s: %w", booking.Status, domain.ErrPreconditionFailed)
	}

	previous := booking.Status
	err = s.bookingRepo.UpdateStatus(ctx, booking.ID, previous, domain.BookingStatusCancelled, reason, nil)
	if err != nil {
		if errors.Is(err, domain.ErrPreconditionFailed) {
			return nil, fmt.Errorf("booking changed concurrently: %w", domain.ErrPreconditionFailed)
		}
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	s.recordTransition(ctx, booking.ID, previous, domain.BookingStatusCancelled, reason, profile.ID)
	booking.Status = domain.BookingStatusCancelled
	booking.StatusReason = reason

	recipientID := speaker.ProfileID
	if profile.ID == speaker.ProfileID {
		recipientID = booking.OrganizerID
	}
	s.notifyTransition(ctx, booking, recipientID, domain.NotificationBookingCancelled, "booking cancelled")
	return booking, nil
}

func (s *bookingService) Get(ctx context.Context, callerID, bookingID string) (*domain.BookingDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.callerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}
	detail, err := s.bookingRepo.GetDetail(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get booking detail: %w", err)
	}
	if detail.Booking.OrganizerID != profile.ID {
		speaker, err := s.speakerRepo.GetByID(ctx, detail.Booking.SpeakerID)
		if err != nil || speaker.ProfileID != profile.ID {
			return nil, domain.ErrForbidden
		}
	}
	return detail, nil
}

func (s *bookingService) ListForEvent(ctx context.Context, callerID, eventID string) ([]*domain.BookingDetail, error) {
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
	return s.bookingRepo.ListByEventID(ctx, eventID)
}

func (s *bookingService) ListAsSpeaker(ctx context.Context, callerID string) ([]*domain.BookingDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.callerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}
	speaker, err := s.speakerRepo.GetByProfileID(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []*domain.BookingDetail{}, nil
		}
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	return s.bookingRepo.ListBySpeakerID(ctx, speaker.ID)
}

func (s *bookingService) ListAsOrganizer(ctx context.Context, callerID string) ([]*domain.BookingDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.callerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.bookingRepo.ListByOrganizerID(ctx, profile.ID)
}

func (s *bookingService) CancelStale(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.bookingRepo.CancelStale(ctx, s.now(), "event elapsed without payment")
}
