package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"speakermarket/internal/domain"
)

type eventService struct {
	eventRepo   domain.EventRepository
	topicRepo   domain.TopicRepository
	profileRepo domain.ProfileRepository
	historyRepo domain.StatusHistoryRepository

	contextTimeout time.Duration
	now            func() time.Time
}

// NewEventService creates an EventService with the given repositories.
func NewEventService(
	eventRepo domain.EventRepository,
	topicRepo domain.TopicRepository,
	profileRepo domain.ProfileRepository,
	historyRepo domain.StatusHistoryRepository,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		topicRepo:      topicRepo,
		profileRepo:    profileRepo,
		historyRepo:    historyRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) callerProfile(ctx context.Context, callerID string) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get caller profile: %w", err)
	}
	return profile, nil
}

func (s *eventService) Create(ctx context.Context, callerID string, event *domain.Event) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.callerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !profile.CanOrganize() {
		return nil, domain.ErrForbidden
	}

	if strings.TrimSpace(event.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	}
	if event.DurationHours <= 0 {
		return nil, fmt.Errorf("duration must be positive: %w", domain.ErrInvalidInput)
	}
	now := s.now()
	if !event.DateTime.After(now) {
		return nil, fmt.Errorf("event date must be in the future: %w", domain.ErrInvalidInput)
	}
	if event.BudgetMin < 0 || event.BudgetMax < 0 || (event.BudgetMax > 0 && event.BudgetMin > event.BudgetMax) {
		return nil, fmt.Errorf("invalid budget range: %w", domain.ErrInvalidInput)
	}

	event.OrganizerID = profile.ID
	event.Status = domain.EventStatusOpen
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	if len(event.Topics) > 0 {
		if err := s.topicRepo.SetEventTopics(ctx, event.ID, event.Topics); err != nil {
			return nil, fmt.Errorf("set event topics: %w", err)
		}
	}
	return event, nil
}

func (s *eventService) Get(ctx context.Context, id string) (*domain.EventWithOrganizer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetWithOrganizer(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.EventWithOrganizer, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) ListOwn(ctx context.Context, callerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.callerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListByOrganizerID(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("list own events: %w", err)
	}
	return events, nil
}

func (s *eventService) Cancel(ctx context.Context, callerID, eventID, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.callerProfile(ctx, callerID)
	if err != nil {
		return err
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != profile.ID {
		return domain.ErrForbidden
	}
	if event.Status != domain.EventStatusOpen && event.Status != domain.EventStatusInProgress {
		return fmt.Errorf("event is %s: %w", event.Status, domain.ErrPreconditionFailed)
	}

	if err := s.eventRepo.UpdateStatus(ctx, eventID, event.Status, domain.EventStatusCancelled); err != nil {
		if errors.Is(err, domain.ErrPreconditionFailed) {
			return fmt.Errorf("event status changed: %w", domain.ErrPreconditionFailed)
		}
		return fmt.Errorf("cancel event: %w", err)
	}
	_ = s.historyRepo.Append(ctx, &domain.StatusHistory{
		EntityType:     domain.EntityEvent,
		EntityID:       eventID,
		PreviousStatus: event.Status,
		NewStatus:      domain.EventStatusCancelled,
		Reason:         reason,
		ActorID:        profile.ID,
		CreatedAt:      s.now(),
	})
	return nil
}
