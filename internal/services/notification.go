package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"speakermarket/internal/domain"
)

type notificationService struct {
	notificationRepo domain.NotificationRepository
	profileRepo      domain.ProfileRepository

	contextTimeout time.Duration
}

// NewNotificationService creates a NotificationService with the given repositories.
func NewNotificationService(
	notificationRepo domain.NotificationRepository,
	profileRepo domain.ProfileRepository,
	timeout time.Duration,
) domain.NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		profileRepo:      profileRepo,
		contextTimeout:   timeout,
	}
}

func (s *notificationService) ListOwn(ctx context.Context, callerID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.profileRepo.GetByUserID(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get caller profile: %w", err)
	}
	notifications, total, err := s.notificationRepo.ListByRecipientID(ctx, profile.ID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, callerID, notificationID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.profileRepo.GetByUserID(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get caller profile: %w", err)
	}
	if err := s.notificationRepo.MarkRead(ctx, notificationID, profile.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
