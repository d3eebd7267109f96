package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"speakermarket/internal/domain"
)

type profileService struct {
	profileRepo domain.ProfileRepository
	speakerRepo domain.SpeakerRepository

	contextTimeout time.Duration
}

// NewProfileService creates a ProfileService with the given repositories.
func NewProfileService(
	profileRepo domain.ProfileRepository,
	speakerRepo domain.SpeakerRepository,
	timeout time.Duration,
) domain.ProfileService {
	return &profileService{
		profileRepo:    profileRepo,
		speakerRepo:    speakerRepo,
		contextTimeout: timeout,
	}
}

func (s *profileService) GetOwn(ctx context.Context, userID string) (*domain.Profile, *domain.Speaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get profile: %w", err)
	}

	speaker, err := s.speakerRepo.GetByProfileID(ctx, profile.ID)
	if err != nil {
		// A profile without a speaker extension is normal for organizers.
		if errors.Is(err, domain.ErrNotFound) {
			return profile, nil, nil
		}
		return nil, nil, fmt.Errorf("get speaker: %w", err)
	}
	return profile, speaker, nil
}

func (s *profileService) UpdateOwn(ctx context.Context, userID string, upd domain.ProfileUpdate) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if upd.DisplayName != nil && *upd.DisplayName == "" {
		return nil, fmt.Errorf("display name cannot be empty: %w", domain.ErrInvalidInput)
	}

	updated, err := s.profileRepo.Update(ctx, profile.ID, upd)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return updated, nil
}

func (s *profileService) UpsertSpeaker(ctx context.Context, userID string, upd domain.SpeakerUpdate) (*domain.Speaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if !profile.CanSpeak() {
		return nil, domain.ErrForbidden
	}
	if err := validateSpeakerUpdate(upd); err != nil {
		return nil, err
	}

	speaker, err := s.speakerRepo.GetByProfileID(ctx, profile.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get speaker: %w", err)
		}
		now := time.Now()
		speaker = &domain.Speaker{
			ProfileID:        profile.ID,
			ExperienceLevel:  domain.ExperienceBeginner,
			Available:        true,
			InviteExpiryDays: domain.DefaultInviteExpiryDays,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		applySpeakerUpdate(speaker, upd)
		if err := s.speakerRepo.Create(ctx, speaker); err != nil {
			return nil, fmt.Errorf("create speaker: %w", err)
		}
		return speaker, nil
	}

	updated, err := s.speakerRepo.Update(ctx, speaker.ID, upd)
	if err != nil {
		return nil, fmt.Errorf("update speaker: %w", err)
	}
	return updated, nil
}

func (s *profileService) SearchSpeakers(ctx context.Context, filter domain.SpeakerFilter, params domain.PaginationParams) ([]*domain.SpeakerListing, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	listings, total, err := s.speakerRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list speakers: %w", err)
	}
	return listings, total, nil
}

func validateSpeakerUpdate(upd domain.SpeakerUpdate) error {
	if upd.ExperienceLevel != nil {
		switch *upd.ExperienceLevel {
		case domain.ExperienceBeginner, domain.ExperienceIntermediate, domain.ExperienceExpert:
		default:
			return fmt.Errorf("unknown experience level %q: %w", *upd.ExperienceLevel, domain.ErrInvalidInput)
		}
	}
	if upd.HourlyRate != nil && *upd.HourlyRate < 0 {
		return fmt.Errorf("hourly rate cannot be negative: %w", domain.ErrInvalidInput)
	}
	if upd.InviteExpiryDays != nil && *upd.InviteExpiryDays <= 0 {
		return fmt.Errorf("invite expiry must be positive: %w", domain.ErrInvalidInput)
	}
	return nil
}

func applySpeakerUpdate(speaker *domain.Speaker, upd domain.SpeakerUpdate) {
	if upd.ExperienceLevel != nil {
		speaker.ExperienceLevel = *upd.ExperienceLevel
	}
	if upd.HourlyRate != nil {
		speaker.HourlyRate = *upd.HourlyRate
	}
	if upd.Available != nil {
		speaker.Available = *upd.Available
	}
	if upd.Occupation != nil {
		speaker.Occupation = *upd.Occupation
	}
	if upd.Company != nil {
		speaker.Company = *upd.Company
	}
	if upd.Topics != nil {
		speaker.Topics = upd.Topics
	}
	if upd.PortfolioURL != nil {
		speaker.PortfolioURL = *upd.PortfolioURL
	}
	if upd.InviteExpiryDays != nil {
		speaker.InviteExpiryDays = *upd.InviteExpiryDays
	}
}
