package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"speakermarket/internal/domain"
)

type statsService struct {
	speakerRepo domain.SpeakerRepository
	bookingRepo domain.BookingRepository
	eventRepo   domain.EventRepository
	statsRepo   domain.StatsRepository

	contextTimeout time.Duration
}

// NewStatsService creates a StatsService with the given repositories.
func NewStatsService(
	speakerRepo domain.SpeakerRepository,
	bookingRepo domain.BookingRepository,
	eventRepo domain.EventRepository,
	statsRepo domain.StatsRepository,
	timeout time.Duration,
) domain.StatsService {
	return &statsService{
		speakerRepo:    speakerRepo,
		bookingRepo:    bookingRepo,
		eventRepo:      eventRepo,
		statsRepo:      statsRepo,
		contextTimeout: timeout,
	}
}

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// computeStats derives the speaker counters from their full booking history:
// total talks and earnings over completed bookings, average over rated ones.
func computeStats(bookings []*domain.Booking) domain.SpeakerStats {
	var stats domain.SpeakerStats
	var ratingSum int
	for _, b := range bookings {
		if b.Status == domain.BookingStatusCompleted {
			stats.TotalTalks++
			stats.TotalEarnings += b.PaymentAmount
		}
		if b.Rated() && b.Rating != nil {
			stats.TotalRatings++
			ratingSum += *b.Rating
		}
	}
	if stats.TotalRatings > 0 {
		stats.AverageRating = round2(float64(ratingSum) / float64(stats.TotalRatings))
	}
	stats.TotalEarnings = round2(stats.TotalEarnings)
	return stats
}

func (s *statsService) RecomputeSpeaker(ctx context.Context, speakerID string) (domain.SpeakerStats, bool, error) {
	speaker, err := s.speakerRepo.GetByID(ctx, speakerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SpeakerStats{}, false, domain.ErrNotFound
		}
		return domain.SpeakerStats{}, false, fmt.Errorf("get speaker: %w", err)
	}

	bookings, err := s.bookingRepo.ListAllBySpeakerID(ctx, speakerID)
	if err != nil {
		return domain.SpeakerStats{}, false, fmt.Errorf("list bookings: %w", err)
	}
	stats := computeStats(bookings)

	// Write only when something changed, so repeated sweeps are no-ops and
	// column-watching triggers don't fire needlessly.
	if stats.TotalTalks == speaker.TotalTalks &&
		stats.AverageRating == speaker.AverageRating &&
		stats.TotalEarnings == speaker.TotalEarnings {
		return stats, false, nil
	}
	if err := s.speakerRepo.UpdateStats(ctx, speakerID, stats); err != nil {
		return domain.SpeakerStats{}, false, fmt.Errorf("update speaker stats: %w", err)
	}
	return stats, true, nil
}

func (s *statsService) SyncAll(ctx context.Context) ([]domain.SpeakerSyncResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ids, err := s.speakerRepo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}

	results := make([]domain.SpeakerSyncResult, 0, len(ids))
	for _, id := range ids {
		result := domain.SpeakerSyncResult{SpeakerID: id}
		stats, updated, err := s.RecomputeSpeaker(ctx, id)
		if err != nil {
			// One speaker failing must not abort the sweep.
			result.Err = err.Error()
		} else {
			result.Stats = stats
			result.Updated = updated
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *statsService) ApplicationStats(ctx context.Context, callerID string) (*domain.ApplicationStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	stats, err := s.statsRepo.GetApplicationStats(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("get application stats: %w", err)
	}
	return stats, nil
}

func (s *statsService) InvitationStats(ctx context.Context, callerID, eventID string) (*domain.InvitationStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// Only the organizer sees invitation stats for their event.
	event, err := s.eventRepo.GetWithOrganizer(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.Organizer.UserID != callerID {
		return nil, domain.ErrForbidden
	}

	stats, err := s.statsRepo.GetInvitationStats(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get invitation stats: %w", err)
	}
	return stats, nil
}
