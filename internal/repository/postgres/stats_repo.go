package postgres

import (
	"context"
	"database/sql"
	"errors"

	"speakermarket/internal/domain"
)

type statsRepository struct {
	DB *sql.DB
}

// NewStatsRepository wraps the server-side aggregate functions defined in
// migrations/002_functions.sql.
func NewStatsRepository(db *sql.DB) domain.StatsRepository {
	return &statsRepository{DB: db}
}

func (r *statsRepository) GetApplicationStats(ctx context.Context, userID string) (*domain.ApplicationStats, error) {
	query := `
		SELECT total, pending, accepted, rejected, completed, response_rate, avg_response_time_hours
		FROM get_application_stats($1)
	`
	stats := &domain.ApplicationStats{}
	err := r.DB.QueryRowContext(ctx, query, userID).
		Scan(&stats.Total, &stats.Pending, &stats.Accepted, &stats.Rejected,
			&stats.Completed, &stats.ResponseRate, &stats.AvgResponseTimeHours)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return stats, nil
}

func (r *statsRepository) GetInvitationStats(ctx context.Context, eventID string) (*domain.InvitationStats, error) {
	query := `
		SELECT total, pending, accepted, declined, expired
		FROM get_invitation_stats($1)
	`
	stats := &domain.InvitationStats{}
	err := r.DB.QueryRowContext(ctx, query, eventID).
		Scan(&stats.Total, &stats.Pending, &stats.Accepted, &stats.Declined, &stats.Expired)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return stats, nil
}
