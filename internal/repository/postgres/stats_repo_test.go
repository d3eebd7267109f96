package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestStatsRepository_GetApplicationStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM get_application_stats`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"total", "pending", "accepted", "rejected", "completed", "response_rate", "avg_response_time_hours",
		}).AddRow(10, 2, 5, 3, 4, 80.0, 12.5))

	repo := NewStatsRepository(db)
	stats, err := repo.GetApplicationStats(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, 10, stats.Total)
	require.Equal(t, 80.0, stats.ResponseRate)
	require.Equal(t, 12.5, stats.AvgResponseTimeHours)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepository_GetInvitationStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM get_invitation_stats`).
		WithArgs("event-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"total", "pending", "accepted", "declined", "expired",
		}).AddRow(6, 1, 3, 1, 1))

	repo := NewStatsRepository(db)
	stats, err := repo.GetInvitationStats(context.Background(), "event-1")
	require.NoError(t, err)
	require.Equal(t, 6, stats.Total)
	require.Equal(t, 3, stats.Accepted)
	require.Equal(t, 1, stats.Expired)
	require.NoError(t, mock.ExpectationsWereMet())
}
