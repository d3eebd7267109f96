package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"speakermarket/internal/domain"
)

type speakerRepository struct {
	DB *sql.DB
}

func NewSpeakerRepository(db *sql.DB) domain.SpeakerRepository {
	return &speakerRepository{DB: db}
}

const speakerColumns = `id, profile_id, experience_level, hourly_rate, available, verified,
		total_talks, average_rating, total_earnings, occupation, company, topics,
		portfolio_url, invite_expiry_days, created_at, updated_at`

func scanSpeaker(row interface{ Scan(...any) error }) (*domain.Speaker, error) {
	s := &domain.Speaker{}
	err := row.Scan(&s.ID, &s.ProfileID, &s.ExperienceLevel, &s.HourlyRate, &s.Available,
		&s.Verified, &s.TotalTalks, &s.AverageRating, &s.TotalEarnings, &s.Occupation,
		&s.Company, pq.Array(&s.Topics), &s.PortfolioURL, &s.InviteExpiryDays,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *speakerRepository) Create(ctx context.Context, s *domain.Speaker) error {
	query := `
		INSERT INTO speakers (profile_id, experience_level, hourly_rate, available, verified,
			occupation, company, topics, portfolio_url, invite_expiry_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		s.ProfileID, s.ExperienceLevel, s.HourlyRate, s.Available, s.Verified,
		s.Occupation, s.Company, pq.Array(s.Topics), s.PortfolioURL, s.InviteExpiryDays,
		s.CreatedAt, s.UpdatedAt).
		Scan(&s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *speakerRepository) GetByID(ctx context.Context, id string) (*domain.Speaker, error) {
	query := `SELECT ` + speakerColumns + ` FROM speakers WHERE id = $1`
	return scanSpeaker(r.DB.QueryRowContext(ctx, query, id))
}

func (r *speakerRepository) GetByProfileID(ctx context.Context, profileID string) (*domain.Speaker, error) {
	query := `SELECT ` + speakerColumns + ` FROM speakers WHERE profile_id = $1`
	return scanSpeaker(r.DB.QueryRowContext(ctx, query, profileID))
}

func (r *speakerRepository) Update(ctx context.Context, id string, upd domain.SpeakerUpdate) (*domain.Speaker, error) {
	// Topics is replaced wholesale when non-nil; scalar fields use COALESCE
	// to keep the stored value on nil.
	var topics any
	if upd.Topics != nil {
		topics = pq.Array(upd.Topics)
	}
	query := `
		UPDATE speakers
		SET experience_level   = COALESCE($2, experience_level),
		    hourly_rate        = COALESCE($3, hourly_rate),
		    available          = COALESCE($4, available),
		    occupation         = COALESCE($5, occupation),
		    company            = COALESCE($6, company),
		    topics             = COALESCE($7, topics),
		    portfolio_url      = COALESCE($8, portfolio_url),
		    invite_expiry_days = COALESCE($9, invite_expiry_days),
		    updated_at         = $10
		WHERE id = $1
		RETURNING ` + speakerColumns + `
	`
	return scanSpeaker(r.DB.QueryRowContext(ctx, query, id,
		upd.ExperienceLevel, upd.HourlyRate, upd.Available, upd.Occupation, upd.Company,
		topics, upd.PortfolioURL, upd.InviteExpiryDays, time.Now()))
}

func (r *speakerRepository) UpdateStats(ctx context.Context, id string, stats domain.SpeakerStats) error {
	query := `
		UPDATE speakers
		SET total_talks = $2, average_rating = $3, total_earnings = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, id, stats.TotalTalks, stats.AverageRating, stats.TotalEarnings, time.Now())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *speakerRepository) List(ctx context.Context, filter domain.SpeakerFilter, params domain.PaginationParams) ([]*domain.SpeakerListing, int, error) {
	where := `
		WHERE s.available = true
		  AND ($1 = '' OR $1 = ANY (s.topics))
		  AND ($2 = '' OR s.experience_level = $2)
		  AND ($3 = 0 OR s.hourly_rate <= $3)
		  AND ($4 = '' OR p.display_name ILIKE '%' || $4 || '%')
	`
	countQuery := `SELECT COUNT(*) FROM speakers s JOIN profiles p ON p.id = s.profile_id ` + where
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery,
		filter.Topic, filter.ExperienceLevel, filter.MaxHourlyRate, filter.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT s.id, s.profile_id, s.experience_level, s.hourly_rate, s.available, s.verified,
		       s.total_talks, s.average_rating, s.total_earnings, s.occupation, s.company, s.topics,
		       s.portfolio_url, s.invite_expiry_days, s.created_at, s.updated_at,
		       p.id, p.user_id, p.display_name, p.email, p.bio, p.location, p.avatar_url, p.website, p.role,
		       p.created_at, p.updated_at
		FROM speakers s
		JOIN profiles p ON p.id = s.profile_id
	` + where + `
		ORDER BY s.average_rating DESC, s.total_talks DESC
		LIMIT $5 OFFSET $6
	`
	rows, err := r.DB.QueryContext(ctx, query,
		filter.Topic, filter.ExperienceLevel, filter.MaxHourlyRate, filter.Search,
		params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var listings []*domain.SpeakerListing
	for rows.Next() {
		s := &domain.Speaker{}
		p := &domain.Profile{}
		if err := rows.Scan(&s.ID, &s.ProfileID, &s.ExperienceLevel, &s.HourlyRate, &s.Available,
			&s.Verified, &s.TotalTalks, &s.AverageRating, &s.TotalEarnings, &s.Occupation,
			&s.Company, pq.Array(&s.Topics), &s.PortfolioURL, &s.InviteExpiryDays,
			&s.CreatedAt, &s.UpdatedAt,
			&p.ID, &p.UserID, &p.DisplayName, &p.Email, &p.Bio, &p.Location,
			&p.AvatarURL, &p.Website, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		listings = append(listings, &domain.SpeakerListing{Speaker: s, Profile: p})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if listings == nil {
		listings = []*domain.SpeakerListing{}
	}
	return listings, total, nil
}

func (r *speakerRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM speakers ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
