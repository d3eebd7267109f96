package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"speakermarket/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{DB: db}
}

const profileColumns = `id, user_id, display_name, email, bio, location, avatar_url, website, role, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*domain.Profile, error) {
	p := &domain.Profile{}
	err := row.Scan(&p.ID, &p.UserID, &p.DisplayName, &p.Email, &p.Bio, &p.Location,
		&p.AvatarURL, &p.Website, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) Create(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, display_name, email, bio, location, avatar_url, website, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		p.UserID, p.DisplayName, p.Email, p.Bio, p.Location, p.AvatarURL, p.Website, p.Role, p.CreatedAt, p.UpdatedAt).
		Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.DB.QueryRowContext(ctx, query, id))
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	return scanProfile(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *profileRepository) Update(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.Profile, error) {
	query := `
		UPDATE profiles
		SET display_name = COALESCE($2, display_name),
		    bio          = COALESCE($3, bio),
		    location     = COALESCE($4, location),
		    avatar_url   = COALESCE($5, avatar_url),
		    website      = COALESCE($6, website),
		    updated_at   = $7
		WHERE id = $1
		RETURNING ` + profileColumns + `
	`
	return scanProfile(r.DB.QueryRowContext(ctx, query, id,
		upd.DisplayName, upd.Bio, upd.Location, upd.AvatarURL, upd.Website, time.Now()))
}
