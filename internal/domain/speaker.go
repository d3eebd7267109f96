package domain

import (
	"context"
	"time"
)

// Speaker experience levels.
const (
	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceExpert       = "expert"
)

// DefaultInviteExpiryDays is the invitation expiry a speaker gets until they
// configure their own.
const DefaultInviteExpiryDays = 7

// Speaker is the role-specific extension of a Profile. TotalTalks,
// AverageRating, and TotalEarnings are derived from booking history and are
// only written by the statistics aggregator.
// swagger:model Speaker
type Speaker struct {
	ID               string    `json:"id"`
	ProfileID        string    `json:"profile_id"`
	ExperienceLevel  string    `json:"experience_level"`
	HourlyRate       float64   `json:"hourly_rate"`
	Available        bool      `json:"available"`
	Verified         bool      `json:"verified"`
	TotalTalks       int       `json:"total_talks"`
	AverageRating    float64   `json:"average_rating"`
	TotalEarnings    float64   `json:"total_earnings"`
	Occupation       string    `json:"occupation"`
	Company          string    `json:"company"`
	Topics           []string  `json:"topics"`
	PortfolioURL     string    `json:"portfolio_url"`
	InviteExpiryDays int       `json:"invite_expiry_days"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SpeakerUpdate carries the speaker fields a profile owner may set;
// nil means "leave as is". Derived counters are not settable here.
type SpeakerUpdate struct {
	ExperienceLevel  *string
	HourlyRate       *float64
	Available        *bool
	Occupation       *string
	Company          *string
	Topics           []string
	PortfolioURL     *string
	InviteExpiryDays *int
}

// SpeakerFilter narrows the public speaker directory.
type SpeakerFilter struct {
	Topic           string
	ExperienceLevel string
	MaxHourlyRate   float64
	Search          string
}

// SpeakerListing is the read view for the speaker directory: speaker fields
// joined with the owning profile.
type SpeakerListing struct {
	Speaker *Speaker `json:"speaker"`
	Profile *Profile `json:"profile"`
}

// SpeakerStats holds the derived counters recomputed from booking history.
type SpeakerStats struct {
	TotalTalks    int
	TotalRatings  int
	AverageRating float64
	TotalEarnings float64
}

// SpeakerRepository defines storage for speaker extensions.
type SpeakerRepository interface {
	Create(ctx context.Context, s *Speaker) error
	GetByID(ctx context.Context, id string) (*Speaker, error)
	GetByProfileID(ctx context.Context, profileID string) (*Speaker, error)
	Update(ctx context.Context, id string, upd SpeakerUpdate) (*Speaker, error)
	// UpdateStats overwrites the derived counters.
	UpdateStats(ctx context.Context, id string, stats SpeakerStats) error
	List(ctx context.Context, filter SpeakerFilter, params PaginationParams) ([]*SpeakerListing, int, error)
	// ListIDs returns all speaker IDs, for the full reconciliation sweep.
	ListIDs(ctx context.Context) ([]string, error)
}
