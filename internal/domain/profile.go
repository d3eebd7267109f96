package domain

import (
	"context"
	"time"
)

// Profile roles.
const (
	RoleSpeaker   = "speaker"
	RoleOrganizer = "organizer"
	RoleBoth      = "both"
)

// Profile represents a person in the marketplace: a speaker, an organizer,
// or both. One-to-one with User.
// swagger:model Profile
type Profile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Bio         string    `json:"bio"`
	Location    string    `json:"location"`
	AvatarURL   string    `json:"avatar_url"`
	Website     string    `json:"website"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProfile returns a new Profile. ID is set by the repository on create.
func NewProfile(userID, displayName, email, role string, createdAt, updatedAt time.Time) *Profile {
	return &Profile{
		UserID:      userID,
		DisplayName: displayName,
		Email:       email,
		Role:        role,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// CanSpeak reports whether the profile may act as a speaker.
func (p *Profile) CanSpeak() bool { return p.Role == RoleSpeaker || p.Role == RoleBoth }

// CanOrganize reports whether the profile may act as an organizer.
func (p *Profile) CanOrganize() bool { return p.Role == RoleOrganizer || p.Role == RoleBoth }

// ProfileUpdate carries the mutable profile fields; nil means "leave as is".
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	Location    *string
	AvatarURL   *string
	Website     *string
}

// ProfileRepository defines storage for profiles.
type ProfileRepository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, id string, upd ProfileUpdate) (*Profile, error)
}

// ProfileService defines profile and speaker-extension management for the
// authenticated user. Every operation takes the caller's user ID explicitly.
type ProfileService interface {
	GetOwn(ctx context.Context, userID string) (*Profile, *Speaker, error)
	UpdateOwn(ctx context.Context, userID string, upd ProfileUpdate) (*Profile, error)
	// UpsertSpeaker creates or updates the caller's speaker extension.
	UpsertSpeaker(ctx context.Context, userID string, upd SpeakerUpdate) (*Speaker, error)
	// SearchSpeakers lists available speakers for the public directory.
	SearchSpeakers(ctx context.Context, filter SpeakerFilter, params PaginationParams) ([]*SpeakerListing, int, error)
}
