package domain

import (
	"context"
	"time"
)

// User is the authentication identity. Person-facing attributes live on
// Profile; a user always has exactly one profile.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// AuthService defines the business logic for signup and login.
type AuthService interface {
	// SignUp creates a user and its profile. role is one of RoleSpeaker,
	// RoleOrganizer, RoleBoth.
	SignUp(ctx context.Context, email, password, displayName, role string) (*User, *Profile, error)
	// Login verifies credentials and returns a bearer token.
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}
