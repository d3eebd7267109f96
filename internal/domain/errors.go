package domain

import "errors"

// Sentinel errors shared across services and repositories. Repositories map
// driver-level failures (sql.ErrNoRows, unique violations) onto these;
// controllers map them onto HTTP status codes.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicate          = errors.New("duplicate entry")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrAlreadyRated       = errors.New("booking already rated")
	ErrInvitationExpired  = errors.New("invitation expired")
)
