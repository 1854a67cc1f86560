package registry

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown username and a wrong
	// password alike, so callers cannot probe which usernames exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("already exists")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")

	// ErrLastAdmin guards the lockout invariant: at least one account must
	// keep the admin flag at all times.
	ErrLastAdmin = errors.New("cannot remove admin status from the only admin")
)
