package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("auth: user not found")

	// ErrAlreadyExists is returned when a sign-up collides with an
	// existing email.
	ErrAlreadyExists = errors.New("auth: user already exists")

	// ErrInvalidToken is the umbrella for every credential rejection.
	// Callers that need to answer uniformly match on this one; the
	// wrapped variants below exist for logging.
	ErrInvalidToken = errors.New("invalid token")

	ErrTokenMissing   = fmt.Errorf("%w: missing", ErrInvalidToken)
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenExpired   = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrBadSignature   = fmt.Errorf("%w: bad signature", ErrInvalidToken)
)
