package kermesse

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// ErrActorNotFound is the error we return when an actor lookup matches no record
var ErrActorNotFound = errors.New("actor not found")

// ErrUnableToFindSession is the error when storage has no persisted session
var ErrUnableToFindSession = errors.New("unable to find session")

// ErrUnableToParseData parse error for persisted session JSON
var ErrUnableToParseData = errors.New("unable to parse data")

// ErrNoEmptyString guards hashing of empty passwords
var ErrNoEmptyString = errors.New("password cannot be an empty string")

// ErrMismatchedHashAndPassword wrong password
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password")

// ErrReadOnlyEntity is returned when mutating an entity sourced from a
// read-only external system
var ErrReadOnlyEntity = errors.New("entity is read only")

// ErrLoginRejected is returned when the identity gateway refuses the
// credentials. It is a caller-facing result, never thrown past login.
var ErrLoginRejected = goerrors.New("login rejected", goerrors.CategoryAuth).
	WithTextCode("LOGIN_REJECTED").
	WithCode(goerrors.CodeUnauthorized)

// ErrSessionExpired marks a session whose expiry has passed
var ErrSessionExpired = goerrors.New("session expired", goerrors.CategoryAuth).
	WithTextCode("SESSION_EXPIRED").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired marks an expired session descriptor
var ErrTokenExpired = goerrors.New("token expired", goerrors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed marks an undecodable session descriptor
var ErrTokenMalformed = goerrors.New("token malformed", goerrors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(goerrors.CodeUnauthorized)

// ErrTooManyLoginAttempts puts an agent in a cool-down window
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryAuth).
	WithTextCode("TOO_MANY_ATTEMPTS").
	WithCode(goerrors.CodeUnauthorized)

// loginRejected attaches a rejection reason to a clone of ErrLoginRejected so
// the shared sentinel never carries per-call metadata.
func loginRejected(reason string) error {
	clone := ErrLoginRejected.Clone()
	if clone == nil {
		return ErrLoginRejected
	}
	clone.Source = ErrLoginRejected
	return clone.WithMetadata(map[string]any{
		"reason": reason,
	})
}

// IsRejection reports whether err is a credential rejection rather than a
// transport failure. Rejections are surfaced as boolean login outcomes.
func IsRejection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMismatchedHashAndPassword) || errors.Is(err, ErrActorNotFound) {
		return true
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryAuth
	}
	return false
}
