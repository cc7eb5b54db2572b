package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vortex07x/steamsurf/internal/repository"
)

// Error kinds surfaced to the HTTP layer.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream failure")

	// ErrCannotModifySelf is a Forbidden case: admins acting on their own account.
	ErrCannotModifySelf = fmt.Errorf("%w: cannot modify own account", ErrForbidden)
)

// Error pairs an error kind with a message that is safe to show to clients.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func invalid(msg string) error {
	return newError(ErrValidation, msg)
}

// notFound maps pgx.ErrNoRows to ErrNotFound and passes other errors through.
func notFound(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return newError(ErrNotFound, msg)
	}
	return err
}

// conflict maps unique violations to ErrConflict and passes other errors through.
func conflict(err error, msg string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return newError(ErrConflict, msg)
	}
	return err
}

// Message returns the client-facing message of a service error, or fallback
// for anything else.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return fallback
}
