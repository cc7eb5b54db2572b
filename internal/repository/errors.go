package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate is returned when an insert or update violates a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// ErrMissingReference is returned when a foreign key target does not exist.
var ErrMissingReference = errors.New("missing reference")

// Foreign keys on user_id. Postgres names unnamed column references
// <table>_<column>_fkey.
const (
	InteractionsUserFK = "interactions_user_id_fkey"
	SavedVideosUserFK  = "saved_videos_user_id_fkey"
)

// MissingUser reports whether err is a foreign key violation on a user_id
// column, i.e. the acting account no longer exists.
func MissingUser(err error) bool {
	if !errors.Is(err, ErrMissingReference) {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, InteractionsUserFK) || strings.Contains(msg, SavedVideosUserFK)
}

// Postgres SQLSTATE codes.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// translate maps constraint violations onto repository sentinels and leaves
// every other error untouched.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	case foreignKeyViolation:
		return fmt.Errorf("%w: %s", ErrMissingReference, pgErr.ConstraintName)
	}
	return err
}
