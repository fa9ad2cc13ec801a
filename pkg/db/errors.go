package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsUniqueViolation reports whether err carries a unique constraint violation.
func IsUniqueViolation(err error) bool {
	_, ok := ViolatedConstraint(err)
	return ok
}

// ViolatedConstraint returns the name of the unique constraint err violated.
// The name is empty when the server did not report one.
func ViolatedConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != UniqueViolation {
		return "", false
	}
	return pgErr.ConstraintName, true
}
