package dbx

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the server inspects.
const (
	CodeUniqueViolation      = "23505"
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
)

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. Repositories use it to map constraint conflicts to sentinel
// errors.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeUniqueViolation
}

// IsSerializationFailure reports whether err is a transient conflict that a
// caller may safely retry.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == CodeSerializationFailure || pgErr.Code == CodeDeadlockDetected
}
