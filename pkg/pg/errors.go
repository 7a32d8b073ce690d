package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrParseConfig is returned when the connection string is malformed.
	ErrParseConfig = errors.New("failed to parse postgres config")

	// ErrConnectionFailed is returned when every connection attempt failed.
	ErrConnectionFailed = errors.New("failed to open postgres connection")

	// ErrHealthcheckFailed is returned when the pool stops answering pings.
	ErrHealthcheckFailed = errors.New("postgres healthcheck failed")
)

// IsNotFoundError reports whether err is a pgx "no rows" result.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError reports whether err is a unique constraint violation
// (SQLSTATE 23505).
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolationError reports whether err is a referential integrity
// violation (SQLSTATE 23503).
func IsForeignKeyViolationError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
