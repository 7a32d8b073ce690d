package record

import "errors"

var (
	// ErrNilPool is returned when a nil connection pool is provided.
	ErrNilPool = errors.New("connection pool cannot be nil")

	// ErrNilStore is returned when a mapper is constructed without a store.
	ErrNilStore = errors.New("store cannot be nil")

	// ErrNoPrimaryKey is returned when an operation needs a primary key but
	// the definition has none, which means it was never composed.
	ErrNoPrimaryKey = errors.New("definition has no primary key field")

	// ErrNoIdentifier is returned by Load when none of the candidate
	// identifier fields holds a usable value, and by RemoveRecord when the
	// instance has no primary key value. This is a caller bug.
	ErrNoIdentifier = errors.New("no usable identifier on instance")

	// ErrNotFound is returned by Load when no row matches the resolved
	// identifier. Recoverable; the caller decides what it means.
	ErrNotFound = errors.New("record not found")

	// ErrEmptyConstraints is returned by Find when no constraints are given.
	ErrEmptyConstraints = errors.New("find requires at least one constraint")

	// ErrStoreFailure wraps connectivity and query errors surfaced by a Store
	// implementation. The originating error is always joined in.
	ErrStoreFailure = errors.New("store operation failed")
)
