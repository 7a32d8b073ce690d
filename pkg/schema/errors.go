package schema

import "errors"

var (
	// ErrMissingTable is returned when a definition has no table name.
	ErrMissingTable = errors.New("schema definition requires a table name")

	// ErrMultiplePrimaryKeys is returned when a caller definition declares
	// more than one primary key field.
	ErrMultiplePrimaryKeys = errors.New("schema definition allows exactly one primary key")
)
