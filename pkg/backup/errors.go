package backup

import "errors"

var (
	// ErrNilTransport is returned when a service is constructed without a
	// transport.
	ErrNilTransport = errors.New("backup transport cannot be nil")

	// ErrDumpFailed is returned when pg_dump exits with an error.
	ErrDumpFailed = errors.New("database dump failed")

	// ErrTransportFailed is returned when the finished dump cannot be
	// delivered.
	ErrTransportFailed = errors.New("failed to deliver backup")
)
