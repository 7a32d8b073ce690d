package taskqueue

import "errors"

var (
	// ErrNilPool is returned when a nil connection pool is provided.
	ErrNilPool = errors.New("connection pool cannot be nil")

	// ErrPayloadMarshal is returned when a payload cannot be serialized.
	ErrPayloadMarshal = errors.New("failed to marshal queue payload")

	// ErrQueueFailure wraps store-level failures of queue operations.
	ErrQueueFailure = errors.New("task queue operation failed")
)
