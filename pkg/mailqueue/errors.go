package mailqueue

import "errors"

var (
	// ErrNilQueue is returned when a consumer or producer call is missing
	// the queue store.
	ErrNilQueue = errors.New("queue store cannot be nil")

	// ErrNilSender is returned when a consumer is constructed without a
	// sender.
	ErrNilSender = errors.New("email sender cannot be nil")
)
