package trigger

import "errors"

var (
	// ErrNilKeySource is returned when a router is built without a key
	// source.
	ErrNilKeySource = errors.New("key source cannot be nil")

	// ErrNilRunner is returned when a router is built without a runner.
	ErrNilRunner = errors.New("cron runner cannot be nil")
)
