package cron

import "errors"

var (
	// ErrNilStore is returned when a runner is constructed without a
	// schedule store.
	ErrNilStore = errors.New("schedule store cannot be nil")

	// ErrNoTasks is returned when AddTasks is called with an empty list.
	ErrNoTasks = errors.New("at least one task required")

	// ErrInvalidTask is returned when a task has no name, no run function
	// or a non-positive frequency.
	ErrInvalidTask = errors.New("task requires a name, a run function and a positive frequency")
)
