package async

import "errors"

var (
	// ErrTimeout is returned by AwaitWithTimeout when the future does not
	// complete in time. The underlying goroutine keeps running.
	ErrTimeout = errors.New("async: timed out waiting for future")
)
