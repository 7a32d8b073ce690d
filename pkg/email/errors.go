package email

import "errors"

var (
	// ErrInvalidConfig is returned when a sender is constructed with
	// incomplete or malformed configuration.
	ErrInvalidConfig = errors.New("invalid email config")

	// ErrInvalidMessage is returned when a message fails validation before
	// any send is attempted.
	ErrInvalidMessage = errors.New("invalid email message")

	// ErrSendFailed is returned when the provider rejects or fails a send.
	ErrSendFailed = errors.New("failed to send email")
)
