package config

import "errors"

var (
	// ErrNilPointer is returned when Load receives a nil destination.
	ErrNilPointer = errors.New("config destination cannot be nil")

	// ErrParsingConfig is returned when the environment cannot be parsed
	// into the destination struct.
	ErrParsingConfig = errors.New("failed to parse environment into config")

	// ErrLoadingEnvFile is returned when an explicitly named .env file
	// cannot be read.
	ErrLoadingEnvFile = errors.New("failed to load env file")
)
