package registry

import "errors"

var (
	// ErrNilMapper is returned when a registry is constructed without a
	// record mapper.
	ErrNilMapper = errors.New("record mapper cannot be nil")

	// ErrDecodeDocument is returned when the stored configuration document
	// cannot be interpreted as a JSON object.
	ErrDecodeDocument = errors.New("failed to decode configuration document")
)
