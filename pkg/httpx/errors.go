package httpx

import "errors"

var (
	// ErrMissingContentType is returned when a body-carrying request has no
	// Content-Type header.
	ErrMissingContentType = errors.New("missing content type")

	// ErrUnsupportedMediaType is returned for non-JSON request bodies.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrInvalidJSON is returned for bodies that do not decode into the
	// target struct.
	ErrInvalidJSON = errors.New("invalid json body")
)
