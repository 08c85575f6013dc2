package oracle

import "errors"

var (
	// ErrUnavailable means the inference service could not be reached or
	// returned a service-level failure.
	ErrUnavailable = errors.New("oracle unavailable")

	// ErrInvalidResponse means the oracle answered, but the body was
	// unparsable or violated the structured response schema. This is a hard
	// failure: an incomplete analysis is never passed on with empty fields.
	ErrInvalidResponse = errors.New("oracle response invalid")

	// ErrTimeout means the call exceeded the configured upper bound.
	ErrTimeout = errors.New("oracle timeout")
)
