package bus

import "errors"

var (
	// ErrInvalidConnectURL is returned when the configured bus endpoint is unusable.
	ErrInvalidConnectURL = errors.New("bus.errors.invalid_connect_url")

	// ErrInvalidEvent is returned for events missing required envelope fields.
	ErrInvalidEvent = errors.New("bus.errors.invalid_event")

	// ErrPostFailed is returned when the bus rejects or fails to accept an event.
	ErrPostFailed = errors.New("bus.errors.post_failed")
)
