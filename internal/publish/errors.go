package publish

import "errors"

var (
	// ErrClosed is returned when publishing to a closed publisher.
	ErrClosed = errors.New("publisher closed")

	// ErrNotConnected is returned when the MQTT broker is unreachable.
	ErrNotConnected = errors.New("mqtt: not connected")

	// ErrPublishTimeout is returned when the broker does not acknowledge in time.
	ErrPublishTimeout = errors.New("mqtt: publish timeout")

	// ErrSharedFile is returned when a second adapter publishes to a file
	// path without the adapter placeholder.
	ErrSharedFile = errors.New("snapshot file shared by several adapters")
)
