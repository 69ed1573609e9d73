package mqtt

import "errors"

// Errors returned by the broker client. Callers match them with errors.Is;
// most are wrapped with the topic or the underlying paho error.
var (
	// ErrNotConnected means the client has no live broker session.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed wraps failures of the initial connect.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	ErrPublishFailed     = errors.New("mqtt: publish failed")
	ErrSubscribeFailed   = errors.New("mqtt: subscribe failed")
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	// ErrInvalidQoS is returned for QoS levels other than 0, 1 and 2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")

	// ErrInvalidTopic is returned for empty topics and filters.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")

	// ErrTimeout is wrapped alongside the operation error when the broker
	// does not acknowledge in time, and by stores whose wait for retained
	// messages runs into the caller's deadline.
	ErrTimeout = errors.New("mqtt: operation timed out")
)
