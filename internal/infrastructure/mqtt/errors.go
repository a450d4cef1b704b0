package mqtt

import "errors"

// Sentinel errors for the detection-stream client. Callers distinguish them
// with errors.Is(); ErrNotConnected from Subscribe, for example, means the
// camera subscription should be retried once the broker link is back.
var (
	// ErrNotConnected is returned when the broker link is down. Camera
	// detections published while disconnected are lost; there is no durable
	// queue on the sensor path.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed is returned when the initial broker connection
	// cannot be established at startup.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed is returned when a status publish is not acknowledged.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed is returned when a detection subscription is not
	// acknowledged by the broker.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrUnsubscribeFailed is returned when dropping a subscription fails.
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	// ErrInvalidQoS is returned for QoS levels outside 0..2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")

	// ErrInvalidTopic is returned for an empty topic.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")
)
