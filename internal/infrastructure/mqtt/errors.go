package mqtt

import "errors"

// Broker connection state.
var (
	ErrNotConnected     = errors.New("mqtt: broker link down")
	ErrConnectionFailed = errors.New("mqtt: could not reach broker")
)

// Message operations. Wrapped with the underlying paho error where one exists.
var (
	ErrPublishFailed     = errors.New("mqtt: publish rejected")
	ErrSubscribeFailed   = errors.New("mqtt: subscribe rejected")
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe rejected")
)

// Argument validation, checked before the broker is contacted.
var (
	ErrInvalidQoS   = errors.New("mqtt: qos must be 0, 1 or 2")
	ErrInvalidTopic = errors.New("mqtt: empty topic")
)
