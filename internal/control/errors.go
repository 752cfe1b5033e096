package control

import "errors"

// Controller errors. Device-level outcomes (not found, guard rejection,
// invalid status or mode) are reported with the device package errors.
var (
	// ErrTogglePending is returned when a toggle is requested for a device
	// that already has one waiting to take effect.
	ErrTogglePending = errors.New("control: toggle already pending")

	// ErrSuperseded is returned when an emergency shutdown happened while
	// a toggle was waiting to take effect. The toggle is discarded.
	ErrSuperseded = errors.New("control: superseded by emergency shutdown")

	// ErrInvalidCommand is returned when an MQTT command payload cannot be
	// understood.
	ErrInvalidCommand = errors.New("control: invalid command")

	// ErrCommandsStopped is returned when an MQTT command arrives after
	// the command handler has begun shutting down.
	ErrCommandsStopped = errors.New("control: command handler stopped")
)
