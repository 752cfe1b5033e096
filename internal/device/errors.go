package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrGuardRejected) {
//	    // tell the user the device is not under manual control
//	}
var (
	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrInvalidConfiguration is returned when the device definitions
	// supplied at startup are malformed or contain duplicate IDs.
	ErrInvalidConfiguration = errors.New("device: invalid configuration")

	// ErrGuardRejected is returned when a direct toggle or mode change is
	// refused because the device is not under manual control. The registry
	// state is unchanged.
	ErrGuardRejected = errors.New("device: rejected by control guard")

	// ErrInvalidStatus is returned when a status value is not recognised
	// or cannot be requested.
	ErrInvalidStatus = errors.New("device: invalid status")

	// ErrInvalidMode is returned when a mode value is not recognised
	// or cannot be requested.
	ErrInvalidMode = errors.New("device: invalid mode")

	// ErrInvalidSchedule is returned when a schedule window is malformed.
	ErrInvalidSchedule = errors.New("device: invalid schedule")
)
