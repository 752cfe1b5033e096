// Package device holds the control state model for Gram Jyoti community loads.
//
// A Registry is the canonical, ordered collection of loads on a site:
// street lights, pumps, community buildings. Each Device carries a status
// (on, off, scheduled), a control mode (manual, auto, scheduled), a fixed
// power rating and an optional daily schedule window.
//
// # Control rules
//
//   - Toggle switches a device on or off, but only while it is under manual
//     control. Devices in auto or scheduled mode, or with a scheduled status,
//     reject the request with ErrGuardRejected and stay as they were.
//   - SetMode hands a device to manual or auto control. It never changes
//     the device's status.
//   - EmergencyShutdown forces every device off and manual, bypassing the
//     guard. It never fails.
//
// # Aggregates
//
// Aggregate metrics (active devices, active power, auto and scheduled
// counts) are computed from the current state on every read. Nothing
// derived is stored alongside the devices.
//
// # Usage
//
//	defs, err := device.LoadDefinitions("configs/loads.yaml")
//	if err != nil {
//	    return err
//	}
//	registry, err := device.NewRegistry(defs)
//	if err != nil {
//	    return err
//	}
//	registry.SetLogger(log)
//
//	if _, err := registry.Toggle("water-pump", device.StatusOn); errors.Is(err, device.ErrGuardRejected) {
//	    // device is not under manual control
//	}
//	agg := registry.Aggregate()
//
// # Thread Safety
//
// All Registry methods are safe for concurrent use. Returned devices are
// copies; modifying them does not affect the registry.
package device
