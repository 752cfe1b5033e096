package device

import (
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry holds the canonical, ordered set of controllable loads.
//
// Devices are kept in insertion order for display and indexed by ID for
// lookup. The registry is populated once by NewRegistry and mutated in
// place by the control operations; it is never persisted.
//
// The toggle guard lives here rather than in any caller so that a device
// not under manual control cannot be switched regardless of entry point.
//
// All public methods are thread-safe.
type Registry struct {
	devices []*Device      // Insertion order
	index   map[string]int // ID -> position in devices
	mu      sync.RWMutex   // Protects devices
	logger  Logger
}

// NewRegistry builds a registry from device definitions.
// Returns an error wrapping ErrInvalidConfiguration if any definition is
// missing a required field, violates a state invariant, or duplicates an ID.
func NewRegistry(defs []Definition) (*Registry, error) {
	if err := ValidateDefinitions(defs); err != nil {
		return nil, err
	}

	r := &Registry{
		devices: make([]*Device, 0, len(defs)),
		index:   make(map[string]int, len(defs)),
		logger:  noopLogger{},
	}
	for _, def := range defs {
		d := def.toDevice()
		r.index[d.ID] = len(r.devices)
		r.devices = append(r.devices, &d)
	}

	return r, nil
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Len returns the number of devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// Get returns a copy of the device with the given ID.
// Returns ErrDeviceNotFound if the device does not exist.
func (r *Registry) Get(id string) (Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, err := r.lookup(id)
	if err != nil {
		return Device{}, err
	}
	return *d.DeepCopy(), nil
}

// Snapshot returns copies of all devices in registry order.
// Callers can safely modify the result.
func (r *Registry) Snapshot() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, *d.DeepCopy())
	}
	return out
}

// Aggregate computes summary metrics over the current state.
// The result is derived on every call and never cached.
func (r *Registry) Aggregate() Aggregate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var agg Aggregate
	for _, d := range r.devices {
		agg.add(d)
	}
	return agg
}

// CheckToggle reports whether a direct toggle of the device would be
// accepted, without changing anything.
func (r *Registry) CheckToggle(id string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, err := r.lookup(id)
	if err != nil {
		return err
	}
	return guardToggle(d)
}

// Toggle switches a manually controlled device on or off.
//
// Returns ErrDeviceNotFound for an unknown ID and ErrInvalidStatus when
// desired is not on or off. A device in auto or scheduled mode, or with a
// scheduled status, is left untouched and ErrGuardRejected is returned
// alongside its current snapshot. Requesting the status a device already
// has succeeds without change.
func (r *Registry) Toggle(id string, desired Status) (Device, error) {
	if !desired.Toggleable() {
		return Device{}, fmt.Errorf("%w: cannot toggle to %q", ErrInvalidStatus, desired)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := r.lookup(id)
	if err != nil {
		return Device{}, err
	}

	if err := guardToggle(d); err != nil {
		r.logger.Debug("toggle rejected", "device_id", id, "status", d.Status, "mode", d.Mode)
		return *d.DeepCopy(), err
	}

	if d.Status != desired {
		r.logger.Debug("device toggled", "device_id", id, "from", d.Status, "to", desired)
		d.Status = desired
	}

	return *d.DeepCopy(), nil
}

// SetMode changes who controls a device. Only manual and auto may be
// requested; the scheduled mode comes from configuration.
//
// The device's status is never altered. A device with a scheduled status
// rejects mode changes with ErrGuardRejected, since leaving the scheduled
// mode would break its schedule.
func (r *Registry) SetMode(id string, desired Mode) (Device, error) {
	if !desired.Selectable() {
		return Device{}, fmt.Errorf("%w: cannot select %q", ErrInvalidMode, desired)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := r.lookup(id)
	if err != nil {
		return Device{}, err
	}

	if d.Status == StatusScheduled {
		return *d.DeepCopy(), fmt.Errorf("%w: device %q follows schedule %s", ErrGuardRejected, id, d.Schedule)
	}

	if d.Mode != desired {
		r.logger.Debug("device mode changed", "device_id", id, "from", d.Mode, "to", desired)
		d.Mode = desired
	}

	return *d.DeepCopy(), nil
}

// EmergencyShutdown forces every device off and into manual mode,
// bypassing all guards. Returns the number of devices whose status or
// mode actually changed. Never fails.
func (r *Registry) EmergencyShutdown() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for _, d := range r.devices {
		if d.Status == StatusOff && d.Mode == ModeManual {
			continue
		}
		d.Status = StatusOff
		d.Mode = ModeManual
		changed++
	}

	r.logger.Warn("emergency shutdown applied", "devices", len(r.devices), "changed", changed)
	return changed
}

// lookup finds a device by ID. Caller must hold r.mu.
func (r *Registry) lookup(id string) (*Device, error) {
	i, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDeviceNotFound, id)
	}
	return r.devices[i], nil
}

// guardToggle rejects direct toggles on devices not under manual control.
func guardToggle(d *Device) error {
	switch {
	case d.Status == StatusScheduled:
		return fmt.Errorf("%w: device %q is scheduled", ErrGuardRejected, d.ID)
	case d.Mode != ModeManual:
		return fmt.Errorf("%w: device %q is in %s mode", ErrGuardRejected, d.ID, d.Mode)
	}
	return nil
}
