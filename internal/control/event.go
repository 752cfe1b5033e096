package control

import (
	"context"
	"errors"
	"time"

	"github.com/gramjyoti/microgrid-core/internal/device"
)

// EventKind identifies the outcome an Event reports.
type EventKind string

// Event kinds.
const (
	EventToggled           EventKind = "toggled"
	EventToggleRejected    EventKind = "toggle_rejected"
	EventToggleFailed      EventKind = "toggle_failed"
	EventModeChanged       EventKind = "mode_changed"
	EventModeRejected      EventKind = "mode_rejected"
	EventEmergencyShutdown EventKind = "emergency_shutdown"
)

// IsFailure reports whether the event describes an operation that did
// not take effect.
func (k EventKind) IsFailure() bool {
	switch k {
	case EventToggleRejected, EventToggleFailed, EventModeRejected:
		return true
	}
	return false
}

// Event sources.
const (
	SourceAPI  = "api"
	SourceMQTT = "mqtt"
)

// Event reports the outcome of a control operation to notification sinks.
//
// Device fields describe the device after the operation (or as it was,
// for rejections). They are empty for emergency shutdown events and for
// failures against unknown devices. Aggregate is the registry summary
// right after the operation.
type Event struct {
	ID        string           `json:"id"`
	Kind      EventKind        `json:"kind"`
	Source    string           `json:"source,omitempty"`
	DeviceID  string           `json:"device_id,omitempty"`
	NameKey   string           `json:"name_key,omitempty"`
	Status    device.Status    `json:"status,omitempty"`
	Mode      device.Mode      `json:"mode,omitempty"`
	PowerKW   float64          `json:"power_kw"`
	Changed   int              `json:"changed"`
	Error     string           `json:"error,omitempty"`
	Aggregate device.Aggregate `json:"aggregate"`
	Timestamp time.Time        `json:"timestamp"`
}

// withDevice copies the device fields of d into the event.
func (e Event) withDevice(d device.Device) Event {
	e.DeviceID = d.ID
	e.NameKey = d.NameKey
	e.Status = d.Status
	e.Mode = d.Mode
	e.PowerKW = d.PowerKW
	return e
}

// Notifier receives control events in the order their changes were
// applied. Implementations must be safe for concurrent use and must not
// call the Controller's mutating methods; errors are logged by the
// controller and never affect the operation's outcome.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, ev Event) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// MultiNotifier fans an event out to several notifiers and joins their errors.
type MultiNotifier []Notifier

// Notify delivers ev to every notifier, even if some fail.
func (m MultiNotifier) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type sourceKey struct{}

// WithSource tags ctx with the entry point of a control request
// (SourceAPI, SourceMQTT). The tag is copied into emitted events.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

// SourceFromContext returns the source set by WithSource, or "".
func SourceFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(sourceKey{}).(string); ok {
		return s
	}
	return ""
}
