package control

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gramjyoti/microgrid-core/internal/device"
)

// DefaultLatency is the simulated device-control delay before a toggle
// takes effect.
const DefaultLatency = 500 * time.Millisecond

// Logger defines the logging interface used by the Controller.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures a Controller.
type Options struct {
	// Latency is the wait between accepting a toggle and applying it.
	// Zero applies toggles immediately.
	Latency time.Duration

	// Logger receives controller diagnostics. Defaults to a no-op logger.
	Logger Logger

	// Notifier receives an event for every operation outcome. More
	// notifiers can be attached with AddNotifier.
	Notifier Notifier
}

// Controller is the single owning handle over a device registry.
//
// It serialises mutations, simulates device-control latency for toggles,
// allows at most one pending toggle per device, and reports every outcome
// to its notifiers. All methods are safe for concurrent use.
type Controller struct {
	registry *device.Registry
	latency  time.Duration
	logger   Logger

	// mu serialises registry mutations with the shutdown epoch so a
	// pending toggle can tell whether a shutdown happened while it waited.
	mu    sync.Mutex
	epoch uint64

	// emitMu is held from a registry change until its event has reached
	// every notifier, so notifiers see events in the order the changes
	// were applied.
	emitMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]struct{}

	notifierMu sync.RWMutex
	notifiers  []Notifier
}

// New creates a controller over registry.
func New(registry *device.Registry, opts Options) *Controller {
	c := &Controller{
		registry: registry,
		latency:  opts.Latency,
		logger:   opts.Logger,
		pending:  make(map[string]struct{}),
	}
	if c.latency < 0 {
		c.latency = 0
	}
	if c.logger == nil {
		c.logger = noopLogger{}
	}
	if opts.Notifier != nil {
		c.notifiers = append(c.notifiers, opts.Notifier)
	}
	return c
}

// AddNotifier attaches a notifier. Events already emitted are not replayed.
func (c *Controller) AddNotifier(n Notifier) {
	if n == nil {
		return
	}
	c.notifierMu.Lock()
	defer c.notifierMu.Unlock()
	c.notifiers = append(c.notifiers, n)
}

// Snapshot returns copies of all devices in display order.
func (c *Controller) Snapshot() []device.Device {
	return c.registry.Snapshot()
}

// Aggregate returns the current summary metrics.
func (c *Controller) Aggregate() device.Aggregate {
	return c.registry.Aggregate()
}

// Device returns a copy of one device.
func (c *Controller) Device(id string) (device.Device, error) {
	return c.registry.Get(id)
}

// Pending reports whether a toggle is waiting to take effect on the device.
func (c *Controller) Pending(id string) bool {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	_, ok := c.pending[id]
	return ok
}

// Toggle switches a manually controlled device on or off after the
// configured latency.
//
// The guard is checked both before and after the wait. Errors:
//   - device.ErrInvalidStatus, device.ErrDeviceNotFound: bad request
//   - device.ErrGuardRejected: device not under manual control
//   - ErrTogglePending: another toggle on this device is still waiting
//   - ErrSuperseded: an emergency shutdown ran during the wait
//   - ctx.Err(): the caller gave up during the wait
//
// Nothing is changed unless the returned error is nil.
func (c *Controller) Toggle(ctx context.Context, id string, desired device.Status) (device.Device, error) {
	if !desired.Toggleable() {
		err := fmt.Errorf("%w: cannot toggle to %q", device.ErrInvalidStatus, desired)
		c.report(ctx, Event{Kind: EventToggleFailed, DeviceID: id, Error: err.Error()})
		return device.Device{}, err
	}

	current, err := c.registry.Get(id)
	if err != nil {
		c.report(ctx, Event{Kind: EventToggleFailed, DeviceID: id, Error: err.Error()})
		return device.Device{}, err
	}

	if err := c.registry.CheckToggle(id); err != nil {
		c.report(ctx, Event{Kind: EventToggleRejected, DeviceID: id, Error: err.Error()})
		return current, err
	}

	if !c.claim(id) {
		err := fmt.Errorf("%w: %q", ErrTogglePending, id)
		c.report(ctx, Event{Kind: EventToggleRejected, DeviceID: id, Error: err.Error()})
		return current, err
	}
	defer c.release(id)

	epoch := c.currentEpoch()

	if err := c.wait(ctx); err != nil {
		err = fmt.Errorf("toggle %q: %w", id, err)
		c.report(ctx, Event{Kind: EventToggleFailed, DeviceID: id, Error: err.Error()})
		return current, err
	}

	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if c.epoch != epoch {
		latest, _ := c.registry.Get(id)
		agg := c.registry.Aggregate()
		c.mu.Unlock()
		err := fmt.Errorf("%w: toggle %q", ErrSuperseded, id)
		c.emit(ctx, Event{Kind: EventToggleRejected, Error: err.Error(), Aggregate: agg}.withDevice(latest))
		return latest, err
	}
	updated, err := c.registry.Toggle(id, desired)
	agg := c.registry.Aggregate()
	c.mu.Unlock()

	if err != nil {
		// The guard changed during the wait (e.g. mode switched to auto).
		c.emit(ctx, Event{Kind: EventToggleRejected, Error: err.Error(), Aggregate: agg}.withDevice(updated))
		return updated, err
	}

	ev := Event{Kind: EventToggled, Aggregate: agg}.withDevice(updated)
	if updated.Status != current.Status {
		ev.Changed = 1
	}
	c.emit(ctx, ev)

	return updated, nil
}

// SetMode hands a device to manual or auto control. Its status is not
// changed. Devices with a scheduled status reject mode changes with
// device.ErrGuardRejected.
func (c *Controller) SetMode(ctx context.Context, id string, mode device.Mode) (device.Device, error) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	before, getErr := c.registry.Get(id)
	updated, err := c.registry.SetMode(id, mode)
	agg := c.registry.Aggregate()
	c.mu.Unlock()

	return c.finishModeChange(ctx, id, before, getErr, updated, agg, err)
}

// FlipMode switches a device from manual to auto, or from any other
// mode to manual.
func (c *Controller) FlipMode(ctx context.Context, id string) (device.Device, error) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	before, getErr := c.registry.Get(id)
	var (
		updated device.Device
		err     = getErr
	)
	if getErr == nil {
		updated, err = c.registry.SetMode(id, before.Mode.Flipped())
	}
	agg := c.registry.Aggregate()
	c.mu.Unlock()

	return c.finishModeChange(ctx, id, before, getErr, updated, agg, err)
}

// finishModeChange emits the outcome of a mode change. The caller holds emitMu.
func (c *Controller) finishModeChange(ctx context.Context, id string, before device.Device, getErr error, updated device.Device, agg device.Aggregate, err error) (device.Device, error) {
	if err != nil {
		ev := Event{Kind: EventModeRejected, DeviceID: id, Error: err.Error(), Aggregate: agg}
		if getErr == nil {
			ev = ev.withDevice(before)
		}
		c.emit(ctx, ev)
		return updated, err
	}

	ev := Event{Kind: EventModeChanged, Aggregate: agg}.withDevice(updated)
	if updated.Mode != before.Mode {
		ev.Changed = 1
	}
	c.emit(ctx, ev)
	return updated, nil
}

// EmergencyShutdown forces every device off and into manual mode,
// discarding any pending toggles. Returns the number of devices whose
// status or mode changed. It never fails.
func (c *Controller) EmergencyShutdown(ctx context.Context) int {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	c.epoch++
	changed := c.registry.EmergencyShutdown()
	agg := c.registry.Aggregate()
	c.mu.Unlock()

	c.emit(ctx, Event{Kind: EventEmergencyShutdown, Changed: changed, Aggregate: agg})
	return changed
}

func (c *Controller) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

func (c *Controller) claim(id string) bool {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	if _, busy := c.pending[id]; busy {
		return false
	}
	c.pending[id] = struct{}{}
	return true
}

func (c *Controller) release(id string) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	delete(c.pending, id)
}

// wait blocks for the configured latency or until ctx is done.
func (c *Controller) wait(ctx context.Context) error {
	if c.latency == 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(c.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// report emits an outcome that changed nothing. Device fields and the
// aggregate are read under emitMu so they are never older than an event
// already delivered.
func (c *Controller) report(ctx context.Context, ev Event) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if d, err := c.registry.Get(ev.DeviceID); err == nil {
		ev = ev.withDevice(d)
	}
	ev.Aggregate = c.registry.Aggregate()
	c.mu.Unlock()

	c.emit(ctx, ev)
}

// emit stamps and delivers an event. The caller holds emitMu. Notifier
// errors are logged only.
func (c *Controller) emit(ctx context.Context, ev Event) {
	ev.ID = uuid.NewString()
	ev.Timestamp = time.Now().UTC()
	if ev.Source == "" {
		ev.Source = SourceFromContext(ctx)
	}

	c.notifierMu.RLock()
	notifiers := make([]Notifier, len(c.notifiers))
	copy(notifiers, c.notifiers)
	c.notifierMu.RUnlock()

	// Deliver even if the request context was cancelled.
	deliverCtx := context.WithoutCancel(ctx)
	for _, n := range notifiers {
		if err := n.Notify(deliverCtx, ev); err != nil {
			c.logger.Warn("event notification failed", "kind", ev.Kind, "device_id", ev.DeviceID, "error", err)
		}
	}
}
