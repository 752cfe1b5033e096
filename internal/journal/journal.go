package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gramjyoti/microgrid-core/internal/control"
	"github.com/gramjyoti/microgrid-core/internal/device"
)

const (
	// DefaultLimit is used when a listing asks for zero or fewer entries.
	DefaultLimit = 50

	// MaxLimit caps a single listing.
	MaxLimit = 500

	// timeLayout is fixed-width so stored timestamps sort as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// ErrDeviceIDRequired is returned by ListByDevice for an empty ID.
var ErrDeviceIDRequired = errors.New("journal: device id is required")

// Journal stores control events in the control_events table.
// It is safe for concurrent use.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a Journal over an open, migrated database.
func New(db *sql.DB) *Journal {
	return &Journal{db: db, now: time.Now}
}

// Notify records ev, so a Journal can be attached to the controller.
func (j *Journal) Notify(ctx context.Context, ev control.Event) error {
	return j.Record(ctx, ev)
}

// Record appends ev. Events without an ID or timestamp get one.
func (j *Journal) Record(ctx context.Context, ev control.Event) error {
	if ev.Kind == "" {
		return fmt.Errorf("journal: event kind is required")
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = j.now()
	}

	var deviceID sql.NullString
	if ev.DeviceID != "" {
		deviceID = sql.NullString{String: ev.DeviceID, Valid: true}
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO control_events (
			id, kind, source, device_id, name_key, status, mode, power_kw,
			changed, error, active_devices, active_power_kw, auto_devices,
			scheduled_devices, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID,
		string(ev.Kind),
		ev.Source,
		deviceID,
		ev.NameKey,
		string(ev.Status),
		string(ev.Mode),
		ev.PowerKW,
		ev.Changed,
		ev.Error,
		ev.Aggregate.ActiveDeviceCount,
		ev.Aggregate.TotalActivePowerKW,
		ev.Aggregate.AutoModeCount,
		ev.Aggregate.ScheduledCount,
		ev.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting control event: %w", err)
	}
	return nil
}

// List returns the most recent events across all devices, newest first.
func (j *Journal) List(ctx context.Context, limit int) ([]control.Event, error) {
	return j.query(ctx,
		`SELECT `+columns+` FROM control_events
		 ORDER BY occurred_at DESC, rowid DESC
		 LIMIT ?`,
		clampLimit(limit),
	)
}

// ListByDevice returns the most recent events for one device, newest
// first. Emergency shutdowns are site-wide and not included.
func (j *Journal) ListByDevice(ctx context.Context, deviceID string, limit int) ([]control.Event, error) {
	if deviceID == "" {
		return nil, ErrDeviceIDRequired
	}
	return j.query(ctx,
		`SELECT `+columns+` FROM control_events
		 WHERE device_id = ?
		 ORDER BY occurred_at DESC, rowid DESC
		 LIMIT ?`,
		deviceID,
		clampLimit(limit),
	)
}

// Prune deletes events older than olderThan and returns how many were
// removed.
func (j *Journal) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("journal: olderThan must be positive")
	}

	cutoff := j.now().UTC().Add(-olderThan).Format(timeLayout)
	result, err := j.db.ExecContext(ctx,
		"DELETE FROM control_events WHERE occurred_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting control events: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

// RunPruner calls Prune with retention every interval until ctx is done.
// A zero retention keeps everything and returns immediately.
func (j *Journal) RunPruner(ctx context.Context, retention, interval time.Duration, logger Logger) {
	if retention <= 0 || interval <= 0 {
		return
	}
	if logger == nil {
		logger = noopLogger{}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := j.Prune(ctx, retention)
			if err != nil {
				logger.Warn("journal prune failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("journal pruned", "deleted", n)
			}
		}
	}
}

// Logger is the logging interface used by RunPruner.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

const columns = `id, kind, source, device_id, name_key, status, mode, power_kw,
	changed, error, active_devices, active_power_kw, auto_devices,
	scheduled_devices, occurred_at`

func (j *Journal) query(ctx context.Context, query string, args ...any) ([]control.Event, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying control events: %w", err)
	}
	defer rows.Close()

	events := make([]control.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating control events: %w", err)
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (control.Event, error) {
	var (
		ev                             control.Event
		kind, status, mode, occurredAt string
		deviceID                       sql.NullString
	)
	err := rows.Scan(
		&ev.ID,
		&kind,
		&ev.Source,
		&deviceID,
		&ev.NameKey,
		&status,
		&mode,
		&ev.PowerKW,
		&ev.Changed,
		&ev.Error,
		&ev.Aggregate.ActiveDeviceCount,
		&ev.Aggregate.TotalActivePowerKW,
		&ev.Aggregate.AutoModeCount,
		&ev.Aggregate.ScheduledCount,
		&occurredAt,
	)
	if err != nil {
		return control.Event{}, fmt.Errorf("scanning control event: %w", err)
	}

	ev.Kind = control.EventKind(kind)
	ev.DeviceID = deviceID.String
	ev.Status = device.Status(status)
	ev.Mode = device.Mode(mode)

	ev.Timestamp, err = time.Parse(timeLayout, occurredAt)
	if err != nil {
		return control.Event{}, fmt.Errorf("parsing occurred_at: %w", err)
	}
	return ev, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
