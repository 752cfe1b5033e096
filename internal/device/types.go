package device

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Device represents a controllable community load on the microgrid.
//
// NameKey is a translation key, never localized text. Icon is a symbolic
// reference resolved by the presentation layer.
type Device struct {
	// Identity
	ID      string `json:"id"`
	NameKey string `json:"name_key"`
	Icon    string `json:"icon,omitempty"`

	// Control state
	Status Status `json:"status"`
	Mode   Mode   `json:"mode"`

	// PowerKW is the draw when Status is StatusOn. Fixed at creation.
	PowerKW float64 `json:"power_kw"`

	// Schedule is present only for devices with a fixed time window.
	Schedule *ScheduleWindow `json:"schedule,omitempty"`
}

// DeepCopy creates a complete independent copy of the Device.
// The schedule pointer is cloned so modifications to the copy
// do not affect the registry.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}

	cpy := *d
	if d.Schedule != nil {
		window := *d.Schedule
		cpy.Schedule = &window
	}
	return &cpy
}

// IsActive reports whether the device currently draws power.
func (d *Device) IsActive() bool {
	return d.Status == StatusOn
}

// ActivePowerKW returns the device's contribution to the total load.
func (d *Device) ActivePowerKW() float64 {
	if d.Status != StatusOn {
		return 0
	}
	return d.PowerKW
}

// Status represents the operating status of a device.
type Status string

// Status constants.
const (
	StatusOn        Status = "on"
	StatusOff       Status = "off"
	StatusScheduled Status = "scheduled"
)

// AllStatuses returns all valid status values.
func AllStatuses() []Status {
	return []Status{StatusOn, StatusOff, StatusScheduled}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOn, StatusOff, StatusScheduled:
		return true
	}
	return false
}

// Toggleable reports whether s may be requested by a direct toggle.
func (s Status) Toggleable() bool {
	return s == StatusOn || s == StatusOff
}

// LabelKey returns the translation key the dashboard uses for the status badge.
func (s Status) LabelKey() string {
	switch s {
	case StatusOn:
		return "running"
	case StatusOff:
		return "stopped"
	default:
		return "scheduled"
	}
}

// Mode represents who controls a device.
type Mode string

// Mode constants.
const (
	ModeManual    Mode = "manual"
	ModeAuto      Mode = "auto"
	ModeScheduled Mode = "scheduled"
)

// AllModes returns all valid mode values.
func AllModes() []Mode {
	return []Mode{ModeManual, ModeAuto, ModeScheduled}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeManual, ModeAuto, ModeScheduled:
		return true
	}
	return false
}

// Selectable reports whether m may be requested by a mode change.
// The scheduled mode is assigned by configuration only.
func (m Mode) Selectable() bool {
	return m == ModeManual || m == ModeAuto
}

// Flipped returns the mode the dashboard's mode button switches to:
// manual becomes auto, anything else becomes manual.
func (m Mode) Flipped() Mode {
	if m == ModeManual {
		return ModeAuto
	}
	return ModeManual
}

// TimeOfDay is a wall-clock time with minute resolution, encoded as "HH:MM".
type TimeOfDay struct {
	Hour   int
	Minute int
}

// minutesPerDay is the number of minutes in a day.
const minutesPerDay = 24 * 60

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: time of day %q must be HH:MM", ErrInvalidSchedule, s)
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: hour out of range in %q", ErrInvalidSchedule, s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: minute out of range in %q", ErrInvalidSchedule, s)
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// String formats the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns the number of minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ScheduleWindow is a daily time window. End before Start means the
// window wraps past midnight (e.g. street lights 18:00-06:00).
type ScheduleWindow struct {
	Start TimeOfDay `json:"start" yaml:"start"`
	End   TimeOfDay `json:"end" yaml:"end"`
}

// Contains reports whether the wall-clock time of t falls inside the window.
// The start is inclusive and the end exclusive.
func (w ScheduleWindow) Contains(t time.Time) bool {
	now := t.Hour()*60 + t.Minute()
	start, end := w.Start.Minutes(), w.End.Minutes()

	if start == end {
		return false
	}
	if start < end {
		return now >= start && now < end
	}
	// Wraps midnight
	return now >= start || now < end
}

// Duration returns the length of the window.
func (w ScheduleWindow) Duration() time.Duration {
	minutes := (w.End.Minutes() - w.Start.Minutes() + minutesPerDay) % minutesPerDay
	return time.Duration(minutes) * time.Minute
}

// String formats the window as "HH:MM-HH:MM".
func (w ScheduleWindow) String() string {
	return w.Start.String() + "-" + w.End.String()
}
