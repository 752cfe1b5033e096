package device

import (
	"fmt"
	"math"
	"regexp"
)

// Validation constants.
const (
	maxIDLength      = 50
	maxNameKeyLength = 100
	maxDevices       = 256
	idPattern        = `^[a-z0-9]+(?:-[a-z0-9]+)*$`
)

var idRegex = regexp.MustCompile(idPattern)

// Definition is a device entry as supplied by configuration.
//
// PowerKW is a pointer so that a missing rating can be told apart from
// a zero rating.
type Definition struct {
	ID       string          `json:"id"`
	NameKey  string          `json:"name_key"`
	Icon     string          `json:"icon,omitempty"`
	Status   Status          `json:"status"`
	Mode     Mode            `json:"mode"`
	PowerKW  *float64        `json:"power_kw"`
	Schedule *ScheduleWindow `json:"schedule,omitempty"`
}

// toDevice converts a validated definition into a Device.
func (def Definition) toDevice() Device {
	d := Device{
		ID:      def.ID,
		NameKey: def.NameKey,
		Icon:    def.Icon,
		Status:  def.Status,
		Mode:    def.Mode,
		PowerKW: *def.PowerKW,
	}
	if def.Schedule != nil {
		window := *def.Schedule
		d.Schedule = &window
	}
	return d
}

// ValidateDefinitions checks a full configuration list, including
// uniqueness of IDs. Returns an error wrapping ErrInvalidConfiguration
// that names the first offending entry.
func ValidateDefinitions(defs []Definition) error {
	if len(defs) == 0 {
		return fmt.Errorf("%w: no devices defined", ErrInvalidConfiguration)
	}
	if len(defs) > maxDevices {
		return fmt.Errorf("%w: %d devices exceeds maximum of %d", ErrInvalidConfiguration, len(defs), maxDevices)
	}

	seen := make(map[string]int, len(defs))
	for i, def := range defs {
		if err := ValidateDefinition(def); err != nil {
			return fmt.Errorf("%w: entry %d: %w", ErrInvalidConfiguration, i, err)
		}
		if first, dup := seen[def.ID]; dup {
			return fmt.Errorf("%w: entry %d: duplicate id %q (first defined at entry %d)", ErrInvalidConfiguration, i, def.ID, first)
		}
		seen[def.ID] = i
	}

	return nil
}

// ValidateDefinition checks a single definition for missing fields and
// violated state invariants.
func ValidateDefinition(def Definition) error {
	if err := ValidateID(def.ID); err != nil {
		return err
	}

	if def.NameKey == "" {
		return fmt.Errorf("device %q: name_key is required", def.ID)
	}
	if len(def.NameKey) > maxNameKeyLength {
		return fmt.Errorf("device %q: name_key exceeds %d characters", def.ID, maxNameKeyLength)
	}

	if def.Status == "" {
		return fmt.Errorf("device %q: status is required", def.ID)
	}
	if !def.Status.Valid() {
		return fmt.Errorf("device %q: %w: %q", def.ID, ErrInvalidStatus, def.Status)
	}

	if def.Mode == "" {
		return fmt.Errorf("device %q: mode is required", def.ID)
	}
	if !def.Mode.Valid() {
		return fmt.Errorf("device %q: %w: %q", def.ID, ErrInvalidMode, def.Mode)
	}

	if def.PowerKW == nil {
		return fmt.Errorf("device %q: power_kw is required", def.ID)
	}
	if err := ValidatePower(*def.PowerKW); err != nil {
		return fmt.Errorf("device %q: %w", def.ID, err)
	}

	return validateStateInvariants(def.ID, def.Status, def.Mode, def.Schedule)
}

// ValidateID checks that a device ID is a non-empty kebab-case slug.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("id %q exceeds %d characters", id, maxIDLength)
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("id %q must be lowercase alphanumeric with hyphens", id)
	}
	return nil
}

// ValidatePower checks that a power rating is a finite non-negative number.
func ValidatePower(kw float64) error {
	if math.IsNaN(kw) || math.IsInf(kw, 0) {
		return fmt.Errorf("power_kw must be a finite number")
	}
	if kw < 0 {
		return fmt.Errorf("power_kw must not be negative, got %v", kw)
	}
	return nil
}

// validateStateInvariants enforces the status/mode/schedule combinations:
// a scheduled status requires scheduled mode, and scheduled mode requires
// a schedule window.
func validateStateInvariants(id string, status Status, mode Mode, schedule *ScheduleWindow) error {
	if status == StatusScheduled && mode != ModeScheduled {
		return fmt.Errorf("device %q: %w: scheduled status requires scheduled mode, got %q", id, ErrInvalidMode, mode)
	}
	if mode == ModeScheduled && schedule == nil {
		return fmt.Errorf("device %q: %w: scheduled mode requires a schedule window", id, ErrInvalidSchedule)
	}
	if schedule != nil && schedule.Start == schedule.End {
		return fmt.Errorf("device %q: %w: window %s is empty", id, ErrInvalidSchedule, schedule)
	}
	return nil
}
