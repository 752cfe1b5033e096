package device

import "strconv"

// Aggregate holds summary metrics derived from the full device set.
type Aggregate struct {
	ActiveDeviceCount  int     `json:"active_device_count"`
	TotalActivePowerKW float64 `json:"total_active_power_kw"`
	AutoModeCount      int     `json:"auto_mode_count"`
	ScheduledCount     int     `json:"scheduled_count"`
}

// ComputeAggregate reduces a device snapshot to summary metrics.
//
// Power is summed in slice order at full precision; rounding is left to
// presentation (see FormatPowerKW).
func ComputeAggregate(devices []Device) Aggregate {
	var agg Aggregate
	for i := range devices {
		agg.add(&devices[i])
	}
	return agg
}

func (a *Aggregate) add(d *Device) {
	if d.Status == StatusOn {
		a.ActiveDeviceCount++
		a.TotalActivePowerKW += d.PowerKW
	}
	if d.Mode == ModeAuto {
		a.AutoModeCount++
	}
	if d.Status == StatusScheduled {
		a.ScheduledCount++
	}
}

// FormatPowerKW formats the total active power with one decimal place,
// as shown on the dashboard.
func (a Aggregate) FormatPowerKW() string {
	return FormatKW(a.TotalActivePowerKW)
}

// FormatKW formats a power value with one decimal place.
func FormatKW(kw float64) string {
	return strconv.FormatFloat(kw, 'f', 1, 64)
}
