package site

import "time"

// Level is the dashboard severity colour for a reading or alert.
type Level string

// Level constants.
const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// BatteryState is the direction of battery power flow.
type BatteryState string

// BatteryState constants.
const (
	BatteryCharging    BatteryState = "charging"
	BatteryDischarging BatteryState = "discharging"
)

// GridState is the utility grid connection state.
type GridState string

// GridState constants.
const (
	GridConnected    GridState = "connected"
	GridDisconnected GridState = "disconnected"
)

// AlertSeverity classifies an alert.
type AlertSeverity string

// AlertSeverity constants.
const (
	AlertWarning  AlertSeverity = "warning"
	AlertCritical AlertSeverity = "critical"
)

// SolarReading summarises PV generation.
type SolarReading struct {
	CurrentPowerKW     float64 `json:"current_power_kw"`
	DailyGenerationKWh float64 `json:"daily_generation_kwh"`
	TotalGenerationKWh float64 `json:"total_generation_kwh"`
	TrendPercent       float64 `json:"trend_percent"`
}

// Level returns the display level for solar generation.
func (SolarReading) Level() Level {
	return LevelSuccess
}

// BatteryReading summarises the battery bank.
type BatteryReading struct {
	StateOfCharge float64      `json:"state_of_charge"`
	RateKW        float64      `json:"rate_kw"`
	State         BatteryState `json:"state"`
}

// Level maps state of charge to a display level: above 80% is healthy,
// above 20% needs attention, anything lower is an error.
func (b BatteryReading) Level() Level {
	switch {
	case b.StateOfCharge > 80:
		return LevelSuccess
	case b.StateOfCharge > 20:
		return LevelWarning
	default:
		return LevelError
	}
}

// LoadReading summarises site consumption.
type LoadReading struct {
	TotalLoadKW          float64 `json:"total_load_kw"`
	HouseholdConsumption float64 `json:"household_consumption_kw"`
	TrendPercent         float64 `json:"trend_percent"`
}

// Level returns the display level for consumption.
func (LoadReading) Level() Level {
	return LevelInfo
}

// GridReading is the grid connection state.
type GridReading struct {
	State GridState `json:"state"`
}

// Level returns success while connected and error otherwise.
func (g GridReading) Level() Level {
	if g.State == GridConnected {
		return LevelSuccess
	}
	return LevelError
}

// Alert is an operator-facing site alert.
type Alert struct {
	ID       int           `json:"id"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
	RaisedAt time.Time     `json:"raised_at"`
}

// Overview is the full monitoring tab payload.
type Overview struct {
	Online    bool           `json:"online"`
	Solar     SolarReading   `json:"solar"`
	Battery   BatteryReading `json:"battery"`
	Load      LoadReading    `json:"load"`
	Grid      GridReading    `json:"grid"`
	Alerts    []Alert        `json:"alerts"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// EnergySample is one point of the daily energy chart.
type EnergySample struct {
	Time       string  `json:"time"`
	SolarKW    float64 `json:"solar_kw"`
	BatterySoC float64 `json:"battery_soc"`
	LoadKW     float64 `json:"load_kw"`
}
