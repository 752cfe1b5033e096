package site

import (
	"context"
	"time"
)

// Provider supplies site readings to the API.
type Provider interface {
	Overview(ctx context.Context) (Overview, error)
	EnergySeries(ctx context.Context) ([]EnergySample, error)
}

// StaticProvider serves fixed readings. Alert timestamps are relative to
// the provider's clock so they age naturally.
type StaticProvider struct {
	now func() time.Time
}

// NewStaticProvider creates a StaticProvider using the wall clock.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{now: time.Now}
}

// Overview returns the current site overview.
func (p *StaticProvider) Overview(_ context.Context) (Overview, error) {
	now := p.now().UTC()

	return Overview{
		Online: true,
		Solar: SolarReading{
			CurrentPowerKW:     7.2,
			DailyGenerationKWh: 45.8,
			TotalGenerationKWh: 12450,
			TrendPercent:       12.5,
		},
		Battery: BatteryReading{
			StateOfCharge: 87,
			RateKW:        2.1,
			State:         BatteryCharging,
		},
		Load: LoadReading{
			TotalLoadKW:          4.8,
			HouseholdConsumption: 3.2,
			TrendPercent:         -3.2,
		},
		Grid: GridReading{State: GridConnected},
		Alerts: []Alert{
			{
				ID:       1,
				Severity: AlertWarning,
				Message:  "Panel cleaning recommended - 5% efficiency drop detected",
				RaisedAt: now.Add(-2 * time.Hour),
			},
		},
		UpdatedAt: now,
	}, nil
}

// EnergySeries returns today's two-hourly energy samples.
func (p *StaticProvider) EnergySeries(_ context.Context) ([]EnergySample, error) {
	return []EnergySample{
		{Time: "06:00", SolarKW: 0.2, BatterySoC: 85, LoadKW: 1.2},
		{Time: "08:00", SolarKW: 2.4, BatterySoC: 88, LoadKW: 1.8},
		{Time: "10:00", SolarKW: 5.6, BatterySoC: 92, LoadKW: 2.1},
		{Time: "12:00", SolarKW: 8.2, BatterySoC: 95, LoadKW: 2.8},
		{Time: "14:00", SolarKW: 7.8, BatterySoC: 93, LoadKW: 3.2},
		{Time: "16:00", SolarKW: 5.1, BatterySoC: 88, LoadKW: 2.9},
		{Time: "18:00", SolarKW: 1.8, BatterySoC: 82, LoadKW: 3.5},
		{Time: "20:00", SolarKW: 0, BatterySoC: 76, LoadKW: 2.8},
	}, nil
}
