package site

import (
	"context"
	"testing"
	"time"
)

func TestStaticProvider_Overview(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	p := &StaticProvider{now: func() time.Time { return fixed }}

	ov, err := p.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}

	if ov.Solar.CurrentPowerKW != 7.2 {
		t.Errorf("Solar.CurrentPowerKW = %v, want 7.2", ov.Solar.CurrentPowerKW)
	}
	if ov.Battery.StateOfCharge != 87 || ov.Battery.State != BatteryCharging {
		t.Errorf("Battery = %+v", ov.Battery)
	}
	if ov.Battery.Level() != LevelSuccess {
		t.Errorf("Battery.Level() = %q, want success", ov.Battery.Level())
	}
	if ov.Grid.Level() != LevelSuccess {
		t.Errorf("Grid.Level() = %q, want success", ov.Grid.Level())
	}
	if len(ov.Alerts) != 1 {
		t.Fatalf("len(Alerts) = %d, want 1", len(ov.Alerts))
	}
	if got := fixed.Sub(ov.Alerts[0].RaisedAt); got != 2*time.Hour {
		t.Errorf("alert age = %v, want 2h", got)
	}
	if !ov.UpdatedAt.Equal(fixed) {
		t.Errorf("UpdatedAt = %v, want %v", ov.UpdatedAt, fixed)
	}
}

func TestStaticProvider_EnergySeries(t *testing.T) {
	series, err := NewStaticProvider().EnergySeries(context.Background())
	if err != nil {
		t.Fatalf("EnergySeries() error = %v", err)
	}
	if len(series) != 8 {
		t.Fatalf("len(series) = %d, want 8", len(series))
	}
	if series[0].Time != "06:00" || series[7].Time != "20:00" {
		t.Errorf("series spans %s-%s, want 06:00-20:00", series[0].Time, series[7].Time)
	}

	peak := series[0]
	for _, s := range series {
		if s.SolarKW > peak.SolarKW {
			peak = s
		}
	}
	if peak.Time != "12:00" {
		t.Errorf("solar peak at %s, want 12:00", peak.Time)
	}
}

func TestBatteryReading_Level(t *testing.T) {
	tests := []struct {
		soc  float64
		want Level
	}{
		{100, LevelSuccess},
		{80.5, LevelSuccess},
		{80, LevelWarning},
		{21, LevelWarning},
		{20, LevelError},
		{0, LevelError},
	}

	for _, tt := range tests {
		b := BatteryReading{StateOfCharge: tt.soc}
		if got := b.Level(); got != tt.want {
			t.Errorf("BatteryReading{%v}.Level() = %q, want %q", tt.soc, got, tt.want)
		}
	}
}

func TestGridReading_Level(t *testing.T) {
	if got := (GridReading{State: GridDisconnected}).Level(); got != LevelError {
		t.Errorf("disconnected Level() = %q, want error", got)
	}
}
