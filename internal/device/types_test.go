package device

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{"18:00", TimeOfDay{Hour: 18}, false},
		{"06:30", TimeOfDay{Hour: 6, Minute: 30}, false},
		{"6:30", TimeOfDay{Hour: 6, Minute: 30}, false},
		{"00:00", TimeOfDay{}, false},
		{"23:59", TimeOfDay{Hour: 23, Minute: 59}, false},
		{"24:00", TimeOfDay{}, true},
		{"12:60", TimeOfDay{}, true},
		{"1200", TimeOfDay{}, true},
		{"12:5", TimeOfDay{}, true},
		{"", TimeOfDay{}, true},
		{"ab:cd", TimeOfDay{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSchedule) {
					t.Errorf("ParseTimeOfDay(%q) error = %v, want ErrInvalidSchedule", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestScheduleWindow_Contains(t *testing.T) {
	day := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 14, hour, minute, 0, 0, time.UTC)
	}
	evening := ScheduleWindow{Start: TimeOfDay{Hour: 18}, End: TimeOfDay{Hour: 6}}
	school := ScheduleWindow{Start: TimeOfDay{Hour: 8}, End: TimeOfDay{Hour: 16}}

	tests := []struct {
		name   string
		window ScheduleWindow
		at     time.Time
		want   bool
	}{
		{"wrap: at start", evening, day(18, 0), true},
		{"wrap: before midnight", evening, day(23, 59), true},
		{"wrap: after midnight", evening, day(2, 15), true},
		{"wrap: at end", evening, day(6, 0), false},
		{"wrap: midday", evening, day(12, 0), false},
		{"day: at start", school, day(8, 0), true},
		{"day: inside", school, day(15, 59), true},
		{"day: at end", school, day(16, 0), false},
		{"day: before", school, day(7, 59), false},
		{"empty window", ScheduleWindow{Start: TimeOfDay{Hour: 5}, End: TimeOfDay{Hour: 5}}, day(5, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.window.Contains(tt.at); got != tt.want {
				t.Errorf("%s.Contains(%s) = %v, want %v", tt.window, tt.at.Format("15:04"), got, tt.want)
			}
		})
	}
}

func TestScheduleWindow_Duration(t *testing.T) {
	evening := ScheduleWindow{Start: TimeOfDay{Hour: 18}, End: TimeOfDay{Hour: 6}}
	if got := evening.Duration(); got != 12*time.Hour {
		t.Errorf("Duration() = %v, want 12h", got)
	}
	school := ScheduleWindow{Start: TimeOfDay{Hour: 8}, End: TimeOfDay{Hour: 16, Minute: 30}}
	if got := school.Duration(); got != 8*time.Hour+30*time.Minute {
		t.Errorf("Duration() = %v, want 8h30m", got)
	}
}

func TestScheduleWindow_JSON(t *testing.T) {
	w := ScheduleWindow{Start: TimeOfDay{Hour: 18}, End: TimeOfDay{Hour: 6}}

	data, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"start":"18:00","end":"06:00"}` {
		t.Errorf("Marshal() = %s", data)
	}

	if err := json.Unmarshal([]byte(`{"start":"25:00","end":"06:00"}`), &w); !errors.Is(err, ErrInvalidSchedule) {
		t.Errorf("Unmarshal(bad hour) error = %v, want ErrInvalidSchedule", err)
	}
}

func TestStatusAndMode(t *testing.T) {
	for _, s := range AllStatuses() {
		if !s.Valid() {
			t.Errorf("Status %q not valid", s)
		}
	}
	if Status("standby").Valid() {
		t.Error("Status(standby).Valid() = true")
	}
	if StatusScheduled.Toggleable() {
		t.Error("StatusScheduled.Toggleable() = true")
	}
	if got := StatusOn.LabelKey(); got != "running" {
		t.Errorf("StatusOn.LabelKey() = %q, want running", got)
	}
	if got := StatusOff.LabelKey(); got != "stopped" {
		t.Errorf("StatusOff.LabelKey() = %q, want stopped", got)
	}

	for _, m := range AllModes() {
		if !m.Valid() {
			t.Errorf("Mode %q not valid", m)
		}
	}
	if ModeScheduled.Selectable() {
		t.Error("ModeScheduled.Selectable() = true")
	}

	flips := map[Mode]Mode{ModeManual: ModeAuto, ModeAuto: ModeManual, ModeScheduled: ModeManual}
	for from, want := range flips {
		if got := from.Flipped(); got != want {
			t.Errorf("%q.Flipped() = %q, want %q", from, got, want)
		}
	}
}
