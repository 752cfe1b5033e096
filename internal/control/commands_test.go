package control

import (
	"context"
	"errors"
	"testing"

	"github.com/gramjyoti/microgrid-core/internal/device"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/mqtt"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name       string
		topic      string
		payload    string
		wantDevice string
		wantAction string
		wantErr    bool
	}{
		{"toggle", "gramjyoti/command/load/water-pump", `{"action":"toggle","status":"on"}`, "water-pump", ActionToggle, false},
		{"set mode", "gramjyoti/command/load/irrigation-pump", `{"action":"set_mode","mode":"manual"}`, "irrigation-pump", ActionSetMode, false},
		{"flip mode", "gramjyoti/command/load/street-lights", `{"action":"flip_mode"}`, "street-lights", ActionFlipMode, false},
		{"emergency", "gramjyoti/command/emergency", `{"action":"emergency_shutdown"}`, "", ActionEmergencyShutdown, false},
		{"bad json", "gramjyoti/command/load/water-pump", `{`, "", "", true},
		{"toggle without status", "gramjyoti/command/load/water-pump", `{"action":"toggle"}`, "", "", true},
		{"set mode without mode", "gramjyoti/command/load/water-pump", `{"action":"set_mode"}`, "", "", true},
		{"unknown action", "gramjyoti/command/load/water-pump", `{"action":"reboot"}`, "", "", true},
		{"wrong action on emergency", "gramjyoti/command/emergency", `{"action":"toggle","status":"off"}`, "", "", true},
		{"missing device", "gramjyoti/command/load/", `{"action":"flip_mode"}`, "", "", true},
		{"nested topic", "gramjyoti/command/load/a/b", `{"action":"flip_mode"}`, "", "", true},
		{"foreign topic", "other/command/load/water-pump", `{"action":"flip_mode"}`, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, cmd, err := parseCommand(tt.topic, []byte(tt.payload))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCommand) {
					t.Errorf("parseCommand() error = %v, want %v", err, ErrInvalidCommand)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCommand() error = %v", err)
			}
			if id != tt.wantDevice {
				t.Errorf("device = %q, want %q", id, tt.wantDevice)
			}
			if cmd.Action != tt.wantAction {
				t.Errorf("action = %q, want %q", cmd.Action, tt.wantAction)
			}
		})
	}
}

func TestCommandHandler_Handle(t *testing.T) {
	ctrl, rec := newTestController(t, 0)
	h := NewCommandHandler(context.Background(), ctrl, nil)
	ctx := context.Background()

	if err := h.Handle(ctx, "gramjyoti/command/load/water-pump", []byte(`{"action":"toggle","status":"on"}`)); err != nil {
		t.Fatalf("toggle error = %v", err)
	}
	if err := h.Handle(ctx, "gramjyoti/command/load/irrigation-pump", []byte(`{"action":"set_mode","mode":"manual"}`)); err != nil {
		t.Fatalf("set_mode error = %v", err)
	}
	if err := h.Handle(ctx, "gramjyoti/command/load/street-lights", []byte(`{"action":"flip_mode"}`)); err != nil {
		t.Fatalf("flip_mode error = %v", err)
	}

	pump, _ := ctrl.Device("water-pump")
	irrigation, _ := ctrl.Device("irrigation-pump")
	lights, _ := ctrl.Device("street-lights")
	if pump.Status != device.StatusOn {
		t.Errorf("water-pump status = %q, want on", pump.Status)
	}
	if irrigation.Mode != device.ModeManual {
		t.Errorf("irrigation-pump mode = %q, want manual", irrigation.Mode)
	}
	if lights.Mode != device.ModeManual {
		t.Errorf("street-lights mode = %q, want manual", lights.Mode)
	}

	err := h.Handle(ctx, "gramjyoti/command/load/school-lights", []byte(`{"action":"toggle","status":"on"}`))
	if !errors.Is(err, device.ErrGuardRejected) {
		t.Errorf("scheduled toggle error = %v, want %v", err, device.ErrGuardRejected)
	}

	if err := h.Handle(ctx, "gramjyoti/command/emergency", []byte(`{"action":"emergency_shutdown"}`)); err != nil {
		t.Fatalf("emergency error = %v", err)
	}
	if got := ctrl.Aggregate().ActiveDeviceCount; got != 0 {
		t.Errorf("ActiveDeviceCount = %d, want 0", got)
	}

	for _, ev := range rec.all() {
		if ev.Source != SourceMQTT {
			t.Errorf("%s event source = %q, want %q", ev.Kind, ev.Source, SourceMQTT)
		}
	}
}

type fakeSubscriber struct {
	handlers map[string]mqtt.MessageHandler
	err      error
}

func (s *fakeSubscriber) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	if s.err != nil {
		return s.err
	}
	if s.handlers == nil {
		s.handlers = make(map[string]mqtt.MessageHandler)
	}
	s.handlers[topic] = handler
	return nil
}

func TestCommandHandler_Subscribe(t *testing.T) {
	ctrl, _ := newTestController(t, 0)
	h := NewCommandHandler(context.Background(), ctrl, nil)
	sub := &fakeSubscriber{}

	if err := h.Subscribe(sub, 1); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	handler, ok := sub.handlers["gramjyoti/command/load/+"]
	if !ok {
		t.Fatal("load command topic not subscribed")
	}
	if _, ok := sub.handlers["gramjyoti/command/emergency"]; !ok {
		t.Fatal("emergency topic not subscribed")
	}

	if err := handler("gramjyoti/command/load/community-hall", []byte(`{"action":"toggle","status":"on"}`)); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	h.Wait()

	hall, _ := ctrl.Device("community-hall")
	if hall.Status != device.StatusOn {
		t.Errorf("community-hall status = %q, want on", hall.Status)
	}

	if err := handler("gramjyoti/command/load/community-hall", []byte(`not json`)); !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("handler error = %v, want %v", err, ErrInvalidCommand)
	}
}

func TestCommandHandler_SubscribeError(t *testing.T) {
	ctrl, _ := newTestController(t, 0)
	h := NewCommandHandler(context.Background(), ctrl, nil)

	wantErr := errors.New("not connected")
	if err := h.Subscribe(&fakeSubscriber{err: wantErr}, 1); !errors.Is(err, wantErr) {
		t.Errorf("Subscribe() error = %v, want %v", err, wantErr)
	}
}

func TestCommandHandler_RefusesAfterShutdown(t *testing.T) {
	const (
		topic   = "gramjyoti/command/load/water-pump"
		payload = `{"action":"toggle","status":"on"}`
	)

	t.Run("context cancelled", func(t *testing.T) {
		ctrl, rec := newTestController(t, 0)
		ctx, cancel := context.WithCancel(context.Background())
		h := NewCommandHandler(ctx, ctrl, nil)
		cancel()

		if err := h.dispatch(topic, []byte(payload)); !errors.Is(err, ErrCommandsStopped) {
			t.Errorf("dispatch() error = %v, want %v", err, ErrCommandsStopped)
		}
		h.Wait()

		pump, _ := ctrl.Device("water-pump")
		if pump.Status != device.StatusOff {
			t.Errorf("water-pump status = %q, want off", pump.Status)
		}
		if got := len(rec.all()); got != 0 {
			t.Errorf("got %d events, want 0", got)
		}
	})

	t.Run("after wait", func(t *testing.T) {
		ctrl, _ := newTestController(t, 0)
		h := NewCommandHandler(context.Background(), ctrl, nil)
		h.Wait()

		if err := h.dispatch(topic, []byte(payload)); !errors.Is(err, ErrCommandsStopped) {
			t.Errorf("dispatch() error = %v, want %v", err, ErrCommandsStopped)
		}
		pump, _ := ctrl.Device("water-pump")
		if pump.Status != device.StatusOff {
			t.Errorf("water-pump status = %q, want off", pump.Status)
		}
	})
}
