package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gramjyoti/microgrid-core/internal/device"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/mqtt"
)

// Publisher is the subset of the MQTT client used to publish events.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// loadState is the retained per-device state payload.
type loadState struct {
	ID        string        `json:"id"`
	Status    device.Status `json:"status"`
	Mode      device.Mode   `json:"mode"`
	PowerKW   float64       `json:"power_kw"`
	Timestamp string        `json:"timestamp"`
}

// MQTTNotifier publishes control events to the broker.
//
// Every event goes to the load event topic (or the core event topic for
// emergency shutdowns). Applied changes also refresh the retained load
// state, and every event refreshes the retained aggregate.
type MQTTNotifier struct {
	pub    Publisher
	qos    byte
	source func() []device.Device
}

// NewMQTTNotifier creates an MQTTNotifier. snapshot is used after an
// emergency shutdown to republish the retained state of every device.
func NewMQTTNotifier(pub Publisher, qos byte, snapshot func() []device.Device) *MQTTNotifier {
	return &MQTTNotifier{pub: pub, qos: qos, source: snapshot}
}

// Notify publishes ev.
func (n *MQTTNotifier) Notify(_ context.Context, ev Event) error {
	topics := mqtt.Topics{}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}

	var errs []error

	eventTopic := topics.CoreEvent(string(ev.Kind))
	if ev.DeviceID != "" {
		eventTopic = topics.LoadEvent(ev.DeviceID)
	}
	if err := n.pub.Publish(eventTopic, payload, n.qos, false); err != nil {
		errs = append(errs, fmt.Errorf("publishing event: %w", err))
	}

	switch {
	case ev.Kind == EventEmergencyShutdown && n.source != nil:
		for _, d := range n.source() {
			if err := n.publishState(ev, d.ID, d.Status, d.Mode, d.PowerKW); err != nil {
				errs = append(errs, err)
			}
		}
	case (ev.Kind == EventToggled || ev.Kind == EventModeChanged) && ev.Changed > 0:
		if err := n.publishState(ev, ev.DeviceID, ev.Status, ev.Mode, ev.PowerKW); err != nil {
			errs = append(errs, err)
		}
	}

	aggPayload, err := json.Marshal(ev.Aggregate)
	if err != nil {
		errs = append(errs, fmt.Errorf("marshalling aggregate: %w", err))
	} else if err := n.pub.Publish(topics.CoreAggregate(), aggPayload, n.qos, true); err != nil {
		errs = append(errs, fmt.Errorf("publishing aggregate: %w", err))
	}

	return errors.Join(errs...)
}

func (n *MQTTNotifier) publishState(ev Event, id string, status device.Status, mode device.Mode, powerKW float64) error {
	payload, err := json.Marshal(loadState{
		ID:        id,
		Status:    status,
		Mode:      mode,
		PowerKW:   powerKW,
		Timestamp: ev.Timestamp.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshalling state for %s: %w", id, err)
	}
	if err := n.pub.Publish(mqtt.Topics{}.LoadState(id), payload, n.qos, true); err != nil {
		return fmt.Errorf("publishing state for %s: %w", id, err)
	}
	return nil
}
