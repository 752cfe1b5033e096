package control

import (
	"context"

	"github.com/gramjyoti/microgrid-core/internal/device"
)

// InfluxDB measurement names written by MetricsNotifier.
const (
	MeasurementLoadAggregate = "load_aggregate"
	MeasurementLoadState     = "load_state"
	MeasurementControlEvent  = "load_control_event"
)

// PointWriter is the subset of the InfluxDB client used to record events.
type PointWriter interface {
	WritePoint(measurement string, tags map[string]string, fields map[string]interface{})
}

// MetricsNotifier records control outcomes as time-series points.
type MetricsNotifier struct {
	writer PointWriter
	site   string
}

// NewMetricsNotifier creates a MetricsNotifier tagging points with site.
func NewMetricsNotifier(writer PointWriter, site string) *MetricsNotifier {
	return &MetricsNotifier{writer: writer, site: site}
}

// Notify writes the aggregate after every event, the device state after
// applied changes, and a counter point per outcome.
func (n *MetricsNotifier) Notify(_ context.Context, ev Event) error {
	n.writer.WritePoint(MeasurementLoadAggregate,
		map[string]string{"site": n.site},
		map[string]interface{}{
			"active_devices":  ev.Aggregate.ActiveDeviceCount,
			"active_power_kw": ev.Aggregate.TotalActivePowerKW,
			"auto_mode":       ev.Aggregate.AutoModeCount,
			"scheduled":       ev.Aggregate.ScheduledCount,
		},
	)

	eventTags := map[string]string{"site": n.site, "kind": string(ev.Kind)}
	// Only registered devices become device_id series.
	if ev.NameKey != "" {
		eventTags["device_id"] = ev.DeviceID
	}
	if ev.Source != "" {
		eventTags["source"] = ev.Source
	}
	n.writer.WritePoint(MeasurementControlEvent, eventTags, map[string]interface{}{
		"count":   1,
		"changed": ev.Changed,
	})

	if (ev.Kind == EventToggled || ev.Kind == EventModeChanged) && ev.NameKey != "" {
		on := 0
		if ev.Status == device.StatusOn {
			on = 1
		}
		n.writer.WritePoint(MeasurementLoadState,
			map[string]string{"site": n.site, "device_id": ev.DeviceID},
			map[string]interface{}{
				"on":       on,
				"power_kw": ev.PowerKW * float64(on),
				"mode":     string(ev.Mode),
			},
		)
	}

	return nil
}
