// Package metrics exposes the load registry to Prometheus.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gramjyoti/microgrid-core/internal/control"
	"github.com/gramjyoti/microgrid-core/internal/device"
)

const namespace = "gramjyoti"

// Source is the read side of the controller used at scrape time.
type Source interface {
	Snapshot() []device.Device
}

// LoadCollector implements prometheus.Collector for the site's loads.
//
// Gauges are computed from a fresh snapshot on every scrape. Control
// outcomes are counted as they are reported, so the collector doubles as
// a control.Notifier.
type LoadCollector struct {
	source Source
	site   string

	activeDevices    *prometheus.Desc
	activePowerKW    *prometheus.Desc
	autoModeDevices  *prometheus.Desc
	scheduledDevices *prometheus.Desc
	deviceCount      *prometheus.Desc

	loadOn       *prometheus.Desc
	loadRatedKW  *prometheus.Desc
	loadModeInfo *prometheus.Desc

	controlEvents    *prometheus.CounterVec
	emergencyChanged prometheus.Counter
}

// NewLoadCollector creates a collector over source. site is added as a
// constant label to every metric.
func NewLoadCollector(source Source, site string) *LoadCollector {
	constLabels := prometheus.Labels{"site": site}
	deviceLabels := []string{"device_id", "name_key"}

	return &LoadCollector{
		source: source,
		site:   site,

		activeDevices: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "loads", "active_devices"),
			"Number of loads currently switched on.",
			nil, constLabels,
		),
		activePowerKW: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "loads", "active_power_kw"),
			"Sum of rated power of loads currently switched on, in kW.",
			nil, constLabels,
		),
		autoModeDevices: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "loads", "auto_mode_devices"),
			"Number of loads under automatic control.",
			nil, constLabels,
		),
		scheduledDevices: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "loads", "scheduled_devices"),
			"Number of loads with a scheduled status.",
			nil, constLabels,
		),
		deviceCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "loads", "devices"),
			"Number of configured loads.",
			nil, constLabels,
		),
		loadOn: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "load", "on"),
			"Whether the load is switched on (1) or not (0).",
			deviceLabels, constLabels,
		),
		loadRatedKW: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "load", "rated_power_kw"),
			"Rated power of the load in kW.",
			deviceLabels, constLabels,
		),
		loadModeInfo: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "load", "mode_info"),
			"Control mode of the load, always 1.",
			append(deviceLabels, "mode", "status"), constLabels,
		),
		controlEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "control",
			Name:        "events_total",
			Help:        "Load control outcomes by kind and source.",
			ConstLabels: constLabels,
		}, []string{"kind", "source"}),
		emergencyChanged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "control",
			Name:        "emergency_shutdown_changed_total",
			Help:        "Loads changed by emergency shutdowns.",
			ConstLabels: constLabels,
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *LoadCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.activeDevices
	ch <- c.activePowerKW
	ch <- c.autoModeDevices
	ch <- c.scheduledDevices
	ch <- c.deviceCount
	ch <- c.loadOn
	ch <- c.loadRatedKW
	ch <- c.loadModeInfo
	c.controlEvents.Describe(ch)
	c.emergencyChanged.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *LoadCollector) Collect(ch chan<- prometheus.Metric) {
	loads := c.source.Snapshot()
	agg := device.ComputeAggregate(loads)

	ch <- prometheus.MustNewConstMetric(c.activeDevices, prometheus.GaugeValue, float64(agg.ActiveDeviceCount))
	ch <- prometheus.MustNewConstMetric(c.activePowerKW, prometheus.GaugeValue, agg.TotalActivePowerKW)
	ch <- prometheus.MustNewConstMetric(c.autoModeDevices, prometheus.GaugeValue, float64(agg.AutoModeCount))
	ch <- prometheus.MustNewConstMetric(c.scheduledDevices, prometheus.GaugeValue, float64(agg.ScheduledCount))
	ch <- prometheus.MustNewConstMetric(c.deviceCount, prometheus.GaugeValue, float64(len(loads)))

	for _, d := range loads {
		on := 0.0
		if d.IsActive() {
			on = 1
		}
		ch <- prometheus.MustNewConstMetric(c.loadOn, prometheus.GaugeValue, on, d.ID, d.NameKey)
		ch <- prometheus.MustNewConstMetric(c.loadRatedKW, prometheus.GaugeValue, d.PowerKW, d.ID, d.NameKey)
		ch <- prometheus.MustNewConstMetric(c.loadModeInfo, prometheus.GaugeValue, 1, d.ID, d.NameKey, string(d.Mode), string(d.Status))
	}

	c.controlEvents.Collect(ch)
	c.emergencyChanged.Collect(ch)
}

// Notify counts a control outcome.
func (c *LoadCollector) Notify(_ context.Context, ev control.Event) error {
	source := ev.Source
	if source == "" {
		source = "internal"
	}
	c.controlEvents.WithLabelValues(string(ev.Kind), source).Inc()
	if ev.Kind == control.EventEmergencyShutdown && ev.Changed > 0 {
		c.emergencyChanged.Add(float64(ev.Changed))
	}
	return nil
}
