package control

import (
	"context"

	"github.com/gramjyoti/microgrid-core/internal/device"
	"github.com/gramjyoti/microgrid-core/internal/i18n"
)

// LogNotifier writes each event to the log together with the localized
// operator message the dashboard would show for it.
type LogNotifier struct {
	logger Logger
	lang   i18n.Language
}

// NewLogNotifier creates a LogNotifier that localizes messages into lang.
func NewLogNotifier(logger Logger, lang i18n.Language) *LogNotifier {
	if logger == nil {
		logger = noopLogger{}
	}
	if !lang.Valid() {
		lang = i18n.DefaultLanguage
	}
	return &LogNotifier{logger: logger, lang: lang}
}

// Notify logs ev. It never fails.
func (n *LogNotifier) Notify(_ context.Context, ev Event) error {
	args := []any{
		"event_id", ev.ID,
		"kind", ev.Kind,
		"message", n.Message(ev),
		"active_devices", ev.Aggregate.ActiveDeviceCount,
		"active_power_kw", ev.Aggregate.FormatPowerKW(),
	}
	if ev.DeviceID != "" {
		args = append(args, "device_id", ev.DeviceID, "status", ev.Status, "mode", ev.Mode)
	}
	if ev.Source != "" {
		args = append(args, "source", ev.Source)
	}
	if ev.Error != "" {
		args = append(args, "error", ev.Error)
	}

	switch ev.Kind {
	case EventToggled, EventModeChanged:
		n.logger.Info("load control applied", args...)
	case EventEmergencyShutdown:
		n.logger.Warn("emergency shutdown", append(args, "changed", ev.Changed)...)
	default:
		n.logger.Warn("load control not applied", args...)
	}
	return nil
}

// Message returns the localized operator message for ev.
func (n *LogNotifier) Message(ev Event) string {
	t := i18n.Lookup(n.lang)
	name := t(ev.NameKey)
	if ev.NameKey == "" {
		name = ev.DeviceID
	}

	switch ev.Kind {
	case EventToggled:
		action := t("turnOff")
		if ev.Status == device.StatusOn {
			action = t("turnOn")
		}
		return name + " " + action + " (" + t("powerConsumption") + ": " + device.FormatKW(ev.PowerKW) + " " + t("kw") + ")"
	case EventModeChanged:
		return name + ": " + t(string(ev.Mode))
	case EventToggleRejected, EventModeRejected:
		return name + ": " + t("controlRejected")
	case EventToggleFailed:
		return name + ": " + t("controlFailed")
	case EventEmergencyShutdown:
		return t("emergencyShutdownActivated")
	}
	return string(ev.Kind)
}
