// Package logging builds the slog loggers used across the Gram Jyoti core.
//
// Every entry carries service, version and, once the site is known,
// site_id. Subsystems take a child via Logger.Component so the
// controller, journal, broker and API lines can be filtered apart:
//
//	log := logging.New(cfg.Logging, version, cfg.Site.ID)
//	ctrlLog := log.Component("control")
//	ctrlLog.Info("load toggled", "device_id", "water-pump", "status", "on")
//
// The "logging" block of config.yaml selects level (debug, info, warn,
// error), format (json or text) and output (stdout or stderr). JSON is
// the default for field deployments; text is easier to read on a bench.
//
// Broker and InfluxDB credentials must never be passed as attributes.
package logging
