// Package api serves the Gram Jyoti REST API, the dashboard WebSocket and
// the embedded operator panel.
//
// Routes under /api/v1 list loads, toggle them, change their control mode,
// trigger an emergency shutdown, and expose site readings, translation
// tables and the event journal. /metrics is the Prometheus endpoint and
// /panel/ the dashboard.
//
// All mutations go through control.Controller. The Hub is one of the
// controller's notifiers, so a dashboard sees changes made over MQTT as
// well as its own.
//
// Failures are written as {status, code, message}. Guard rejections,
// pending toggles and toggles superseded by an emergency shutdown are 409
// with codes guard_rejected, toggle_pending and superseded.
//
// MQTT, InfluxDB and the journal database are optional and only degrade
// GET /api/v1/health when down.
package api
