// Package influxdb records Gram Jyoti load telemetry in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. The controller's
// metrics notifier writes three measurements through it:
//   - load_aggregate: active devices, active power, auto and scheduled counts
//   - load_state: per-device on/off, power and mode after applied changes
//   - load_control_event: one point per control outcome
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WritePoint("load_aggregate", nil, map[string]interface{}{"active_devices": 3})
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Asynchronous write errors are delivered to the
// SetOnError callback; connection and health check errors are returned
// directly.
package influxdb
