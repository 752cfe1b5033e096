// Package config loads the Gram Jyoti core configuration.
//
// Values come from built-in defaults, then configs/config.yaml, then
// GRAMJYOTI_* environment variables, and are validated last. Put the MQTT
// password and InfluxDB token in the environment, not in the file.
//
//	cfg, err := config.Load("configs/config.yaml")
package config
