package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // site timezones without relying on the host zoneinfo

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "GRAMJYOTI_"

// Config is the root configuration structure for the Gram Jyoti core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Loads     LoadsConfig     `yaml:"loads"`
	Journal   JournalConfig   `yaml:"journal"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Timezone string         `yaml:"timezone"`
	Location LocationConfig `yaml:"location"`
}

// LocationConfig contains the site's geographic coordinates.
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// LoadsConfig contains community load control settings.
type LoadsConfig struct {
	// File is the YAML load definitions file. Empty uses the built-in
	// six-load site.
	File string `yaml:"file"`

	// ToggleLatencyMS is the simulated device-control delay before a
	// toggle takes effect.
	ToggleLatencyMS int `yaml:"toggle_latency_ms"`

	// DefaultLanguage localizes operator messages in the log (en, hi, od).
	DefaultLanguage string `yaml:"default_language"`
}

// JournalConfig contains control journal settings.
type JournalConfig struct {
	Enabled       bool `yaml:"enabled"`
	RetentionDays int  `yaml:"retention_days"`
}

// MetricsConfig contains Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validation limits.
const (
	maxToggleLatencyMS = 10_000
)

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAMJYOTI_SECTION_KEY
// For example: GRAMJYOTI_DATABASE_PATH, GRAMJYOTI_API_PORT
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration with environment overrides
// applied. Used when no config file exists.
func Default() (*Config, error) {
	cfg := defaultConfig()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "site-001",
			Name:     "Gram Jyoti",
			Timezone: "Asia/Kolkata",
		},
		Database: DatabaseConfig{
			Path:        "./data/gramjyoti.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "gramjyoti-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Loads: LoadsConfig{
			ToggleLatencyMS: 500,
			DefaultLanguage: "en",
		},
		Journal: JournalConfig{
			RetentionDays: 90,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAMJYOTI_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	var errs []string

	str := func(key string, dst *string) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s must be an integer", EnvPrefix, key))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s must be a boolean", EnvPrefix, key))
				return
			}
			*dst = b
		}
	}

	// Site
	str("SITE_ID", &cfg.Site.ID)

	// Database
	str("DATABASE_PATH", &cfg.Database.Path)

	// MQTT
	flag("MQTT_ENABLED", &cfg.MQTT.Enabled)
	str("MQTT_HOST", &cfg.MQTT.Broker.Host)
	num("MQTT_PORT", &cfg.MQTT.Broker.Port)
	str("MQTT_USERNAME", &cfg.MQTT.Auth.Username)
	str("MQTT_PASSWORD", &cfg.MQTT.Auth.Password)

	// API
	str("API_HOST", &cfg.API.Host)
	num("API_PORT", &cfg.API.Port)

	// InfluxDB
	flag("INFLUXDB_ENABLED", &cfg.InfluxDB.Enabled)
	str("INFLUXDB_URL", &cfg.InfluxDB.URL)
	str("INFLUXDB_TOKEN", &cfg.InfluxDB.Token)

	// Logging
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)

	// Loads
	str("LOADS_FILE", &cfg.Loads.File)
	num("LOADS_TOGGLE_LATENCY_MS", &cfg.Loads.ToggleLatencyMS)
	str("LOADS_DEFAULT_LANGUAGE", &cfg.Loads.DefaultLanguage)

	// Journal
	flag("JOURNAL_ENABLED", &cfg.Journal.Enabled)

	if len(errs) > 0 {
		return fmt.Errorf("environment overrides: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate reports every configuration problem at once, one per line.
func (c *Config) Validate() error {
	var errs []error
	problem := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	c.validateSite(problem)
	c.validateStorage(problem)
	c.validateIntegrations(problem)
	c.validateServing(problem)
	c.validateLoads(problem)

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("configuration errors:\n%w", err)
	}
	return nil
}

type problemFunc func(format string, args ...any)

func (c *Config) validateSite(problem problemFunc) {
	if c.Site.ID == "" {
		problem("site.id is required")
	}
	if tz := c.Site.Timezone; tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			problem("site.timezone %q is not a known zone", tz)
		}
	}
}

// validateStorage checks the journal and the SQLite file it needs.
func (c *Config) validateStorage(problem problemFunc) {
	if c.Journal.Enabled && c.Database.Path == "" {
		problem("database.path is required when journal is enabled")
	}
	if c.Journal.RetentionDays < 0 {
		problem("journal.retention_days must not be negative")
	}
}

func (c *Config) validateIntegrations(problem problemFunc) {
	m := c.MQTT
	if m.QoS < 0 || m.QoS > 2 {
		problem("mqtt.qos must be 0, 1, or 2")
	}
	if m.Enabled {
		if m.Broker.Host == "" {
			problem("mqtt.broker.host is required when mqtt is enabled")
		}
		if !validPort(m.Broker.Port) {
			problem("mqtt.broker.port must be between 1 and 65535")
		}
	}

	if in := c.InfluxDB; in.Enabled {
		if in.URL == "" {
			problem("influxdb.url is required when influxdb is enabled")
		}
		if in.Org == "" || in.Bucket == "" {
			problem("influxdb.org and influxdb.bucket are required when influxdb is enabled")
		}
	}
}

func (c *Config) validateServing(problem problemFunc) {
	if !validPort(c.API.Port) {
		problem("api.port must be between 1 and 65535")
	}
	if c.WebSocket.PingInterval <= 0 || c.WebSocket.PongTimeout <= 0 {
		problem("websocket.ping_interval and websocket.pong_timeout must be positive")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		problem("metrics.path must start with /")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problem("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		problem("logging.format %q must be json or text", c.Logging.Format)
	}
}

func (c *Config) validateLoads(problem problemFunc) {
	if ms := c.Loads.ToggleLatencyMS; ms < 0 || ms > maxToggleLatencyMS {
		problem("loads.toggle_latency_ms must be between 0 and %d", maxToggleLatencyMS)
	}
	switch c.Loads.DefaultLanguage {
	case "en", "hi", "od":
	default:
		problem("loads.default_language %q must be en, hi, or od", c.Loads.DefaultLanguage)
	}
}

func validPort(p int) bool {
	return p >= 1 && p <= 65535
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetToggleLatency returns the simulated device-control delay.
func (c *Config) GetToggleLatency() time.Duration {
	return time.Duration(c.Loads.ToggleLatencyMS) * time.Millisecond
}

// GetJournalRetention returns how long journal entries are kept.
// Zero means forever.
func (c *Config) GetJournalRetention() time.Duration {
	return time.Duration(c.Journal.RetentionDays) * 24 * time.Hour
}
