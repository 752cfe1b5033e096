package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "test-site"
  name: "Test Village"
  timezone: "Asia/Kolkata"
database:
  path: "/tmp/test.db"
mqtt:
  enabled: true
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
loads:
  file: "configs/loads.yaml"
  toggle_latency_ms: 250
  default_language: "hi"
journal:
  enabled: true
  retention_days: 30
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if !cfg.MQTT.Enabled {
		t.Error("MQTT.Enabled = false, want true")
	}
	if cfg.Loads.File != "configs/loads.yaml" {
		t.Errorf("Loads.File = %q, want %q", cfg.Loads.File, "configs/loads.yaml")
	}
	if cfg.Loads.DefaultLanguage != "hi" {
		t.Errorf("Loads.DefaultLanguage = %q, want %q", cfg.Loads.DefaultLanguage, "hi")
	}
	if got := cfg.GetToggleLatency(); got != 250*time.Millisecond {
		t.Errorf("GetToggleLatency() = %v, want 250ms", got)
	}
	if got := cfg.GetJournalRetention(); got != 30*24*time.Hour {
		t.Errorf("GetJournalRetention() = %v, want 720h", got)
	}

	// Values absent from the file keep their defaults.
	if cfg.WebSocket.Path != "/ws" {
		t.Errorf("WebSocket.Path = %q, want %q", cfg.WebSocket.Path, "/ws")
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, "/metrics")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
site:
  id: ""
api:
  port: 8080
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error for empty site.id, got nil")
	}
	if !strings.Contains(err.Error(), "site.id") {
		t.Errorf("Load() error = %v, want mention of site.id", err)
	}
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if cfg.Loads.File != "" {
		t.Errorf("Loads.File = %q, want empty", cfg.Loads.File)
	}
	if cfg.MQTT.Enabled {
		t.Error("MQTT.Enabled = true, want false by default")
	}
	if cfg.Journal.Enabled {
		t.Error("Journal.Enabled = true, want false by default")
	}
	if got := cfg.GetToggleLatency(); got != 500*time.Millisecond {
		t.Errorf("GetToggleLatency() = %v, want 500ms", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "missing site ID",
			mutate:  func(c *Config) { c.Site.ID = "" },
			wantErr: "site.id",
		},
		{
			name:    "unknown timezone",
			mutate:  func(c *Config) { c.Site.Timezone = "Mars/Olympus" },
			wantErr: "site.timezone",
		},
		{
			name: "journal without database path",
			mutate: func(c *Config) {
				c.Journal.Enabled = true
				c.Database.Path = ""
			},
			wantErr: "database.path",
		},
		{
			name:   "database path optional without journal",
			mutate: func(c *Config) { c.Database.Path = "" },
		},
		{
			name:    "negative retention",
			mutate:  func(c *Config) { c.Journal.RetentionDays = -1 },
			wantErr: "journal.retention_days",
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name: "mqtt enabled without host",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.Broker.Host = ""
			},
			wantErr: "mqtt.broker.host",
		},
		{
			name:    "invalid port low",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: "api.port",
		},
		{
			name:    "invalid port high",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: "api.port",
		},
		{
			name:    "influxdb enabled without url",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: "influxdb.url",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "negative latency",
			mutate:  func(c *Config) { c.Loads.ToggleLatencyMS = -5 },
			wantErr: "loads.toggle_latency_ms",
		},
		{
			name:   "latency at ceiling",
			mutate: func(c *Config) { c.Loads.ToggleLatencyMS = 10_000 },
		},
		{
			name:    "latency over ceiling",
			mutate:  func(c *Config) { c.Loads.ToggleLatencyMS = 10_001 },
			wantErr: "loads.toggle_latency_ms",
		},
		{
			name:    "unknown language",
			mutate:  func(c *Config) { c.Loads.DefaultLanguage = "fr" },
			wantErr: "loads.default_language",
		},
		{
			name:    "relative metrics path",
			mutate:  func(c *Config) { c.Metrics.Path = "metrics" },
			wantErr: "metrics.path",
		},
		{
			name:    "zero ping interval",
			mutate:  func(c *Config) { c.WebSocket.PingInterval = 0 },
			wantErr: "websocket.ping_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want mention of %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_ReportsAllProblems(t *testing.T) {
	cfg := defaultConfig()
	cfg.Site.ID = ""
	cfg.API.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil, want error")
	}
	for _, want := range []string{"site.id", "api.port"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error = %v, want mention of %s", err, want)
		}
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("GRAMJYOTI_DATABASE_PATH", "/custom/path.db")
	t.Setenv("GRAMJYOTI_MQTT_ENABLED", "true")
	t.Setenv("GRAMJYOTI_MQTT_HOST", "mqtt.example.com")
	t.Setenv("GRAMJYOTI_MQTT_USERNAME", "testuser")
	t.Setenv("GRAMJYOTI_MQTT_PASSWORD", "testpass")
	t.Setenv("GRAMJYOTI_API_HOST", "192.168.1.1")
	t.Setenv("GRAMJYOTI_API_PORT", "9090")
	t.Setenv("GRAMJYOTI_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("GRAMJYOTI_LOADS_TOGGLE_LATENCY_MS", "0")
	t.Setenv("GRAMJYOTI_LOADS_DEFAULT_LANGUAGE", "od")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if !cfg.MQTT.Enabled {
		t.Error("MQTT.Enabled = false, want true")
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}
	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}
	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
	if cfg.Loads.ToggleLatencyMS != 0 {
		t.Errorf("Loads.ToggleLatencyMS = %d, want 0", cfg.Loads.ToggleLatencyMS)
	}
	if cfg.Loads.DefaultLanguage != "od" {
		t.Errorf("Loads.DefaultLanguage = %q, want %q", cfg.Loads.DefaultLanguage, "od")
	}
}

func TestApplyEnvOverrides_InvalidValues(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("GRAMJYOTI_API_PORT", "eighty")
	t.Setenv("GRAMJYOTI_JOURNAL_ENABLED", "maybe")

	err := applyEnvOverrides(cfg)
	if err == nil {
		t.Fatal("applyEnvOverrides() error = nil, want error")
	}
	for _, want := range []string{"GRAMJYOTI_API_PORT", "GRAMJYOTI_JOURNAL_ENABLED"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("applyEnvOverrides() error = %v, want mention of %s", err, want)
		}
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want unchanged 8080", cfg.API.Port)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Site.ID == "" {
		t.Error("defaultConfig should have non-empty Site.ID")
	}

	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}

	if cfg.Loads.DefaultLanguage != "en" {
		t.Errorf("defaultConfig Loads.DefaultLanguage = %q, want %q", cfg.Loads.DefaultLanguage, "en")
	}
}
