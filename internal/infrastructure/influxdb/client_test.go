package influxdb_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gramjyoti/microgrid-core/internal/infrastructure/config"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/influxdb"
)

// fakeInflux answers pings and records line-protocol writes.
type fakeInflux struct {
	mu     sync.Mutex
	writes []string
	query  []string
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ping":
		w.WriteHeader(http.StatusNoContent)
	case "/api/v2/write":
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.writes = append(f.writes, string(body))
		f.query = append(f.query, r.URL.RawQuery)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeInflux) lines() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.writes, "\n")
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           url,
		Token:         "gramjyoti-test-token",
		Org:           "gramjyoti",
		Bucket:        "loads",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

func connectFake(t *testing.T) (*influxdb.Client, *fakeInflux) {
	t.Helper()
	fake := &fakeInflux{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := influxdb.Connect(testConfig(srv.URL), "site-001")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, fake
}

func TestConnect(t *testing.T) {
	client, _ := connectFake(t)

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Enabled = false

	_, err := influxdb.Connect(cfg, "site-001")
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := influxdb.Connect(testConfig(url), "site-001")
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestWritePoint(t *testing.T) {
	client, fake := connectFake(t)

	client.WritePoint("load_aggregate",
		map[string]string{"kind": "toggled"},
		map[string]interface{}{"active_devices": 3, "active_power_kw": 6.4},
	)
	client.Flush()

	lines := fake.lines()
	if !strings.Contains(lines, "load_aggregate,") {
		t.Fatalf("write body = %q, want load_aggregate point", lines)
	}
	for _, want := range []string{"site=site-001", "kind=toggled", "active_devices=3i", "active_power_kw=6.4"} {
		if !strings.Contains(lines, want) {
			t.Errorf("write body = %q, missing %q", lines, want)
		}
	}

	fake.mu.Lock()
	q := strings.Join(fake.query, "&")
	fake.mu.Unlock()
	if !strings.Contains(q, "bucket=loads") || !strings.Contains(q, "org=gramjyoti") {
		t.Errorf("write query = %q, want org and bucket", q)
	}
}

func TestWritePointWithTime(t *testing.T) {
	client, fake := connectFake(t)

	at := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	client.WritePointWithTime("load_state",
		map[string]string{"device_id": "water-pump"},
		map[string]interface{}{"on": 1},
		at,
	)
	client.Flush()

	lines := fake.lines()
	if !strings.Contains(lines, "device_id=water-pump") {
		t.Errorf("write body = %q, want device tag", lines)
	}
	if !strings.Contains(lines, "1791795600000000000") {
		t.Errorf("write body = %q, want timestamp %d", lines, at.UnixNano())
	}
}

func TestWritePoint_EmptyFieldsDropped(t *testing.T) {
	client, fake := connectFake(t)

	client.WritePoint("load_state", nil, nil)
	client.Flush()

	if lines := fake.lines(); lines != "" {
		t.Errorf("write body = %q, want nothing", lines)
	}
}

func TestClose(t *testing.T) {
	client, fake := connectFake(t)

	client.WritePoint("load_aggregate", nil, map[string]interface{}{"active_devices": 1})
	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
	if !strings.Contains(fake.lines(), "load_aggregate") {
		t.Error("pending point was not flushed on Close()")
	}
	if err := client.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() after Close error = %v, want ErrNotConnected", err)
	}

	// Writes and flushes after close are no-ops.
	client.WritePoint("load_aggregate", nil, map[string]interface{}{"active_devices": 2})
	client.Flush()
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestClose_Nil(t *testing.T) {
	client := &influxdb.Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v", err)
	}
}
