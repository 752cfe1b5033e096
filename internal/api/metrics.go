package api

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gramjyoti/microgrid-core/internal/device"
)

// SystemMetrics is the body of GET /api/v1/metrics: a JSON view for the
// dashboard and field technicians. Prometheus scrapers use /metrics.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	WebSocket     WSMetrics        `json:"websocket"`
	MQTT          ConnMetrics      `json:"mqtt"`
	InfluxDB      ConnMetrics      `json:"influxdb"`
	Loads         LoadMetrics      `json:"loads"`
	Database      *DatabaseMetrics `json:"database,omitempty"`
}

type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// ConnMetrics reports an optional integration.
type ConnMetrics struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// LoadMetrics counts loads by status and mode, plus toggles still
// waiting out the control latency.
type LoadMetrics struct {
	Total     int              `json:"total"`
	Pending   int              `json:"pending"`
	ByStatus  map[string]int   `json:"by_status"`
	ByMode    map[string]int   `json:"by_mode"`
	Aggregate device.Aggregate `json:"aggregate"`
}

// DatabaseMetrics is the journal's sql.DB pool.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime:       readRuntime(),
		WebSocket:     WSMetrics{ConnectedClients: s.hub.ClientCount()},
		MQTT:          ConnMetrics{Enabled: s.mqtt != nil, Connected: s.mqtt.IsConnected()},
		InfluxDB:      ConnMetrics{Enabled: s.influx != nil, Connected: s.influx.IsConnected()},
		Loads:         s.loadMetrics(),
		Database:      s.databaseMetrics(),
	})
}

const mib = 1 << 20

func readRuntime() RuntimeMetrics {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return RuntimeMetrics{
		Goroutines:    runtime.NumGoroutine(),
		MemoryAllocMB: float64(ms.Alloc) / mib,
		MemoryTotalMB: float64(ms.TotalAlloc) / mib,
		NumGC:         ms.NumGC,
	}
}

func (s *Server) loadMetrics() LoadMetrics {
	loads := s.ctrl.Snapshot()
	m := LoadMetrics{
		Total:     len(loads),
		ByStatus:  make(map[string]int, 3),
		ByMode:    make(map[string]int, 3),
		Aggregate: device.ComputeAggregate(loads),
	}
	for _, d := range loads {
		m.ByStatus[string(d.Status)]++
		m.ByMode[string(d.Mode)]++
		if s.ctrl.Pending(d.ID) {
			m.Pending++
		}
	}
	return m
}

func (s *Server) databaseMetrics() *DatabaseMetrics {
	if s.db == nil {
		return nil
	}
	st := s.db.Stats()
	return &DatabaseMetrics{
		OpenConnections: st.OpenConnections,
		InUse:           st.InUse,
		Idle:            st.Idle,
		WaitCount:       st.WaitCount,
	}
}

// prometheusHandler serves the registry given in Deps.Gatherer.
func (s *Server) prometheusHandler() http.Handler {
	return promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{ErrorLog: promLogger{s}})
}

type promLogger struct{ s *Server }

func (l promLogger) Println(v ...any) {
	l.s.logger.Warn("prometheus handler error", "detail", fmt.Sprint(v...))
}
