package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gramjyoti/microgrid-core/internal/control"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/config"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/database"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/influxdb"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/logging"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/mqtt"
	"github.com/gramjyoti/microgrid-core/internal/journal"
	"github.com/gramjyoti/microgrid-core/internal/site"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	WS         config.WebSocketConfig
	Metrics    config.MetricsConfig
	Logger     *logging.Logger
	Controller *control.Controller
	Site       site.Provider

	// Optional integrations. Nil disables the related endpoints or
	// omits them from health and metrics reports.
	Journal  *journal.Journal
	MQTT     *mqtt.Client
	InfluxDB *influxdb.Client
	DB       *database.DB
	Gatherer prometheus.Gatherer

	PanelDir string // serve the dashboard from disk instead of the embedded copy
	Version  string
}

// Server is the HTTP API server for the Gram Jyoti core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg        config.APIConfig
	metricsCfg config.MetricsConfig
	logger     *logging.Logger
	ctrl       *control.Controller
	site       site.Provider
	journal    *journal.Journal
	mqtt       *mqtt.Client
	influx     *influxdb.Client
	db         *database.DB
	gatherer   prometheus.Gatherer
	panelDir   string
	version    string
	startTime  time.Time
	server     *http.Server
	hub        *Hub
	cancel     context.CancelFunc // stops the hub on Close()
}

// New creates a new API server with the given dependencies.
//
// The WebSocket hub exists from construction so it can be attached to
// the controller as a notifier before the server starts.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Controller == nil {
		return nil, fmt.Errorf("load controller is required")
	}
	if deps.Site == nil {
		deps.Site = site.NewStaticProvider()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		cfg:        deps.Config,
		metricsCfg: deps.Metrics,
		logger:     deps.Logger,
		ctrl:       deps.Controller,
		site:       deps.Site,
		journal:    deps.Journal,
		mqtt:       deps.MQTT,
		influx:     deps.InfluxDB,
		db:         deps.DB,
		gatherer:   deps.Gatherer,
		panelDir:   deps.PanelDir,
		version:    deps.Version,
		startTime:  time.Now(),
	}
	s.hub = NewHub(deps.WS, deps.Logger.Component("websocket"))

	return s, nil
}

// Hub returns the server's WebSocket hub. It implements control.Notifier.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the fully wired HTTP handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server, waiting up to 10 seconds
// for in-flight requests before closing remaining connections.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
