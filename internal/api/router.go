package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gramjyoti/microgrid-core/internal/panel"
)

const (
	// apiPrefix is the mount point of the versioned REST API and WebSocket.
	apiPrefix = "/api/v1"

	// healthCheckTimeout bounds each dependency check in GET /health.
	healthCheckTimeout = 2 * time.Second
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(middleware.RequestSize(maxRequestBodySize))

	// Operator dashboard (embedded single page)
	r.Handle("/panel/*", http.StripPrefix("/panel", panel.Handler(panel.Options{
		Dir:     s.panelDir,
		APIBase: apiPrefix,
		WSPath:  apiPrefix + s.wsPath(),
	})))
	r.Handle("/panel", http.RedirectHandler("/panel/", http.StatusMovedPermanently))
	r.Handle("/", http.RedirectHandler("/panel/", http.StatusFound))

	if s.metricsCfg.Enabled {
		r.Handle(s.metricsCfg.Path, s.prometheusHandler())
	}

	r.Route(apiPrefix, func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/loads", func(r chi.Router) {
			r.Get("/", s.handleListLoads)
			r.Get("/aggregate", s.handleGetAggregate)
			r.Post("/emergency-shutdown", s.handleEmergencyShutdown)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetLoad)
				r.Post("/toggle", s.handleToggleLoad)
				r.Put("/mode", s.handleSetMode)
				r.Post("/mode/flip", s.handleFlipMode)
				if s.journal != nil {
					r.Get("/events", s.handleListLoadEvents)
				}
			})
		})

		if s.journal != nil {
			r.Get("/events", s.handleListEvents)
		}

		r.Route("/site", func(r chi.Router) {
			r.Get("/overview", s.handleSiteOverview)
			r.Get("/energy", s.handleSiteEnergy)
		})

		r.Route("/i18n", func(r chi.Router) {
			r.Get("/languages", s.handleListLanguages)
			r.Get("/{lang}", s.handleTranslations)
		})

		r.Get(s.wsPath(), s.handleWebSocket)
	})

	return r
}

// wsPath returns the WebSocket route under /api/v1.
func (s *Server) wsPath() string {
	if s.hub.cfg.Path == "" {
		return "/ws"
	}
	return s.hub.cfg.Path
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// handleHealth reports overall status and the state of each enabled
// integration. Integrations being down degrade the status but the
// endpoint still answers 200, since load control works without them.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]healthChecker{}
	if s.mqtt != nil {
		checks["mqtt"] = s.mqtt
	}
	if s.influx != nil {
		checks["influxdb"] = s.influx
	}
	if s.db != nil {
		checks["database"] = s.db
	}

	status := "ok"
	components := make(map[string]string, len(checks))
	for name, c := range checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := c.HealthCheck(ctx)
		cancel()
		if err != nil {
			components[name] = err.Error()
			status = "degraded"
			continue
		}
		components[name] = "ok"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"version":    s.version,
		"loads":      len(s.ctrl.Snapshot()),
		"components": components,
	})
}
