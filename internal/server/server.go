// Package server assembles the dashboard HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fireaid/internal/common/config"
	apperrors "fireaid/internal/common/errors"
	"fireaid/internal/common/logger"
	"fireaid/internal/common/middleware"
	"fireaid/internal/handlers/mcpproxy"
	"fireaid/internal/handlers/results"
	"fireaid/internal/handlers/terminology"
	"fireaid/internal/handlers/wildfires"
)

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the dashboard routes call. Nil members disable
// their routes.
type Deps struct {
	Incidents wildfires.IncidentSource
	Tools     mcpproxy.ToolBackend
	Terms     terminology.Store
	Ready     map[string]Pinger
}

type Server struct {
	cfg        *config.Config
	deps       Deps
	logger     logger.Logger
	errors     *apperrors.ErrorHandler
	httpServer *http.Server
}

func New(cfg *config.Config, deps Deps, log logger.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: log.WithFields(map[string]interface{}{"component": "dashboard"}),
	}
	s.errors = apperrors.NewErrorHandler(s.logger)
	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      s.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	if s.deps.Incidents != nil && config.IsHandlerEnabled(s.cfg, wildfires.Name) {
		h := wildfires.NewHandler(
			wildfires.LoadConfig(config.GetHandlerConfig(s.cfg, wildfires.Name)),
			s.deps.Incidents, s.logger,
		)
		mux.Handle(wildfires.Route, h)
		s.logger.Info("handler registered", map[string]interface{}{"handler": wildfires.Name})
	}

	if s.deps.Tools != nil {
		if config.IsHandlerEnabled(s.cfg, mcpproxy.Name) {
			mcpproxy.NewHandler(
				mcpproxy.LoadConfig(config.GetHandlerConfig(s.cfg, mcpproxy.Name)),
				s.deps.Tools, s.logger,
			).Register(mux)
			s.logger.Info("handler registered", map[string]interface{}{"handler": mcpproxy.Name})
		}
		if config.IsHandlerEnabled(s.cfg, results.Name) {
			results.NewHandler(
				results.LoadConfig(config.GetHandlerConfig(s.cfg, results.Name)),
				s.deps.Tools, s.logger,
			).Register(mux)
			s.logger.Info("handler registered", map[string]interface{}{"handler": results.Name})
		}
	}

	if s.deps.Terms != nil && config.IsHandlerEnabled(s.cfg, terminology.Name) {
		terminology.NewHandler(
			terminology.LoadConfig(config.GetHandlerConfig(s.cfg, terminology.Name)),
			s.deps.Terms, s.logger,
		).Register(mux)
		s.logger.Info("handler registered", map[string]interface{}{"handler": terminology.Name})
	}

	return middleware.Chain(mux,
		middleware.RequestID(),
		middleware.Recover(s.errors, s.logger),
		middleware.Logging(s.logger),
		middleware.Metrics(),
	)
}

func (s *Server) Start() error {
	s.logger.Info("dashboard listening", map[string]interface{}{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleReady pings every dependency and reports each one.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.deps.Ready))
	status := http.StatusOK
	for name, p := range s.deps.Ready {
		if err := p.Ping(r.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	apperrors.WriteJSON(w, status, map[string]interface{}{"status": state, "checks": checks})
}
