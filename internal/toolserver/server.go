package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fireaid/internal/common/config"
	apperrors "fireaid/internal/common/errors"
	"fireaid/internal/common/logger"
	"fireaid/internal/common/middleware"
	"fireaid/internal/firepoints"
	"fireaid/internal/models"
)

const (
	defaultSearchYear       = 2024
	defaultSearchPrescribed = "Y"
	defaultSearchLimit      = 10
	maxRunBodyBytes         = 1 << 20
)

var summaries = []models.ToolSummary{
	{Name: ToolSearchFirePoints, Desc: "Search fire points"},
	{Name: ToolCountByYear, Desc: "Count by year"},
}

var catalog = []models.CatalogEntry{
	{
		ID:          ToolSearchWildfires,
		Name:        "Search Wildfires",
		Kind:        "system",
		Tag:         "NIFC/WFIGS",
		Description: "Search current wildland fire incidents (ArcGIS WFIGS). State format is typically 'US-CA'.",
		Rating:      "Live data",
	},
	{
		ID:          ToolSearchFirePoints,
		Name:        "Search Fire Points",
		Kind:        "system",
		Tag:         "AK Fire Points",
		Description: "Search Alaska fire location points by year, prescribed flag and management org.",
		Rating:      "Historical data",
	},
	{
		ID:          ToolCountByYear,
		Name:        "Count By Year",
		Kind:        "system",
		Tag:         "AK Fire Points",
		Description: "Count Alaska fire location points for a fire season.",
		Rating:      "Historical data",
	},
}

// Server is the HTTP surface of the tool backend.
type Server struct {
	registry   *Registry
	errors     *apperrors.ErrorHandler
	logger     logger.Logger
	httpServer *http.Server
}

func NewServer(cfg config.ToolServerConfig, registry *Registry, log logger.Logger) *Server {
	s := &Server{
		registry: registry,
		logger:   log.WithFields(map[string]interface{}{"component": "toolserver.http"}),
	}
	s.errors = apperrors.NewErrorHandler(s.logger)
	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /mcp/tools", s.handleSummaries)
	mux.HandleFunc("GET /mcp/search", s.handleMCPSearch)
	mux.HandleFunc("GET /mcp/count", s.handleMCPCount)
	mux.HandleFunc("GET /search_fire_points", s.handleSearchFirePoints)
	mux.HandleFunc("GET /count_by_year", s.handleCountByYear)
	mux.HandleFunc("GET /tools", s.handleCatalog)
	mux.HandleFunc("POST /run", s.handleRun)
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.Chain(mux,
		middleware.RequestID(),
		middleware.Recover(s.errors, s.logger),
		middleware.CORS("*"),
		middleware.Logging(s.logger),
		middleware.Metrics(),
	)
}

func (s *Server) Start() error {
	s.logger.Info("tool server listening", map[string]interface{}{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSummaries(w http.ResponseWriter, r *http.Request) {
	out := make([]models.ToolSummary, 0, len(summaries))
	for _, t := range summaries {
		if s.registry.Has(t.Name) {
			out = append(out, t)
		}
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]interface{}{"tools": out})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	out := make([]models.CatalogEntry, 0, len(catalog))
	for _, t := range catalog {
		if s.registry.Has(t.ID) {
			out = append(out, t)
		}
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]interface{}{"tools": out})
}

// GET /mcp/search defaults to the 2024 prescribed-burn view the dashboard opens with.
func (s *Server) handleMCPSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, err := queryInt(q, "year", defaultSearchYear)
	if err != nil {
		s.errors.WriteHTTPError(w, r, err)
		return
	}
	limit, err := queryInt(q, "limit", defaultSearchLimit)
	if err != nil {
		s.errors.WriteHTTPError(w, r, err)
		return
	}
	prescribed := defaultSearchPrescribed
	if q.Has("prescribed") {
		prescribed = q.Get("prescribed")
	}

	args := map[string]interface{}{"year": year, "prescribed": prescribed, "limit": limit}
	if org := q.Get("org"); org != "" {
		args["org"] = org
	}

	out, err := s.registry.Invoke(r.Context(), ToolSearchFirePoints, args)
	if err != nil {
		s.errors.WriteHTTPError(w, r, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]interface{}{"results": out})
}

// GET /mcp/count nests the count_by_year result under "count".
func (s *Server) handleMCPCount(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r.URL.Query(), "year", defaultSearchYear)
	if err != nil {
		s.errors.WriteHTTPError(w, r, err)
		return
	}
	out, err := s.registry.Invoke(r.Context(), ToolCountByYear, map[string]interface{}{"year": year})
	if err != nil {
		s.errors.WriteHTTPError(w, r, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]interface{}{"year": year, "count": out})
}

// GET /search_fire_points returns the bare list; limit must be within [1, 100].
func (s *Server) handleSearchFirePoints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	args := map[string]interface{}{}

	if q.Get("year") != "" {
		year, err := queryInt(q, "year", 0)
		if err != nil {
			s.errors.WriteHTTPError(w, r, err)
			return
		}
		args["year"] = year
	}
	limit, err := queryInt(q, "limit", DefaultFirePointLimit)
	if err != nil {
		s.errors.WriteHTTPError(w, r, err)
		return
	}
	if limit < firepoints.MinLimit || limit > firepoints.MaxLimit {
		s.errors.WriteHTTPError(w, r, apperrors.NewInvalidParameterError("Invalid limit", "limit must be between 1 and 100"))
		return
	}
	args["limit"] = limit
	if v := q.Get("prescribed"); v != "" {
		args["prescribed"] = v
	}
	if v := q.Get("org"); v != "" {
		args["org"] = v
	}

	out, err := s.registry.Invoke(r.Context(), ToolSearchFirePoints, args)
	if err != nil {
		s.errors.WriteHTTPError(w, r, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleCountByYear(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if strings.TrimSpace(q.Get("year")) == "" {
		s.errors.WriteHTTPError(w, r, apperrors.NewMissingParameterError("Missing year"))
		return
	}
	year, err := queryInt(q, "year", 0)
	if err != nil {
		s.errors.WriteHTTPError(w, r, err)
		return
	}
	out, err := s.registry.Invoke(r.Context(), ToolCountByYear, map[string]interface{}{"year": year})
	if err != nil {
		s.errors.WriteHTTPError(w, r, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req models.RunRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRunBodyBytes)).Decode(&req); err != nil {
		s.errors.WriteHTTPError(w, r, apperrors.NewValidationFailedError("invalid JSON body: "+err.Error()))
		return
	}
	if strings.TrimSpace(req.ToolID) == "" {
		s.errors.WriteHTTPError(w, r, apperrors.NewMissingParameterError("Missing toolId"))
		return
	}

	out, err := s.registry.Invoke(r.Context(), req.ToolID, req.Args)
	if err != nil {
		s.errors.WriteHTTPError(w, r, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]interface{}{"result": out})
}

func queryInt(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewInvalidParameterError("Invalid "+key, key+" must be an integer")
	}
	return n, nil
}
