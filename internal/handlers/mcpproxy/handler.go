// internal/handlers/mcpproxy/handler.go
package mcpproxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apperrors "fireaid/internal/common/errors"
	commonhttp "fireaid/internal/common/http"
	"fireaid/internal/common/logger"
)

const (
	Name = "mcpproxy"

	RouteTools   = "GET /api/mcp/tools"
	RouteRunGet  = "GET /api/mcp/run"
	RouteRunPost = "POST /api/mcp/run"
	RouteSearch  = "GET /api/mcp/search"

	upstreamName    = "tool backend"
	maxRunBodyBytes = 1 << 20
)

// ToolBackend is satisfied by *toolclient.Client.
type ToolBackend interface {
	Tools(ctx context.Context) (*commonhttp.Response, error)
	Call(ctx context.Context, path string) (*commonhttp.Response, error)
	Search(ctx context.Context, query url.Values) (*commonhttp.Response, error)
	Run(ctx context.Context, query string) (*commonhttp.Response, error)
}

// Handler forwards dashboard calls to the tool backend and relays its JSON.
type Handler struct {
	config  *Config
	backend ToolBackend
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, backend ToolBackend, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"handler": Name})
	return &Handler{
		config:  config,
		backend: backend,
		errors:  apperrors.NewErrorHandler(l),
		logger:  l,
	}
}

// Register mounts every proxy route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc(RouteTools, h.Tools)
	mux.HandleFunc(RouteRunGet, h.RunGet)
	mux.HandleFunc(RouteRunPost, h.RunPost)
	mux.HandleFunc(RouteSearch, h.Search)
}

func (h *Handler) Tools(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, func(ctx context.Context) (*commonhttp.Response, error) {
		return h.backend.Tools(ctx)
	})
}

// RunGet calls the backend path given in ?path=, e.g. /mcp/count?year=2024.
func (h *Handler) RunGet(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		h.errors.WriteHTTPError(w, r, apperrors.NewMissingParameterError("Missing path"))
		return
	}
	h.relay(w, r, func(ctx context.Context) (*commonhttp.Response, error) {
		return h.backend.Call(ctx, path)
	})
}

// RunPost forwards a natural-language query to the backend /run endpoint.
func (h *Handler) RunPost(w http.ResponseWriter, r *http.Request) {
	var input RunInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRunBodyBytes)).Decode(&input); err != nil {
		h.errors.WriteHTTPError(w, r, apperrors.NewValidationFailedError(fmt.Sprintf("invalid JSON body: %v", err)))
		return
	}
	if strings.TrimSpace(input.Query) == "" {
		h.errors.WriteHTTPError(w, r, apperrors.NewMissingParameterError("Missing query"))
		return
	}
	h.relay(w, r, func(ctx context.Context) (*commonhttp.Response, error) {
		return h.backend.Run(ctx, input.Query)
	})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, func(ctx context.Context) (*commonhttp.Response, error) {
		return h.backend.Search(ctx, r.URL.Query())
	})
}

// relay writes a 2xx JSON body through unchanged. Non-2xx replies keep the
// upstream status with the upstream text as the error message.
func (h *Handler) relay(w http.ResponseWriter, r *http.Request, call func(ctx context.Context) (*commonhttp.Response, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.config.Timeout)
	defer cancel()

	resp, err := call(ctx)
	if err != nil {
		h.errors.WriteHTTPError(w, r, err)
		return
	}
	if !resp.OK() {
		h.errors.WriteHTTPError(w, r, apperrors.NewUpstreamError(upstreamName, resp.StatusCode, string(resp.Body)))
		return
	}
	if !json.Valid(resp.Body) {
		h.errors.WriteHTTPError(w, r, apperrors.NewInternalError(fmt.Errorf("%s returned invalid JSON", upstreamName)))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(resp.Body); err != nil {
		h.logger.Warn("failed to write proxied body", map[string]interface{}{"error": err})
	}
}
