// Package toolclient forwards dashboard requests to the tool backend.
package toolclient

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fireaid/internal/common/config"
	apperrors "fireaid/internal/common/errors"
	commonhttp "fireaid/internal/common/http"
	"fireaid/internal/common/logger"
	"fireaid/internal/common/metrics"
)

const upstreamName = "mcp"

var ErrInvalidPath = stderrors.New("INVALID_PATH")

type Client struct {
	http    *commonhttp.Client
	baseURL string
	logger  logger.Logger
}

func NewClient(cfg config.MCPConfig, log logger.Logger) *Client {
	return &Client{
		http:    commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  log.WithFields(map[string]interface{}{"component": "toolclient"}),
	}
}

// Tools fetches the backend tool catalogue.
func (c *Client) Tools(ctx context.Context) (*commonhttp.Response, error) {
	return c.do(ctx, http.MethodGet, "/tools", nil)
}

// Call issues GET <base><path>. path must be a relative reference starting with "/".
func (c *Client) Call(ctx context.Context, path string) (*commonhttp.Response, error) {
	if err := ValidatePath(path); err != nil {
		return nil, apperrors.NewInvalidParameterError("Invalid path", err.Error())
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

// Search forwards a fire-point search with the caller's query string.
func (c *Client) Search(ctx context.Context, query url.Values) (*commonhttp.Response, error) {
	path := "/mcp/search"
	if qs := query.Encode(); qs != "" {
		path += "?" + qs
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

// Run posts a natural-language query to the backend /run endpoint.
func (c *Client) Run(ctx context.Context, query string) (*commonhttp.Response, error) {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return c.do(ctx, http.MethodPost, "/run", body)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*commonhttp.Response, error) {
	var headers map[string]string
	var reader io.Reader
	if body != nil {
		headers = map[string]string{"Content-Type": "application/json"}
		reader = bytes.NewReader(body)
	}

	start := time.Now()
	resp, err := c.http.Fetch(ctx, method, c.baseURL+path, reader, headers)
	metrics.UpstreamRequestDuration.WithLabelValues(upstreamName).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(upstreamName, metrics.OutcomeUnavailable).Inc()
		c.logger.Warn("tool backend unreachable", map[string]interface{}{
			"method": method,
			"path":   path,
			"error":  err,
		})
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewUpstreamTimeoutError("tool backend")
		}
		return nil, apperrors.NewUpstreamUnavailableError("tool backend", err)
	}

	outcome := metrics.OutcomeSuccess
	if !resp.OK() {
		outcome = metrics.OutcomeError
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(upstreamName, outcome).Inc()
	return resp, nil
}

// ValidatePath accepts origin-relative references like "/mcp/count?year=2024".
// Scheme-relative ("//host"), absolute and dot-segment paths are rejected.
func ValidatePath(path string) error {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return fmt.Errorf("%w: must start with a single '/'", ErrInvalidPath)
	}
	if strings.ContainsAny(path, "\\\r\n") {
		return fmt.Errorf("%w: illegal character", ErrInvalidPath)
	}
	u, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if u.Scheme != "" || u.Host != "" || u.User != nil {
		return fmt.Errorf("%w: must not name a host", ErrInvalidPath)
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == ".." {
			return fmt.Errorf("%w: dot segments are not allowed", ErrInvalidPath)
		}
	}
	return nil
}
