// Package arcgis queries the WFIGS current-incidents feature layer.
package arcgis

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"fireaid/internal/common/config"
	"fireaid/internal/common/database"
	apperrors "fireaid/internal/common/errors"
	commonhttp "fireaid/internal/common/http"
	"fireaid/internal/common/logger"
	"fireaid/internal/common/metrics"
	"fireaid/internal/featurequery"
	"fireaid/internal/models"
)

const upstreamName = "arcgis"

// Cache stores successful query replies. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Client struct {
	http     *commonhttp.Client
	queryURL string
	cache    Cache
	ttl      time.Duration
	logger   logger.Logger
}

// NewClient builds a feature layer client. cache may be nil; it is only
// consulted when cfg.CacheTTL is positive.
func NewClient(cfg config.ArcGISConfig, cache Cache, log logger.Logger) *Client {
	layer := cfg.LayerURL
	if layer == "" {
		layer = config.DefaultLayerURL
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	return &Client{
		http:     commonhttp.NewClient(config.GetDuration(cfg.Timeout)).WithUserAgent(ua),
		queryURL: strings.TrimRight(layer, "/") + "/query",
		cache:    cache,
		ttl:      config.GetDuration(cfg.CacheTTL),
		logger:   log.WithFields(map[string]interface{}{"component": "arcgis"}),
	}
}

// QueryURL returns the full request URL for q.
func (c *Client) QueryURL(q featurequery.QueryDescriptor) string {
	return c.queryURL + "?" + q.Values().Encode()
}

// Query runs q and maps the returned features to incidents.
func (c *Client) Query(ctx context.Context, q featurequery.QueryDescriptor) ([]models.Incident, error) {
	target := c.QueryURL(q)
	key := cacheKey(target)

	if body, ok := c.lookup(ctx, key); ok {
		return decodeIncidents(body)
	}

	start := time.Now()
	resp, err := c.http.Fetch(ctx, http.MethodGet, target, nil, map[string]string{"Accept": "application/json"})
	metrics.UpstreamRequestDuration.WithLabelValues(upstreamName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(upstreamName, metrics.OutcomeUnavailable).Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewUpstreamTimeoutError("ArcGIS")
		}
		return nil, apperrors.NewUpstreamUnavailableError("ArcGIS", err)
	}

	if !resp.OK() {
		metrics.UpstreamRequestsTotal.WithLabelValues(upstreamName, metrics.OutcomeError).Inc()
		c.logger.Warn("feature query failed", map[string]interface{}{
			"status": resp.StatusCode,
			"where":  q.FilterExpression,
		})
		return nil, apperrors.NewFeatureQueryFailedError(resp.StatusCode, string(resp.Body))
	}

	incidents, err := decodeIncidents(resp.Body)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(upstreamName, metrics.OutcomeError).Inc()
		return nil, err
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(upstreamName, metrics.OutcomeSuccess).Inc()
	c.store(ctx, key, resp.Body)
	return incidents, nil
}

func (c *Client) cacheEnabled() bool {
	return c.cache != nil && c.ttl > 0
}

func (c *Client) lookup(ctx context.Context, key string) ([]byte, bool) {
	if !c.cacheEnabled() {
		return nil, false
	}
	body, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		metrics.ArcGISCacheLookups.WithLabelValues("hit").Inc()
		return body, true
	case errors.Is(err, database.ErrCacheMiss):
		metrics.ArcGISCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.ArcGISCacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("feature cache lookup failed", map[string]interface{}{"error": err})
	}
	return nil, false
}

func (c *Client) store(ctx context.Context, key string, body []byte) {
	if !c.cacheEnabled() {
		return
	}
	if err := c.cache.Set(ctx, key, body, c.ttl); err != nil {
		c.logger.Warn("feature cache store failed", map[string]interface{}{"error": err})
	}
}

func cacheKey(target string) string {
	sum := sha1.Sum([]byte(target))
	return "arcgis:query:" + hex.EncodeToString(sum[:])
}

// decodeIncidents reads a feature-service reply. A truthy top-level "error"
// member fails the query; a missing or malformed "features" member yields no incidents.
func decodeIncidents(body []byte) ([]models.Incident, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		var other interface{}
		if json.Unmarshal(body, &other) == nil {
			return []models.Incident{}, nil
		}
		return nil, apperrors.NewInternalError(err)
	}

	if errRaw, ok := top["error"]; ok && truthy(errRaw) {
		var detail interface{}
		_ = json.Unmarshal(errRaw, &detail)
		return nil, apperrors.NewFeatureQueryError(detail)
	}

	var features []json.RawMessage
	if err := json.Unmarshal(top["features"], &features); err != nil {
		return []models.Incident{}, nil
	}

	incidents := make([]models.Incident, 0, len(features))
	for _, raw := range features {
		var f models.Feature
		if err := json.Unmarshal(raw, &f); err != nil {
			f = models.Feature{}
		}
		incidents = append(incidents, models.IncidentFromAttributes(f.Attributes))
	}
	return incidents, nil
}

func truthy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}
