package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      *StandardError
		expected int
	}{
		{"missing parameter", NewMissingParameterError("Missing path"), http.StatusBadRequest},
		{"invalid tool args", NewInvalidToolArgsError("count_by_year", "year: required"), http.StatusBadRequest},
		{"tool not found", NewToolNotFoundError("nope"), http.StatusNotFound},
		{"timeout", NewUpstreamTimeoutError("ArcGIS"), http.StatusGatewayTimeout},
		{"upstream status kept", NewUpstreamError("tool backend", http.StatusTeapot, "short and stout"), http.StatusTeapot},
		{"feature query", NewFeatureQueryFailedError(400, "bad"), http.StatusInternalServerError},
		{"internal", NewInternalError(fmt.Errorf("boom")), http.StatusInternalServerError},
		{"explicit override", NewInternalError(fmt.Errorf("boom")).WithStatus(http.StatusBadGateway), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "UPSTREAM", GetErrorCategory(ErrCodeUpstreamTimeout))
	assert.Equal(t, "FEATURE_SERVICE", GetErrorCategory(ErrCodeFeatureQueryError))
	assert.Equal(t, "TOOL", GetErrorCategory(ErrCodeToolNotFound))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeStoreFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeMissingParameter))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternalError))

	assert.True(t, IsRetryableErrorCode(ErrCodeUpstreamUnavailable))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidToolArgs))
}

func TestNormalize(t *testing.T) {
	wrapped := fmt.Errorf("query: %w", NewToolNotFoundError("x"))
	assert.Equal(t, ErrCodeToolNotFound, Normalize(wrapped).Code)
	assert.Equal(t, ErrCodeInternalError, Normalize(fmt.Errorf("plain")).Code)
}

type recordingLogger struct {
	fields map[string]interface{}
}

func (l *recordingLogger) Error(_ string, fields map[string]interface{}) {
	l.fields = fields
}

func TestWriteHTTPError_Envelope(t *testing.T) {
	log := &recordingLogger{}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/wildfires", nil)

	NewErrorHandler(log).WriteHTTPError(rr, req, NewFeatureQueryFailedError(400, "Invalid where clause"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ArcGIS request failed", body["error"])
	assert.Equal(t, "FEATURE_QUERY_FAILED", body["code"])
	assert.Equal(t, "Invalid where clause", body["detail"])
	assert.Equal(t, float64(400), body["status"])

	assert.Equal(t, "/api/wildfires", log.fields["path"])
	assert.Equal(t, "FEATURE_SERVICE", log.fields["errorCategory"])
}
