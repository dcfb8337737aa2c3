package toolclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fireaid/internal/common/config"
	apperrors "fireaid/internal/common/errors"
	"fireaid/internal/common/logger"
)

func createTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return NewClient(config.MCPConfig{BaseURL: baseURL + "/", Timeout: 2000}, logger.NewTestLogger(t))
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path  string
		valid bool
	}{
		{path: "/mcp/count?year=2024", valid: true},
		{path: "/mcp/search?year=2024&prescribed=Y&limit=10", valid: true},
		{path: "/health", valid: true},
		{path: "", valid: false},
		{path: "mcp/count", valid: false},
		{path: "//evil.example.com/x", valid: false},
		{path: "http://evil.example.com/x", valid: false},
		{path: "/\\evil.example.com", valid: false},
		{path: "/mcp/../admin", valid: false},
		{path: "/mcp\r\nHost: evil", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidPath)
			}
		})
	}
}

func TestClient_Forwarding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/tools":
			_, _ = w.Write([]byte(`{"tools":[]}`))
		case r.Method == http.MethodGet && r.URL.Path == "/mcp/count":
			assert.Equal(t, "2024", r.URL.Query().Get("year"))
			_, _ = w.Write([]byte(`{"year":2024,"count":{"year":2024,"count":3}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/mcp/search":
			assert.Equal(t, "limit=5&year=2023", r.URL.RawQuery)
			_, _ = w.Write([]byte(`{"results":[]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/run":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"query":"fires near Fairbanks"}`, string(body))
			_, _ = w.Write([]byte(`{"answer":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := createTestClient(t, srv.URL)
	ctx := context.Background()

	resp, err := client.Tools(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"tools":[]}`, string(resp.Body))

	resp, err = client.Call(ctx, "/mcp/count?year=2024")
	require.NoError(t, err)
	assert.True(t, resp.OK())

	resp, err = client.Search(ctx, url.Values{"year": {"2023"}, "limit": {"5"}})
	require.NoError(t, err)
	assert.Equal(t, `{"results":[]}`, string(resp.Body))

	resp, err = client.Run(ctx, "fires near Fairbanks")
	require.NoError(t, err)
	assert.Equal(t, `{"answer":"ok"}`, string(resp.Body))

	resp, err = client.Call(ctx, "/nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClient_CallRejectsForeignHost(t *testing.T) {
	client := createTestClient(t, "http://127.0.0.1:1")
	_, err := client.Call(context.Background(), "//evil.example.com/")

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidParameter, stdErr.Code)
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(stdErr))
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	client := createTestClient(t, base)
	_, err := client.Tools(context.Background())

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUpstreamUnavailable, stdErr.Code)
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(stdErr))
}
