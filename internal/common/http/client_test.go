package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Fetch(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		expectOK   bool
		expectBody string
	}{
		{name: "ok", status: http.StatusOK, body: `{"ok":true}`, expectOK: true, expectBody: `{"ok":true}`},
		{name: "upstream error is not a go error", status: http.StatusBadGateway, body: "bad gateway", expectOK: false, expectBody: "bad gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "FireGPT/1.0", r.Header.Get("User-Agent"))
				assert.Equal(t, "application/json", r.Header.Get("Accept"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(2 * time.Second).WithUserAgent("FireGPT/1.0")
			resp, err := c.Fetch(context.Background(), http.MethodGet, srv.URL, nil, map[string]string{"Accept": "application/json"})
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.expectOK, resp.OK())
			assert.Equal(t, tt.expectBody, string(resp.Body))
		})
	}
}

func TestClient_FetchPostBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		_, _ = w.Write([]byte(buf.String()))
	}))
	defer srv.Close()

	c := NewClient(2 * time.Second)
	resp, err := c.Fetch(context.Background(), http.MethodPost, srv.URL, strings.NewReader(`{"query":"x"}`), nil)
	require.NoError(t, err)
	assert.Equal(t, `{"query":"x"}`, string(resp.Body))
}

func TestClient_FetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(time.Second)
	_, err := c.Fetch(context.Background(), http.MethodGet, url, nil, nil)
	assert.Error(t, err)
}

func TestClient_FetchCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewClient(5 * time.Second)
	_, err := c.Fetch(ctx, http.MethodGet, srv.URL, nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
