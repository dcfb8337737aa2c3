package results

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonhttp "fireaid/internal/common/http"
	"fireaid/internal/common/logger"
	"fireaid/internal/resultview"
)

type fakeCaller struct {
	resp *commonhttp.Response
	err  error
	path string
}

func (f *fakeCaller) Call(_ context.Context, path string) (*commonhttp.Response, error) {
	f.path = path
	return f.resp, f.err
}

func serve(t *testing.T, caller ToolCaller, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	NewHandler(&Config{Timeout: time.Second}, caller, logger.NewTestLogger(t)).Register(mux)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) Output {
	t.Helper()
	var out Output
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestResult_FirePoints(t *testing.T) {
	caller := &fakeCaller{resp: &commonhttp.Response{StatusCode: http.StatusOK, Body: []byte(`{"results":[
		{"MAPNAME":"Map A","ID":"1","NAME":"Alpha","LATITUDE":64.8378,"LONGITUDE":-147.7164,"EXTRA":true},
		{"ID":"2","NAME":"Bravo","LATITUDE":61.2181,"LONGITUDE":-149.9003}
	]}`)}}

	rr := serve(t, caller, "/api/mcp/result?tool=search_fire_points")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/mcp/search?year=2024&prescribed=Y&limit=10", caller.path)

	out := decode(t, rr)
	assert.Equal(t, resultview.KindRowSet, out.Kind)
	assert.Equal(t, resultview.ViewTable, out.View)
	assert.Equal(t, "rows: 2", out.Badge)
	require.NotNil(t, out.Count)
	assert.Equal(t, float64(2), *out.Count)
	assert.Equal(t, []string{"ID", "NAME", "LATITUDE", "LONGITUDE", "MAPNAME"}, out.Table.Columns)
	assert.Equal(t, [][]string{
		{"1", "Alpha", "64.838", "-147.7164", "Map A"},
		{"2", "Bravo", "61.218", "-149.9003", ""},
	}, out.Table.Rows)
	assert.Equal(t, "Showing 2 of 2 rows", out.Table.Summary)
}

func TestResult_NestedCount(t *testing.T) {
	caller := &fakeCaller{resp: &commonhttp.Response{StatusCode: http.StatusOK, Body: []byte(`{"year":2024,"count":{"year":2024,"count":469}}`)}}

	rr := serve(t, caller, "/api/mcp/result?tool=count_by_year&path=%2Fmcp%2Fcount%3Fyear%3D2024")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/mcp/count?year=2024", caller.path)

	out := decode(t, rr)
	assert.Equal(t, resultview.KindScalarSummary, out.Kind)
	assert.Equal(t, resultview.ViewJSON, out.View)
	assert.Equal(t, "count: 469", out.Badge)
	assert.Empty(t, out.Table.Columns)
	assert.Contains(t, out.Raw, `"count": 469`)
}

func TestResult_Opaque(t *testing.T) {
	caller := &fakeCaller{resp: &commonhttp.Response{StatusCode: http.StatusOK, Body: []byte(`{"message":"hello"}`)}}

	out := decode(t, serve(t, caller, "/api/mcp/result?tool=custom&path=/mcp/custom"))
	assert.Equal(t, resultview.KindOpaque, out.Kind)
	assert.Nil(t, out.Count)
	assert.Empty(t, out.Badge)
	assert.Equal(t, "{\n  \"message\": \"hello\"\n}", out.Raw)
}

func TestResult_Errors(t *testing.T) {
	rr := serve(t, &fakeCaller{}, "/api/mcp/result?tool=unknown")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error":"Missing path"`)

	caller := &fakeCaller{resp: &commonhttp.Response{StatusCode: http.StatusBadGateway, Body: []byte("bad gateway")}}
	rr = serve(t, caller, "/api/mcp/result?tool=x&path=/mcp/search")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error":"bad gateway"`)
}

func TestRender_IsDeterministic(t *testing.T) {
	body := []byte(`[{"a":1,"b":2.5,"c":"x","d":null,"e":[1,2],"f":false,"g":7,"h":8}]`)
	first := Render("anything", "/x", body)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Render("anything", "/x", body))
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, first.Table.Columns)
	assert.Equal(t, [][]string{{"1", "2.500", "x", "", "[1,2]", "false"}}, first.Table.Rows)
}

func TestSuggested(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		call    string
		snippet string
	}{
		{
			name:    "fire points",
			target:  "/api/mcp/suggested-call?tool=search_fire_points&description=Search%20fire%20points",
			call:    "/mcp/search?year=2024&prescribed=Y&limit=10",
			snippet: "Tool: search_fire_points\nDescription: Search fire points\n\nSuggested call:\n/mcp/search?year=2024&prescribed=Y&limit=10\n",
		},
		{
			name:    "count",
			target:  "/api/mcp/suggested-call?tool=count_by_year",
			call:    "/mcp/count?year=2024",
			snippet: "Tool: count_by_year\nDescription: \n\nSuggested call:\n/mcp/count?year=2024\n",
		},
		{
			name:    "no suggestion",
			target:  "/api/mcp/suggested-call?tool=search_wildfires",
			call:    "",
			snippet: "Tool: search_wildfires\nDescription: \n\nSuggested call:\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(t, &fakeCaller{}, tt.target)
			require.Equal(t, http.StatusOK, rr.Code)

			var out SuggestedCall
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
			assert.Equal(t, tt.call, out.Call)
			assert.Equal(t, tt.snippet, out.Snippet)
		})
	}

	rr := serve(t, &fakeCaller{}, "/api/mcp/suggested-call")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
