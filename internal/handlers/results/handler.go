// internal/handlers/results/handler.go
package results

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	apperrors "fireaid/internal/common/errors"
	commonhttp "fireaid/internal/common/http"
	"fireaid/internal/common/logger"
	"fireaid/internal/common/metrics"
	"fireaid/internal/resultview"
)

const (
	Name = "results"

	RouteResult        = "GET /api/mcp/result"
	RouteSuggestedCall = "GET /api/mcp/suggested-call"
)

// suggestedCalls are the backend calls a tool card pre-fills.
var suggestedCalls = map[string]string{
	"search_fire_points": "/mcp/search?year=2024&prescribed=Y&limit=10",
	"count_by_year":      "/mcp/count?year=2024",
}

// ToolCaller is satisfied by *toolclient.Client.
type ToolCaller interface {
	Call(ctx context.Context, path string) (*commonhttp.Response, error)
}

// Handler invokes a tool call and returns its classified, table-ready form.
// The tool name travels with every request; nothing is remembered between calls.
type Handler struct {
	config *Config
	caller ToolCaller
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, caller ToolCaller, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"handler": Name})
	return &Handler{
		config: config,
		caller: caller,
		errors: apperrors.NewErrorHandler(l),
		logger: l,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc(RouteResult, h.Result)
	mux.HandleFunc(RouteSuggestedCall, h.Suggested)
}

func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := Input{Tool: q.Get("tool"), Call: q.Get("path")}
	if input.Call == "" {
		input.Call = SuggestedCallFor(input.Tool)
	}
	if input.Call == "" {
		h.errors.WriteHTTPError(w, r, apperrors.NewMissingParameterError("Missing path"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errors.WriteHTTPError(w, r, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, output)
}

// Execute runs input.Call against the tool backend and renders the reply.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	resp, err := h.caller.Call(ctx, input.Call)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, apperrors.NewUpstreamError("tool backend", resp.StatusCode, string(resp.Body))
	}

	out := Render(input.Tool, input.Call, resp.Body)
	metrics.ResultClassifications.WithLabelValues(string(out.Kind)).Inc()
	h.logger.Debug("result classified", map[string]interface{}{
		"tool": input.Tool,
		"kind": out.Kind,
		"rows": len(out.Table.Rows),
	})
	return out, nil
}

// Render classifies body and projects it for the result panel.
func Render(tool, call string, body []byte) *Output {
	c := resultview.Classify(body)
	tv := resultview.BuildTable(tool, c)
	return &Output{
		Tool:  tool,
		Call:  call,
		Kind:  c.Kind,
		Count: c.Count,
		Badge: tv.Badge,
		View:  tv.View,
		Table: Table{
			Columns: tv.Columns,
			Rows:    tv.Rows,
			Summary: tv.Summary,
		},
		Raw: c.PrettyJSON(),
	}
}

func (h *Handler) Suggested(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tool := strings.TrimSpace(q.Get("tool"))
	if tool == "" {
		h.errors.WriteHTTPError(w, r, apperrors.NewMissingParameterError("Missing tool"))
		return
	}
	call := SuggestedCallFor(tool)
	apperrors.WriteJSON(w, http.StatusOK, SuggestedCall{
		Tool:    tool,
		Call:    call,
		Snippet: Snippet(tool, q.Get("description"), call),
	})
}

// SuggestedCallFor returns the default backend call for tool, or "".
func SuggestedCallFor(tool string) string {
	return suggestedCalls[tool]
}

// Snippet is the text a tool card copies into the prompt box.
func Snippet(tool, description, call string) string {
	return fmt.Sprintf("Tool: %s\nDescription: %s\n\nSuggested call:\n%s\n", tool, description, call)
}
