package toolserver

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "fireaid/internal/common/errors"
	"fireaid/internal/common/logger"
	"fireaid/internal/common/observability"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Registry validates arguments and dispatches tool calls by name.
type Registry struct {
	tools  map[string]Tool
	order  []string
	obs    *observability.Observability
	logger logger.Logger
}

// NewRegistry registers the fire-point tools when store is non-nil and
// search_wildfires when source is non-nil. obs may be nil.
func NewRegistry(store FirePointStore, source IncidentSource, obs *observability.Observability, log logger.Logger) *Registry {
	r := &Registry{
		tools:  make(map[string]Tool),
		obs:    obs,
		logger: log.WithFields(map[string]interface{}{"component": "toolserver"}),
	}
	if store != nil {
		r.Register(&searchFirePointsTool{store: store})
		r.Register(&countByYearTool{store: store})
	}
	if source != nil {
		r.Register(&searchWildfiresTool{source: source})
	}
	return r
}

// Register adds or replaces a tool. Registration order is preserved.
func (r *Registry) Register(tool Tool) {
	if _, exists := r.tools[tool.Name()]; !exists {
		r.order = append(r.order, tool.Name())
	}
	r.tools[tool.Name()] = tool
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Invoke validates args against the tool schema and executes it. Errors are
// always *apperrors.StandardError.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, apperrors.NewToolNotFoundError(name)
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	if result := tool.Schema().Validate(args); !result.Valid {
		r.record(ctx, name, 0, statusError)
		return nil, apperrors.NewInvalidToolArgsError(name, strings.Join(result.GetErrorMessages(), "; "))
	}

	start := time.Now()
	out, err := r.execute(ctx, tool, args)
	duration := time.Since(start)

	if err != nil {
		r.record(ctx, name, duration, statusError)
		r.logger.Warn("tool failed", map[string]interface{}{
			"tool":     name,
			"duration": duration.Milliseconds(),
			"error":    err,
		})
		if stdErr, ok := apperrors.AsStandardError(err); ok {
			return nil, stdErr
		}
		return nil, apperrors.NewToolFailedError(name, err)
	}

	r.record(ctx, name, duration, statusSuccess)
	r.logger.Debug("tool completed", map[string]interface{}{
		"tool":     name,
		"duration": duration.Milliseconds(),
	})
	return out, nil
}

func (r *Registry) execute(ctx context.Context, tool Tool, args map[string]interface{}) (interface{}, error) {
	if r.obs == nil {
		return tool.Execute(ctx, args)
	}
	ctx, span := r.obs.StartSpan(ctx, "tool."+tool.Name(), attribute.String("tool", tool.Name()))
	defer span.End()

	out, err := tool.Execute(ctx, args)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}

func (r *Registry) record(ctx context.Context, name string, duration time.Duration, status string) {
	if r.obs == nil {
		return
	}
	r.obs.RecordToolInvoked(ctx, name, status)
	if duration > 0 {
		r.obs.RecordToolDuration(ctx, name, duration, status)
	}
}
