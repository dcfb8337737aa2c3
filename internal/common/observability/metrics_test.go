package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"fireaid/internal/common/logger"
)

func TestObservability_StartSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs := New("fireaid-test", logger.NewTestLogger(t), sdktrace.WithSpanProcessor(recorder))
	defer obs.Shutdown()

	_, span := obs.StartSpan(context.Background(), "tool.invoke", attribute.String("tool", "count_by_year"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "tool.invoke", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("tool", "count_by_year"))
}

func TestObservability_RecordOnZeroValue(t *testing.T) {
	obs := &Observability{}

	assert.NotPanics(t, func() {
		obs.RecordToolInvoked(context.Background(), "search_fire_points", "success")
		obs.RecordToolDuration(context.Background(), "search_fire_points", 12*time.Millisecond, "success")
		_, span := obs.StartSpan(context.Background(), "noop")
		span.End()
		obs.Shutdown()
	})
}
