package observability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestCorrelationID_RoundTrip(t *testing.T) {
	id := GenerateCorrelationID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	ctx := WithCorrelationID(context.Background(), id)
	assert.Equal(t, id, ExtractCorrelationID(ctx))
	assert.Empty(t, ExtractCorrelationID(context.Background()))
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "pulse-test"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	ctx, op := StartOperation(context.Background(), "disabled_test")
	assert.NotNil(t, ctx)
	op.Finish(OutcomeTransient, assert.AnError)
}

// recordSpans points Tracer at an in-memory recorder for the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := Tracer
	Tracer = provider.Tracer("observability-test")
	t.Cleanup(func() {
		Tracer = previous
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) string {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value.Emit()
		}
	}
	return ""
}

func TestOperation_Success(t *testing.T) {
	recorder := recordSpans(t)

	_, op := StartOperation(context.Background(), "op_success_test", attribute.Int("post.id", 9))
	op.Finish(OutcomeOK, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "engine.op_success_test", spans[0].Name())
	assert.Equal(t, "op_success_test", spanAttr(spans[0], "engine.operation"))
	assert.Equal(t, "ok", spanAttr(spans[0], "engine.outcome"))
	assert.Equal(t, "9", spanAttr(spans[0], "post.id"))
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestOperation_FailureOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		outcome   string
		conflicts float64
		transient float64
	}{
		{name: "op_conflict_test", outcome: OutcomeConflict, conflicts: 1},
		{name: "op_transient_test", outcome: OutcomeTransient, transient: 1},
		{name: "op_internal_test", outcome: "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.outcome, func(t *testing.T) {
			recorder := recordSpans(t)
			conflicts := testutil.ToFloat64(EngineConflicts.WithLabelValues(tt.name))
			transient := testutil.ToFloat64(EngineTransientFailures.WithLabelValues(tt.name))
			series := testutil.CollectAndCount(EngineOperationLatency)

			_, op := StartOperation(context.Background(), tt.name)
			op.Finish(tt.outcome, assert.AnError)

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.outcome, spanAttr(spans[0], "engine.outcome"))
			assert.Equal(t, codes.Error, spans[0].Status().Code)
			assert.Len(t, spans[0].Events(), 1)

			assert.Equal(t, conflicts+tt.conflicts, testutil.ToFloat64(EngineConflicts.WithLabelValues(tt.name)))
			assert.Equal(t, transient+tt.transient, testutil.ToFloat64(EngineTransientFailures.WithLabelValues(tt.name)))
			assert.Equal(t, series+1, testutil.CollectAndCount(EngineOperationLatency))
		})
	}
}

func TestObserveOperation(t *testing.T) {
	before := testutil.CollectAndCount(EngineOperationLatency)
	ObserveOperation("observability_test", "ok", time.Now())
	assert.Equal(t, before+1, testutil.CollectAndCount(EngineOperationLatency))
}
