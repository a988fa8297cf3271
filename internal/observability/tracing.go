package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts every span the service emits. InitTracing replaces it.
var Tracer trace.Tracer = otel.Tracer("pulse-api")

// Outcome labels used on engine spans and metrics for failures the caller
// can act on. They match the error codes of the models package.
const (
	OutcomeOK        = "ok"
	OutcomeConflict  = "CONFLICT"
	OutcomeTransient = "TRANSIENT"
)

// TracingConfig selects the exporter and sampling for the tracer provider.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	Exporter       string // "otlp", anything else writes to stdout
	OTLPEndpoint   string
	SamplerRatio   float64
}

// InitTracing installs a global tracer provider and W3C propagation. With
// tracing disabled it only names the no-op tracer. The returned function
// flushes and stops the provider.
func InitTracing(cfg TracingConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		Tracer = otel.Tracer(cfg.ServiceName)
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracing exporter: %w", err)
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.SamplerRatio)),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	Tracer = provider.Tracer(cfg.ServiceName)
	return provider.Shutdown, nil
}

func newExporter(cfg TracingConfig) (sdktrace.SpanExporter, error) {
	if cfg.Exporter == "otlp" {
		return otlptracehttp.New(context.Background(),
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
	}
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

// samplerFor keeps every trace at ratio >= 1 and otherwise samples root
// spans by trace id while following the parent's decision.
func samplerFor(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// Operation is one engine call in flight: its span and latency clock.
type Operation struct {
	name  string
	start time.Time
	span  trace.Span
}

// StartOperation opens the span "engine.<name>" carrying attrs and starts
// timing the call.
func StartOperation(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	attrs = append(attrs, attribute.String("engine.operation", name))
	ctx, span := Tracer.Start(ctx, "engine."+name, trace.WithAttributes(attrs...))
	return ctx, &Operation{name: name, start: time.Now(), span: span}
}

// Finish records the result of the call and ends its span. outcome is
// OutcomeOK on success, otherwise the error code of err. Conflicts and
// transient failures are also counted on their own.
func (o *Operation) Finish(outcome string, err error) {
	o.span.SetAttributes(attribute.String("engine.outcome", outcome))
	if err != nil {
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, outcome)
	}

	switch outcome {
	case OutcomeConflict:
		EngineConflicts.WithLabelValues(o.name).Inc()
	case OutcomeTransient:
		EngineTransientFailures.WithLabelValues(o.name).Inc()
	}
	ObserveOperation(o.name, outcome, o.start)
	o.span.End()
}

// TraceRedisOperation starts a client span for one cache command.
func TraceRedisOperation(ctx context.Context, operation string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, "redis."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", operation),
		),
	)
}
