package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/xraph/hookbridge"

// Tracer provides OpenTelemetry tracing for hookbridge.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from the global provider.
func NewTracer() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(tracerName),
	}
}

// StartDispatchSpan starts a span for one outbound webhook POST.
func (t *Tracer) StartDispatchSpan(ctx context.Context, trigger, url string, test bool) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "hookbridge.dispatch",
		trace.WithAttributes(
			attribute.String("hookbridge.trigger", trigger),
			attribute.String("http.url", url),
			attribute.Bool("hookbridge.test", test),
		),
	)
}

// EndDispatchSpan ends a dispatch span with result attributes.
func (t *Tracer) EndDispatchSpan(span trace.Span, statusCode int, latencyMs int64, err string) {
	if t == nil {
		return
	}
	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.Int64("hookbridge.latency_ms", latencyMs),
	)
	if err != "" {
		span.SetAttributes(attribute.String("hookbridge.error", err))
		span.SetStatus(codes.Error, err)
	}
	span.End()
}

// StartActionSpan starts a span for an inbound action.
func (t *Tracer) StartActionSpan(ctx context.Context, action string) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "hookbridge.action",
		trace.WithAttributes(attribute.String("hookbridge.action", action)),
	)
}

// EndActionSpan ends an action span.
func (t *Tracer) EndActionSpan(span trace.Span, success bool, message string) {
	if t == nil {
		return
	}
	span.SetAttributes(attribute.Bool("hookbridge.success", success))
	if !success {
		span.SetStatus(codes.Error, message)
	}
	span.End()
}

// StartWorkflowSpan starts a span for a management API call to the engine.
func (t *Tracer) StartWorkflowSpan(ctx context.Context, method, endpoint string) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "hookbridge.workflow",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("hookbridge.endpoint", endpoint),
		),
	)
}

// EndWorkflowSpan ends a workflow span.
func (t *Tracer) EndWorkflowSpan(span trace.Span, statusCode int, err error) {
	if t == nil {
		return
	}
	span.SetAttributes(attribute.Int("http.status_code", statusCode))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
