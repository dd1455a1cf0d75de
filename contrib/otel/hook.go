// Package otel records HyperBee requests as OpenTelemetry spans.
//
//	hook := otel.NewHook(tracerProvider)
//	client, err := hyperbee.New(hyperbee.WithTelemetry(hook))
//
// One span covers one logical call including its retries. Spans carry the
// method, path, target backend, status and attempt count; never api keys,
// headers or bodies.
package otel

import (
	"context"
	"sync"

	gootel "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/HyperbeeAI/hyperbee-go/core"
	"github.com/HyperbeeAI/hyperbee-go/hyperbee"
)

// TracerName is the instrumentation scope of the spans.
const TracerName = "github.com/HyperbeeAI/hyperbee-go"

// Span attribute keys.
const (
	AttrRequestID = attribute.Key("hyperbee.request_id")
	AttrTarget    = attribute.Key("hyperbee.target")
	AttrBaseURL   = attribute.Key("hyperbee.base_url")
	AttrPath      = attribute.Key("hyperbee.path")
	AttrAttempts  = attribute.Key("hyperbee.attempts")
	AttrMethod    = attribute.Key("http.request.method")
	AttrStatus    = attribute.Key("http.response.status_code")
)

// Hook is a core.TelemetryHook that opens a span on request start and
// ends it on request end.
type Hook struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[string]trace.Span
}

var _ core.TelemetryHook = (*Hook)(nil)

// NewHook returns a hook using provider. A nil provider uses the global
// tracer provider.
func NewHook(provider trace.TracerProvider) *Hook {
	if provider == nil {
		provider = gootel.GetTracerProvider()
	}
	return &Hook{
		tracer: provider.Tracer(TracerName, trace.WithInstrumentationVersion(hyperbee.Version)),
		spans:  make(map[string]trace.Span),
	}
}

// OnRequestStart starts the span for e.RequestID.
func (h *Hook) OnRequestStart(e core.RequestStartEvent) {
	_, span := h.tracer.Start(context.Background(), spanName(e.Method, e.Path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithTimestamp(e.Start),
		trace.WithAttributes(
			AttrRequestID.String(e.RequestID),
			AttrMethod.String(e.Method),
			AttrPath.String(e.Path),
			AttrTarget.String(e.Target),
			AttrBaseURL.String(e.BaseURL),
		),
	)

	h.mu.Lock()
	h.spans[e.RequestID] = span
	h.mu.Unlock()
}

// OnRequestEnd ends the span for e.RequestID. An end without a matching
// start is ignored.
func (h *Hook) OnRequestEnd(e core.RequestEndEvent) {
	h.mu.Lock()
	span, ok := h.spans[e.RequestID]
	delete(h.spans, e.RequestID)
	h.mu.Unlock()
	if !ok {
		return
	}

	span.SetAttributes(AttrAttempts.Int(e.Attempts))
	if e.StatusCode != 0 {
		span.SetAttributes(AttrStatus.Int(e.StatusCode))
	}
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(e.End))
}

// pending reports the number of spans not yet ended.
func (h *Hook) pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.spans)
}

func spanName(method, path string) string {
	return "hyperbee " + method + " " + path
}
