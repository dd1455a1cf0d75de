package otel

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/HyperbeeAI/hyperbee-go/core"
	"github.com/HyperbeeAI/hyperbee-go/hyperbee"
)

func newRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, tp
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestHookSuccess(t *testing.T) {
	sr, tp := newRecorder(t)
	hook := NewHook(tp)

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	hook.OnRequestStart(core.RequestStartEvent{
		RequestID: "r1",
		Method:    "POST",
		Path:      "chat/completions",
		Target:    "pipeline",
		BaseURL:   "https://api-rag.hyperbee.ai/v1/",
		Start:     start,
	})
	assert.Equal(t, 1, hook.pending())

	hook.OnRequestEnd(core.RequestEndEvent{
		RequestID:  "r1",
		Method:     "POST",
		Path:       "chat/completions",
		Start:      start,
		End:        start.Add(250 * time.Millisecond),
		StatusCode: 200,
		Attempts:   2,
	})
	assert.Equal(t, 0, hook.pending())

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "hyperbee POST chat/completions", span.Name())
	assert.Equal(t, trace.SpanKindClient, span.SpanKind())
	assert.Equal(t, codes.Ok, span.Status().Code)
	assert.Equal(t, 250*time.Millisecond, span.EndTime().Sub(span.StartTime()))
	assert.Equal(t, TracerName, span.InstrumentationScope().Name)

	got := attrs(span)
	assert.Equal(t, "r1", got[AttrRequestID].AsString())
	assert.Equal(t, "pipeline", got[AttrTarget].AsString())
	assert.Equal(t, int64(200), got[AttrStatus].AsInt64())
	assert.Equal(t, int64(2), got[AttrAttempts].AsInt64())
}

func TestHookFailure(t *testing.T) {
	sr, tp := newRecorder(t)
	hook := NewHook(tp)

	now := time.Now()
	hook.OnRequestStart(core.RequestStartEvent{RequestID: "r2", Method: "GET", Path: "models", Start: now})
	hook.OnRequestEnd(core.RequestEndEvent{
		RequestID: "r2",
		Start:     now,
		End:       now,
		Attempts:  3,
		Err:       errors.New("dial tcp: refused"),
	})

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "dial tcp: refused", spans[0].Status().Description)
	_, hasStatus := attrs(spans[0])[AttrStatus]
	assert.False(t, hasStatus)
	require.NotEmpty(t, spans[0].Events())
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestHookIgnoresUnknownEnd(t *testing.T) {
	sr, tp := newRecorder(t)
	hook := NewHook(tp)

	hook.OnRequestEnd(core.RequestEndEvent{RequestID: "never-started"})
	assert.Empty(t, sr.Ended())
}

func TestHookWithClient(t *testing.T) {
	for _, key := range []string{hyperbee.EnvAPIKey, hyperbee.EnvOrgID, hyperbee.EnvBaseURL} {
		t.Setenv(key, "")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"object":"list","data":[{"id":"hive","object":"model"}]}`)
	}))
	defer srv.Close()

	sr, tp := newRecorder(t)
	client, err := hyperbee.New(
		hyperbee.WithAPIKey("k1"),
		hyperbee.WithBaseURL(srv.URL+"/v1"),
		hyperbee.WithChatBaseURL(srv.URL+"/v1"),
		hyperbee.WithTelemetry(NewHook(tp)),
	)
	require.NoError(t, err)

	_, err = client.Models.List(context.Background())
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	got := attrs(spans[0])
	assert.Equal(t, "chat", got[AttrTarget].AsString())
	assert.Equal(t, "models", got[AttrPath].AsString())
	assert.Equal(t, int64(1), got[AttrAttempts].AsInt64())
}
