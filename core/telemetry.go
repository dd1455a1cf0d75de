package core

import (
	"context"
	"log/slog"
	"time"
)

// TelemetryHook receives notifications about request lifecycle events.
//
// Events never include api keys, headers, prompts or response bodies.
// New fields must keep that property.
type TelemetryHook interface {
	// OnRequestStart is called once per logical call, before the first attempt.
	OnRequestStart(e RequestStartEvent)

	// OnRequestEnd is called once per logical call, after the last attempt.
	OnRequestEnd(e RequestEndEvent)
}

// RequestStartEvent contains metadata about a starting request.
type RequestStartEvent struct {
	RequestID string    // Client-generated id, also sent as Idempotency-Key on POST
	Method    string    // HTTP method
	Path      string    // Path relative to the base URL, e.g. "chat/completions"
	Target    string    // "chat", "pipeline" or "custom"
	BaseURL   string    // Base URL the request is sent to
	Start     time.Time // When the request started
}

// RequestEndEvent contains metadata about a completed request.
type RequestEndEvent struct {
	RequestID  string
	Method     string
	Path       string
	Target     string
	BaseURL    string
	Start      time.Time
	End        time.Time
	StatusCode int   // 0 when no response was received
	Attempts   int   // Number of HTTP attempts made
	Err        error // Error if the request failed, nil on success
}

// Duration returns the elapsed time for the request.
func (e RequestEndEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// NoopTelemetryHook is a no-op implementation of TelemetryHook.
// It is the default when no telemetry is configured.
type NoopTelemetryHook struct{}

// OnRequestStart does nothing.
func (NoopTelemetryHook) OnRequestStart(RequestStartEvent) {}

// OnRequestEnd does nothing.
func (NoopTelemetryHook) OnRequestEnd(RequestEndEvent) {}

var _ TelemetryHook = NoopTelemetryHook{}

// SlogTelemetryHook logs request lifecycle events to a slog.Logger.
// Starts are logged at debug level, successful ends at info and failures
// at warn.
type SlogTelemetryHook struct {
	logger *slog.Logger
}

// NewSlogTelemetryHook returns a hook logging to logger. A nil logger
// uses slog.Default().
func NewSlogTelemetryHook(logger *slog.Logger) *SlogTelemetryHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogTelemetryHook{logger: logger}
}

// OnRequestStart logs the request start.
func (h *SlogTelemetryHook) OnRequestStart(e RequestStartEvent) {
	h.logger.LogAttrs(context.Background(), slog.LevelDebug, "hyperbee request start",
		slog.String("request_id", e.RequestID),
		slog.String("method", e.Method),
		slog.String("path", e.Path),
		slog.String("target", e.Target),
		slog.String("base_url", e.BaseURL),
	)
}

// OnRequestEnd logs the request outcome.
func (h *SlogTelemetryHook) OnRequestEnd(e RequestEndEvent) {
	attrs := []slog.Attr{
		slog.String("request_id", e.RequestID),
		slog.String("method", e.Method),
		slog.String("path", e.Path),
		slog.String("target", e.Target),
		slog.Int("status", e.StatusCode),
		slog.Int("attempts", e.Attempts),
		slog.Duration("duration", e.Duration()),
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("error", e.Err.Error()))
		h.logger.LogAttrs(context.Background(), slog.LevelWarn, "hyperbee request failed", attrs...)
		return
	}
	h.logger.LogAttrs(context.Background(), slog.LevelInfo, "hyperbee request done", attrs...)
}

var _ TelemetryHook = (*SlogTelemetryHook)(nil)
