// Package core holds the types shared by the HyperBee client packages.
//
// # Errors
//
// Every failed call returns an error that can be inspected with errors.Is
// and errors.As. Non-2xx responses become an [*APIError] whose Kind is
// derived from the status code by [StatusToError]:
//
//	400 BadRequest        404 NotFound             429 RateLimit
//	401 Authentication    409 Conflict             >=500 InternalServer
//	403 PermissionDenied  422 UnprocessableEntity  other GenericStatus
//
//	_, err := client.Chat.Completions.Create(ctx, params)
//	var apiErr *core.APIError
//	switch {
//	case errors.Is(err, core.ErrRateLimited):
//	    // back off
//	case errors.As(err, &apiErr):
//	    log.Printf("status %d: %v", apiErr.StatusCode, apiErr.Body)
//	}
//
// Local misuse wraps [ErrConfiguration]; transport failures wrap
// [ErrConnection] or [ErrTimeout] and are the only errors the client retries.
//
// # Streaming
//
// [Stream] decodes server-sent events into typed values on a channel.
// [DrainChat] and [DrainCompletion] accumulate a stream into one response.
//
// # Telemetry
//
// A [TelemetryHook] sees one start and one end event per call. Events carry
// operational metadata only. [NewSlogTelemetryHook] logs them with log/slog.
package core
