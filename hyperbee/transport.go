package hyperbee

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/HyperbeeAI/hyperbee-go/core"
)

// request describes one logical call. It may be sent more than once.
type request struct {
	method string
	path   string
	body   any
	query  url.Values

	// stream leaves the body unread; the timeout then only covers the
	// wait for response headers.
	stream bool
	// events asks for a server-sent event stream.
	events bool
}

// send performs req against ep, retrying transport failures. On success
// the response body is either fully buffered or, for stream requests,
// still open and owned by the caller.
func (c *clientCore) send(ctx context.Context, ep *Endpoint, req request) (*http.Response, error) {
	var payload []byte
	if req.body != nil {
		var err error
		if payload, err = json.Marshal(req.body); err != nil {
			return nil, core.ConfigurationError("encoding request body: %v", err)
		}
	}

	requestID := uuid.NewString()
	start := time.Now()
	c.telemetry.OnRequestStart(core.RequestStartEvent{
		RequestID: requestID,
		Method:    req.method,
		Path:      req.path,
		Target:    string(ep.target),
		BaseURL:   ep.BaseURL(),
		Start:     start,
	})

	var (
		resp     *http.Response
		err      error
		attempts int
	)

retryLoop:
	for attempt := 0; ; attempt++ {
		attempts++
		resp, err = c.attempt(ctx, ep, req, payload, requestID, attempt)
		if err == nil {
			break
		}

		delay, shouldRetry := ep.retry.NextDelay(attempt, err)
		if !shouldRetry {
			break
		}
		c.logger.Debug("hyperbee: retrying request",
			slog.String("request_id", requestID),
			slog.String("path", req.path),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			err = ctx.Err()
			break retryLoop
		case <-timer.C:
		}
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	} else {
		var apiErr *core.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
	}
	c.telemetry.OnRequestEnd(core.RequestEndEvent{
		RequestID:  requestID,
		Method:     req.method,
		Path:       req.path,
		Target:     string(ep.target),
		BaseURL:    ep.BaseURL(),
		Start:      start,
		End:        time.Now(),
		StatusCode: status,
		Attempts:   attempts,
		Err:        err,
	})

	return resp, err
}

// attempt sends req once.
func (c *clientCore) attempt(
	ctx context.Context,
	ep *Endpoint,
	req request,
	payload []byte,
	requestID string,
	attempt int,
) (*http.Response, error) {
	attemptCtx, cancel := context.WithCancel(ctx)
	var timedOut atomic.Bool
	var timer *time.Timer
	if ep.timeout > 0 {
		timer = time.AfterFunc(ep.timeout, func() {
			timedOut.Store(true)
			cancel()
		})
	}
	release := func() {
		if timer != nil {
			timer.Stop()
		}
		cancel()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(attemptCtx, req.method, ep.resolve(req.path, req.query).String(), body)
	if err != nil {
		release()
		return nil, core.ConfigurationError("building request: %v", err)
	}

	for key, values := range ep.headers {
		httpReq.Header[key] = append([]string(nil), values...)
	}
	httpReq.Header.Set(headerRetryCount, strconv.Itoa(attempt))
	if req.method == http.MethodPost {
		httpReq.Header.Set(headerIdempotencyKey, "hyperbee-go-retry-"+requestID)
	}
	if req.events {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	// classify maps a transport failure onto the error taxonomy
	classify := func(err error) error {
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case timedOut.Load():
			return core.TimeoutError(err)
		default:
			return core.ConnectionError(err)
		}
	}

	resp, err := ep.httpClient.Do(httpReq)
	if err != nil {
		release()
		return nil, classify(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer release()
		defer resp.Body.Close()
		raw, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, classify(readErr)
		}
		return nil, c.statusError(resp, raw)
	}

	if req.stream {
		if timer != nil && !timer.Stop() && timedOut.Load() {
			resp.Body.Close()
			cancel()
			return nil, core.TimeoutError(context.DeadlineExceeded)
		}
		resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
		return resp, nil
	}

	defer release()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	return resp, nil
}

// statusError builds the typed error for a non-2xx response.
func (c *clientCore) statusError(resp *http.Response, raw []byte) error {
	var body any
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			body = string(raw)
		}
	}
	return core.StatusToError(resp.StatusCode, errorMessage(body), resp, body)
}

// errorMessage picks a human readable message out of an error body.
func errorMessage(body any) string {
	switch b := core.ErrorBody(body).(type) {
	case map[string]any:
		for _, key := range []string{"message", "detail", "msg"} {
			if msg, ok := b[key].(string); ok && msg != "" {
				return msg
			}
		}
	case string:
		return strings.TrimSpace(b)
	}
	return ""
}

// cancelOnClose releases the attempt context when the caller closes
// the streamed body.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
