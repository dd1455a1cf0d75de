package hyperbee

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/HyperbeeAI/hyperbee-go/core"
	"github.com/HyperbeeAI/hyperbee-go/internal/validate"
)

// operation describes one resource call independently of how its
// response is consumed.
type operation struct {
	method    string
	path      string
	namespace string
	body      any
	query     url.Values
	schema    validate.Schema
}

func (op operation) request(stream bool) request {
	return request{
		method: op.method,
		path:   op.path,
		body:   op.body,
		query:  op.query,
		stream: stream,
	}
}

// RawResponse is a successful response with its body read but not decoded.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	RequestID  string
	Body       []byte

	// Endpoint is the endpoint the request was sent to.
	Endpoint *Endpoint
	// Response is the underlying response; its body is already consumed.
	Response *http.Response
}

// Decode unmarshals the body into v.
func (r *RawResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return core.DecodeError(err)
	}
	return nil
}

// StreamedResponse is a successful response whose body has not been read.
// The caller must Close it or read it through Decode.
type StreamedResponse struct {
	StatusCode int
	Header     http.Header
	RequestID  string
	Body       io.ReadCloser

	Endpoint *Endpoint
	Response *http.Response
}

// Decode reads the whole body into v and closes it.
func (r *StreamedResponse) Decode(v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return core.DecodeError(err)
	}
	return nil
}

// Close releases the body.
func (r *StreamedResponse) Close() error {
	return r.Body.Close()
}

// doRaw sends op and returns the buffered body.
func doRaw(ctx context.Context, c *clientCore, op operation) (*RawResponse, error) {
	ep := c.SetBaseURLForRequest(op.namespace)
	resp, err := c.send(ctx, ep, op.request(false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.ConnectionError(err)
	}
	return &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		RequestID:  resp.Header.Get("x-request-id"),
		Body:       raw,
		Endpoint:   ep,
		Response:   resp,
	}, nil
}

// doDecoded sends op, validates the body when strict, and decodes it into T.
func doDecoded[T any](ctx context.Context, c *clientCore, op operation) (*T, error) {
	raw, err := doRaw(ctx, c, op)
	if err != nil {
		return nil, err
	}

	if c.cfg.StrictResponseValidation && op.schema != "" {
		problems, err := validate.Validate(op.schema, raw.Body)
		if err != nil {
			return nil, core.DecodeError(err)
		}
		if len(problems) > 0 {
			var body any
			_ = json.Unmarshal(raw.Body, &body)
			return nil, core.ResponseValidationError(raw.Response, body, problems)
		}
	}

	out := new(T)
	if err := raw.Decode(out); err != nil {
		return nil, err
	}
	return out, nil
}

// doStreaming sends op and hands back the unread body.
func doStreaming(ctx context.Context, c *clientCore, op operation) (*StreamedResponse, error) {
	ep := c.SetBaseURLForRequest(op.namespace)
	resp, err := c.send(ctx, ep, op.request(true))
	if err != nil {
		return nil, err
	}
	return &StreamedResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		RequestID:  resp.Header.Get("x-request-id"),
		Body:       resp.Body,
		Endpoint:   ep,
		Response:   resp,
	}, nil
}

// doSSE sends op and decodes the body as server-sent events of T.
func doSSE[T any](ctx context.Context, c *clientCore, op operation) (*core.Stream[T], error) {
	ep := c.SetBaseURLForRequest(op.namespace)
	req := op.request(true)
	req.events = true
	resp, err := c.send(ctx, ep, req)
	if err != nil {
		return nil, err
	}
	return core.NewStream[T](ctx, resp), nil
}
