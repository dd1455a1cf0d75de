package core

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an APIError.
type ErrorKind string

const (
	KindBadRequest          ErrorKind = "bad_request"
	KindAuthentication      ErrorKind = "authentication"
	KindPermissionDenied    ErrorKind = "permission_denied"
	KindNotFound            ErrorKind = "not_found"
	KindConflict            ErrorKind = "conflict"
	KindUnprocessableEntity ErrorKind = "unprocessable_entity"
	KindRateLimit           ErrorKind = "rate_limit"
	KindInternalServer      ErrorKind = "internal_server"
	KindStatus              ErrorKind = "status"
	KindResponseValidation  ErrorKind = "response_validation"
)

// Sentinel errors for classification.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrAuthentication      = errors.New("authentication failed")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrUnprocessableEntity = errors.New("unprocessable entity")
	ErrRateLimited         = errors.New("rate limited")
	ErrInternalServer      = errors.New("internal server error")

	// ErrStatus matches every error derived from a non-success HTTP status.
	ErrStatus = errors.New("api status error")

	ErrConfiguration      = errors.New("configuration error")
	ErrConnection         = errors.New("connection error")
	ErrTimeout            = errors.New("request timed out")
	ErrDecode             = errors.New("decode error")
	ErrResponseValidation = errors.New("response validation failed")
)

// APIError is returned for every response the API answered with a
// non-success status, and for responses that fail strict validation.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	RequestID  string
	Message    string

	// Body is the decoded error payload. When the response body is a JSON
	// object with an "error" member, Body holds that member only.
	Body any

	// Response is the original HTTP response. Its body has already been
	// consumed.
	Response *http.Response

	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("hyperbee: %s (status=%d, kind=%s, request_id=%s)",
			e.Message, e.StatusCode, e.Kind, e.RequestID)
	}
	return fmt.Sprintf("hyperbee: %s (status=%d, kind=%s)", e.Message, e.StatusCode, e.Kind)
}

// Unwrap returns the kind sentinel.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is reports status-derived errors as ErrStatus in addition to their kind.
func (e *APIError) Is(target error) bool {
	return target == ErrStatus && e.Kind != KindResponseValidation
}

// ErrorBody returns the payload to attach to a status error: the nested
// "error" member when body is a JSON object carrying one, body otherwise.
func ErrorBody(body any) any {
	if m, ok := body.(map[string]any); ok {
		if nested, ok := m["error"]; ok {
			return nested
		}
	}
	return body
}

// KindForStatus maps an HTTP status code to its error kind.
// Every code that is not listed explicitly and is below 500 maps to KindStatus.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusBadRequest:
		return KindBadRequest
	case status == http.StatusUnauthorized:
		return KindAuthentication
	case status == http.StatusForbidden:
		return KindPermissionDenied
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusUnprocessableEntity:
		return KindUnprocessableEntity
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status >= 500:
		return KindInternalServer
	default:
		return KindStatus
	}
}

// sentinelFor returns the sentinel a kind unwraps to.
func sentinelFor(kind ErrorKind) error {
	switch kind {
	case KindBadRequest:
		return ErrBadRequest
	case KindAuthentication:
		return ErrAuthentication
	case KindPermissionDenied:
		return ErrPermissionDenied
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindUnprocessableEntity:
		return ErrUnprocessableEntity
	case KindRateLimit:
		return ErrRateLimited
	case KindInternalServer:
		return ErrInternalServer
	case KindResponseValidation:
		return ErrResponseValidation
	default:
		return ErrStatus
	}
}

// StatusToError converts a failed response into a typed APIError.
// It has no side effects; resp may be nil in tests.
func StatusToError(status int, message string, resp *http.Response, body any) *APIError {
	kind := KindForStatus(status)
	if message == "" {
		message = http.StatusText(status)
	}
	err := &APIError{
		Kind:       kind,
		StatusCode: status,
		Message:    message,
		Body:       ErrorBody(body),
		Response:   resp,
		Err:        sentinelFor(kind),
	}
	if resp != nil {
		err.RequestID = resp.Header.Get("x-request-id")
	}
	return err
}

// ResponseValidationError reports a 2xx response whose body does not match
// the expected schema.
func ResponseValidationError(resp *http.Response, body any, problems []string) *APIError {
	err := &APIError{
		Kind:     KindResponseValidation,
		Message:  fmt.Sprintf("response does not match schema: %v", problems),
		Body:     body,
		Response: resp,
		Err:      ErrResponseValidation,
	}
	if resp != nil {
		err.StatusCode = resp.StatusCode
		err.RequestID = resp.Header.Get("x-request-id")
	}
	return err
}

// StreamError converts an error event received mid-stream. The response
// already had a 2xx status, so the error carries the stream's response
// with KindStatus.
func StreamError(resp *http.Response, body any) *APIError {
	data := ErrorBody(body)
	message := "error event in stream"
	if m, ok := data.(map[string]any); ok {
		if msg, ok := m["message"].(string); ok && msg != "" {
			message = msg
		}
	}
	err := &APIError{
		Kind:     KindStatus,
		Message:  message,
		Body:     data,
		Response: resp,
		Err:      ErrStatus,
	}
	if resp != nil {
		err.StatusCode = resp.StatusCode
		err.RequestID = resp.Header.Get("x-request-id")
	}
	return err
}

// ConfigurationError reports local misuse of the client.
// It is never retried.
func ConfigurationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// ConnectionError wraps a transport failure.
func ConnectionError(err error) error {
	return fmt.Errorf("%w: %w", ErrConnection, err)
}

// TimeoutError wraps a request that exceeded its configured timeout.
func TimeoutError(err error) error {
	return fmt.Errorf("%w: %w", ErrTimeout, err)
}

// DecodeError wraps a body that could not be decoded.
func DecodeError(err error) error {
	return fmt.Errorf("%w: %w", ErrDecode, err)
}

// Validation errors with actionable guidance.
var (
	ErrModelRequired     = errors.New("model required: set Model on the request params, e.g. \"hive\"")
	ErrNoMessages        = errors.New("no messages: add at least one message to the request params")
	ErrNamespaceRequired = errors.New("namespace required: pipeline requests must name a document namespace")
	ErrPromptRequired    = errors.New("prompt required: set Prompt on the completion params")
	ErrQueryRequired     = errors.New("query required: set Query on the pipeline params")
)
