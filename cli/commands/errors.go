package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HyperbeeAI/hyperbee-go/core"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitAPI        = 2
	ExitNetwork    = 3
)

// exitError wraps an error with an exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func (e *exitError) ExitCode() int {
	return e.code
}

func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// exitCodeFor classifies an SDK error.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, core.ErrConfiguration):
		return ExitValidation
	case errors.Is(err, core.ErrConnection),
		errors.Is(err, core.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return ExitNetwork
	default:
		return ExitAPI
	}
}

// fail wraps an SDK error with its exit code.
func fail(err error) error {
	return exitWithCode(exitCodeFor(err), err)
}

func (a *App) reportError(err error) {
	var apiErr *core.APIError
	hasAPIErr := errors.As(err, &apiErr)

	if a.jsonOutput {
		body := map[string]any{
			"type":    errorType(err),
			"message": err.Error(),
		}
		if hasAPIErr {
			body["message"] = apiErr.Message
			body["status"] = apiErr.StatusCode
			if apiErr.RequestID != "" {
				body["request_id"] = apiErr.RequestID
			}
		}
		enc := json.NewEncoder(a.stderr)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{"error": body})
		return
	}

	if hasAPIErr {
		fmt.Fprintf(a.stderr, "Error: %s\n", apiErr.Message)
		if apiErr.StatusCode != 0 {
			fmt.Fprintf(a.stderr, "  Status: %d", apiErr.StatusCode)
			if apiErr.RequestID != "" {
				fmt.Fprintf(a.stderr, ", Request ID: %s", apiErr.RequestID)
			}
			fmt.Fprintln(a.stderr)
		}
		return
	}
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
}

func errorType(err error) string {
	var apiErr *core.APIError
	if errors.As(err, &apiErr) {
		return string(apiErr.Kind)
	}
	var ee *exitError
	if errors.As(err, &ee) {
		switch ee.code {
		case ExitValidation:
			return "validation_error"
		case ExitNetwork:
			return "network_error"
		}
	}
	return "error"
}
