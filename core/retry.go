package core

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Retry defaults.
const (
	DefaultMaxRetries = 2
	DefaultBaseDelay  = 500 * time.Millisecond
	DefaultMaxDelay   = 8 * time.Second
	DefaultJitter     = 0.25
)

// RetryPolicy determines retry behavior for failed attempts.
type RetryPolicy interface {
	// NextDelay returns the delay before the next attempt and whether to retry.
	// attempt starts at 0 for the first retry after the initial failure.
	NextDelay(attempt int, err error) (delay time.Duration, ok bool)
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retries; 0 disables retrying
	BaseDelay  time.Duration // Delay before the first retry (default: 500ms)
	MaxDelay   time.Duration // Delay cap (default: 8s)
	Jitter     float64       // Jitter factor 0.0-1.0 (default: 0.25)
}

// DefaultRetryPolicy retries transport failures twice with exponential
// backoff and jitter.
func DefaultRetryPolicy() RetryPolicy {
	return NewRetryPolicy(RetryConfig{MaxRetries: DefaultMaxRetries})
}

// NewRetryPolicy creates a retry policy with the given configuration.
// A negative MaxRetries is treated as 0.
func NewRetryPolicy(cfg RetryConfig) RetryPolicy {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	if cfg.Jitter < 0 || cfg.Jitter > 1 {
		cfg.Jitter = DefaultJitter
	}
	return &exponentialBackoff{cfg: cfg}
}

type exponentialBackoff struct {
	cfg RetryConfig
}

func (e *exponentialBackoff) NextDelay(attempt int, err error) (time.Duration, bool) {
	if attempt >= e.cfg.MaxRetries {
		return 0, false
	}
	if !IsRetryable(err) {
		return 0, false
	}

	// baseDelay * 2^attempt, jittered downwards only so the cap holds
	delay := float64(e.cfg.BaseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(e.cfg.MaxDelay) {
		delay = float64(e.cfg.MaxDelay)
	}
	if e.cfg.Jitter > 0 {
		delay -= delay * e.cfg.Jitter * rand.Float64()
	}
	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay), true
}

// IsRetryable reports whether err is a transport-level failure.
// Status errors are never retried: the server already answered.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Caller cancellation wins over any wrapping
	if !errors.Is(err, ErrTimeout) &&
		(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return false
	}
	if errors.Is(err, ErrStatus) || errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrDecode) || errors.Is(err, ErrResponseValidation) {
		return false
	}
	return errors.Is(err, ErrConnection) || errors.Is(err, ErrTimeout)
}
