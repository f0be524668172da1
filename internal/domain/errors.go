package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyInput is returned by providers when asked to translate a blank string.
	ErrEmptyInput = errors.New("empty input text")
	// ErrNoTextFound means analysis produced zero usable segments.
	ErrNoTextFound = errors.New("no text found in image")
	// ErrCancelled marks a flow that was cancelled before completing.
	ErrCancelled = errors.New("flow cancelled")
)

// InvalidConfigError covers missing credentials, rejected keys and other
// setup problems surfaced at the point of first use.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid provider configuration: %s", e.Reason)
}

// ConnectionError wraps transport-level failures (refused, timeout, DNS).
type ConnectionError struct {
	Reason string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed: %s", e.Reason)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TranslationError covers backend-side failures that are neither
// configuration nor transport problems.
type TranslationError struct {
	Reason string
	Err    error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translation failed: %s", e.Reason)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// RateLimitError reports a 429 with the backend's suggested wait, if any.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// FlowError scopes a lower-level error to the phase it happened in. The
// presentation layer only ever sees FlowError (or ErrCancelled); provider
// error types stay internal but their message rides along as the cause.
type FlowError struct {
	Phase FlowPhase
	Err   error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Phase, e.Err)
}

func (e *FlowError) Unwrap() error { return e.Err }

// Recovery returns a short user-facing suggestion for the failure, or "".
func Recovery(err error) string {
	var cfg *InvalidConfigError
	var conn *ConnectionError
	var rate *RateLimitError
	switch {
	case errors.As(err, &cfg):
		return "configure an API key for this engine in settings"
	case errors.As(err, &conn):
		return "check the endpoint URL and that the server is running"
	case errors.As(err, &rate):
		return "wait a moment and try again"
	case errors.Is(err, ErrNoTextFound):
		return "select a region that contains readable text"
	}
	return ""
}
