// Package retry implements the Error Handler: a closed error-classification
// taxonomy plus a delay-schedule/backoff retry harness with per-class
// recovery hooks. The taxonomy mirrors the MCP recovery classifier in
// pkg/mcp/recovery.go, generalized from its two-value RecoveryAction enum
// to the nine-class taxonomy spec'd for this system, and its delay/backoff
// tail is driven by github.com/cenkalti/backoff/v4 instead of the fixed
// 250-750ms jitter window recovery.go uses.
package retry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"strings"
)

// Class is a member of the closed error-classification taxonomy (spec §4.4).
type Class string

const (
	ClassRateLimit    Class = "rate_limit"
	ClassTokenLimit   Class = "token_limit"
	ClassAuth         Class = "auth"
	ClassNetwork      Class = "network"
	ClassTimeout      Class = "timeout"
	ClassGeneration   Class = "generation"
	ClassValidation   Class = "validation"
	ClassToolError    Class = "tool_error"
	ClassUnrecoverable Class = "unrecoverable"
)

// Recoverable reports whether the Error Handler should ever retry an error
// of this class. auth and unrecoverable never are.
func (c Class) Recoverable() bool {
	return c != ClassAuth && c != ClassUnrecoverable
}

// StatusError is implemented by errors that carry an HTTP status code, such
// as an LLM provider client's response error.
type StatusError interface {
	error
	StatusCode() int
}

// RetryAfterError is implemented by errors that carry a server-supplied
// retry-after duration (rate limiting).
type RetryAfterError interface {
	error
	RetryAfterSeconds() (int, bool)
}

// ValidationFailure marks an explicit validation failure raised by calling
// code (as opposed to one inferred from a parse error).
type ValidationFailure struct{ Err error }

func (v *ValidationFailure) Error() string { return v.Err.Error() }
func (v *ValidationFailure) Unwrap() error { return v.Err }

// ToolFailure marks a failure from an agentic tool invocation.
type ToolFailure struct{ Err error }

func (t *ToolFailure) Error() string { return t.Err.Error() }
func (t *ToolFailure) Unwrap() error { return t.Err }

var tokenLimitPhrases = []string{"context length", "token limit", "too long"}
var connectionPhrases = []string{"connection refused", "connection reset", "broken pipe", "connection closed", "no such host"}

// Classify maps err onto the closed taxonomy in spec §4.4.
func Classify(err error) Class {
	if err == nil {
		return ClassUnrecoverable
	}

	var se StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode() == 429:
			return ClassRateLimit
		case se.StatusCode() == 400 && containsAny(strings.ToLower(err.Error()), tokenLimitPhrases):
			return ClassTokenLimit
		case se.StatusCode() == 401 || se.StatusCode() == 403:
			return ClassAuth
		case se.StatusCode() >= 500:
			return ClassNetwork
		}
	}

	var validationErr *ValidationFailure
	if errors.As(err, &validationErr) {
		return ClassValidation
	}
	var toolErr *ToolFailure
	if errors.As(err, &toolErr) {
		return ClassToolError
	}

	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(strings.ToLower(err.Error()), "timeout") ||
		strings.Contains(strings.ToLower(err.Error()), "timed out") {
		return ClassTimeout
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) ||
		containsAny(strings.ToLower(err.Error()), connectionPhrases) {
		return ClassNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassNetwork
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		strings.Contains(strings.ToLower(err.Error()), "invalid character") ||
		strings.Contains(strings.ToLower(err.Error()), "unexpected end of json") {
		return ClassGeneration
	}

	return ClassUnrecoverable
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
