// Package apperr defines the error taxonomy the HTTP layer maps to status
// codes: validation 400, authorization 403, not found 404, rate limited 429,
// upstream and malformed-generation failures 500.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthorization
	KindNotFound
	KindRateLimited
	KindUpstream
	KindMalformedGeneration
)

// Error carries a user-facing message plus an optional wrapped cause. The
// cause is for logs; clients only ever see Message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Authorization(format string, args ...any) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Upstream(msg string, cause error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: cause}
}

func MalformedGeneration(msg string, cause error) *Error {
	return &Error{Kind: KindMalformedGeneration, Message: msg, Err: cause}
}

// RateLimitError is a rate-limit rejection carrying the observed count,
// the configured maximum and the window, so handlers can report usage.
type RateLimitError struct {
	Message string
	Count   int64
	Limit   int64
	Window  time.Duration
}

func (e *RateLimitError) Error() string { return e.Message }

// StatusCode maps any error to its HTTP status. Unrecognized errors are
// treated as unhandled upstream failures.
func StatusCode(err error) int {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return http.StatusTooManyRequests
	}

	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}

	switch ae.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message safe to show a client. Wrapped causes
// stay in the logs.
func ClientMessage(err error) string {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.Message
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Internal Server Error"
}
