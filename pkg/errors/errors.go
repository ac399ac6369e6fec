package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is an *Error sharing the same code, so wrapped or cloned
// errors still match their predefined sentinel.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	var t *Error
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrUnavailable  = New("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, "service unavailable")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrNoSnapshot   = New("NO_SNAPSHOT", http.StatusServiceUnavailable, "no successful sync yet")
	ErrQueueStopped = New("QUEUE_STOPPED", http.StatusServiceUnavailable, "sync queue not running")

	// Sync cycle failures. All of them are shown to users identically.
	ErrUpstreamStatus  = New("UPSTREAM_STATUS", http.StatusBadGateway, "upstream returned a non-success status")
	ErrUpstreamParse   = New("UPSTREAM_PARSE", http.StatusBadGateway, "upstream body is not valid json")
	ErrPayloadTooLarge = New("UPSTREAM_TOO_LARGE", http.StatusBadGateway, "upstream body exceeds the size limit")
	ErrPayloadShape    = New("PAYLOAD_SHAPE", http.StatusBadGateway, "payload has neither assignments nor schedule")

	ErrCanvasUnavailable = New("CANVAS_UNAVAILABLE", http.StatusBadGateway, "canvas api unavailable")
	ErrCanvasConfig      = New("CANVAS_NOT_CONFIGURED", http.StatusInternalServerError, "canvas url and token are required")
)

// UpstreamStatus builds the error reported for a non-2xx upstream response. Status carries the
// upstream status code rather than the status this service would answer with.
func UpstreamStatus(status int, url string) *Error {
	return &Error{
		Code:    ErrUpstreamStatus.Code,
		Status:  status,
		Message: ErrUpstreamStatus.Message,
		Err:     fmt.Errorf("GET %s: %d %s", url, status, http.StatusText(status)),
	}
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Code returns the error code of err or ErrInternal's code for foreign errors.
func Code(err error) string {
	if err == nil {
		return ""
	}
	return FromError(err).Code
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
