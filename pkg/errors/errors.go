// Package errors defines the error taxonomy shared by the command library:
// sentinel values for errors.Is checks, typed errors carrying the details of
// parse, lookup and configuration failures, and the HTTP status mapping used
// by the search service.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrParse        = errors.New("parse error")
	ErrNotFound     = errors.New("command not found")
	ErrConfig       = errors.New("invalid configuration")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrInternal     = errors.New("internal error")
	ErrTimeout      = errors.New("operation timed out")
)

// ParseError reports a malformed or incomplete entry in a command source.
// Load-time parse errors abort startup.
type ParseError struct {
	Source string
	Entry  string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	loc := e.Source
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Source, e.Line)
	}
	if e.Entry != "" {
		return fmt.Sprintf("parse error: %s: entry %q: %s", loc, e.Entry, e.Reason)
	}
	return fmt.Sprintf("parse error: %s: %s", loc, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// NotFoundError reports a lookup miss for a command name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("command not found: %q", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// IsNotFound reports whether err is, or wraps, a lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
