// Package domainerrors defines the coded error type shared by services and
// the HTTP layer. Services return *Error (optionally wrapping a cause);
// httputil translates the code into a status and the client-facing envelope.
//
// For infrastructure facts (not found, unavailable), stores return
// pkg/platform/sentinel errors and services wrap them into an *Error here.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error class. Codes are part of the API contract.
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeBadRequest   Code = "BAD_REQUEST"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeTooLarge     Code = "PAYLOAD_TOO_LARGE"
	CodeUnavailable  Code = "UPSTREAM_UNAVAILABLE"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// Detail is one path-addressed violation inside a request body.
type Detail struct {
	Code    string `json:"code"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is a coded domain error. Message is safe to show to clients except
// for CodeInternal, which httputil reduces to a generic message.
type Error struct {
	Code      Code
	Message   string
	Details   []Detail
	Retryable bool
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is match on the code, so callers can compare against a
// template error without caring about message or cause.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// New constructs a coded error with no cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Retryable: retryableByDefault(code)}
}

// Wrap attaches a cause for server-side logging. The cause never reaches the
// client.
func Wrap(code Code, message string, cause error) *Error {
	e := New(code, message)
	e.cause = cause
	return e
}

// WithDetails returns a copy carrying path-addressed violations.
func (e *Error) WithDetails(details ...Detail) *Error {
	clone := *e
	clone.Details = append(append([]Detail(nil), e.Details...), details...)
	return &clone
}

// WithRetryable overrides the default retryable flag for the code.
func (e *Error) WithRetryable(retryable bool) *Error {
	clone := *e
	clone.Retryable = retryable
	return &clone
}

func retryableByDefault(code Code) bool {
	switch code {
	case CodeUnavailable, CodeConflict:
		return true
	default:
		return false
	}
}

// HTTPStatus maps a code to its response status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest, CodeTooLarge:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf extracts the domain code from any error, defaulting to internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
