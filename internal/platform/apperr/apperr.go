// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error type for the publishing service.

It bridges low-level storage, upstream (content store, chain RPC, search) and
validation failures to the HTTP layer.

Architecture:

  - AppError: machine-readable Code, client-safe Message, HTTP status and Cause.
  - Upstream errors: BadGateway/GatewayTimeout describe failures of the
    external services the publish pipeline coordinates.
  - Mapping: HTTPStatus is read by the respond package.

Every error that leaves the service layer through HTTP should be an [AppError]
or be wrapped into [Internal] by the responder.
*/
package apperr

import (
	"errors"
	"net/http"
)

// AppError is the canonical error type for the publishing API.
//
// # Security
//
// Cause is for server-side logging only and never serialised, so upstream
// response bodies and SQL text do not leak to clients.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause returns a copy of e carrying cause for logging.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Comic") // "Comic not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError], used for unique violations and for a
// publish attempted while another one holds the comic's lock.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// PayloadTooLarge creates a 413 [AppError] for oversized uploads.
func PayloadTooLarge(msg string) *AppError {
	return &AppError{
		Code:       "PAYLOAD_TOO_LARGE",
		Message:    msg,
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input,
// such as a comic that fails its publish preflight.
func Unprocessable(msg string) *AppError {
	return &AppError{
		Code:       "UNPROCESSABLE",
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// BadGateway creates a 502 [AppError] for a failing upstream service.
func BadGateway(service string, cause error) *AppError {
	return &AppError{
		Code:       "UPSTREAM_ERROR",
		Message:    service + " request failed",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// GatewayTimeout creates a 504 [AppError] for an upstream call that exceeded its deadline.
func GatewayTimeout(service string, cause error) *AppError {
	return &AppError{
		Code:       "UPSTREAM_TIMEOUT",
		Message:    service + " request timed out",
		HTTPStatus: http.StatusGatewayTimeout,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError] for disabled features.
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsNotFound reports whether err carries a NOT_FOUND [AppError].
func IsNotFound(err error) bool {
	ae := As(err)
	return ae != nil && ae.Code == "NOT_FOUND"
}
