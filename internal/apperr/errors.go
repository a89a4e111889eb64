// Package apperr holds the structured domain error shared by every module.
package apperr

import (
	"fmt"
	"net/http"
)

// DomainError is a structured, self-describing domain error used across modules.
// It carries HTTP/RFC7807-friendly metadata so a shared formatter can convert any domain
// error into a Problem response without enumerating error types.
type DomainError struct {
	// Code is a stable, machine-readable business code (e.g., "ErrInvalidCode").
	Code string

	// HTTPStatus is the HTTP status suggested for this error (e.g., 400, 401, 404, 409, 500).
	HTTPStatus int

	// Title is a short human summary; if empty the formatter will default to StatusText(HTTPStatus).
	Title string

	// Message is a human-readable message primarily for logs. When Detail is empty,
	// this is used as the public detail.
	Message string

	// Detail is a user-friendly, safe explanation for clients. If empty, Message is used.
	Detail string

	// TypeURI is an RFC7807 type URI for documentation, e.g., "urn:problem:auth/err-invalid-code".
	TypeURI string

	// Context is an optional extension payload for clients (e.g., validation fields map).
	Context any

	cause error
}

// Error satisfies the standard Go error interface.
// It includes the underlying cause's error message if it exists.
func (e *DomainError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Message
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is compares by Code rather than pointer identity, so copies created via
// WithCause still match their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the DomainError wrapping the provided cause.
func (e *DomainError) WithCause(err error) *DomainError {
	if err == nil {
		return e
	}
	cp := *e
	cp.cause = err
	return &cp
}

// WithDetail sets a public-friendly detail message for clients.
func (e *DomainError) WithDetail(detail string) *DomainError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithContext attaches an extension payload for clients (e.g., validation fields).
func (e *DomainError) WithContext(ctx any) *DomainError {
	cp := *e
	cp.Context = ctx
	return &cp
}

// Status returns HTTPStatus, defaulting to 500.
func (e *DomainError) Status() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

// --- RFC7807 mapping accessors (satisfy httpx.DomainProblem) ---

func (e *DomainError) ProblemCode() string    { return e.Code }
func (e *DomainError) ProblemStatus() int     { return e.Status() }
func (e *DomainError) ProblemTitle() string   { return e.Title }
func (e *DomainError) ProblemTypeURI() string { return e.TypeURI }
func (e *DomainError) ProblemContext() any    { return e.Context }
func (e *DomainError) ProblemDetail() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

// New builds a module sentinel. The title defaults to the status text.
func New(code string, status int, message string, typeURI string) *DomainError {
	return &DomainError{
		Code:       code,
		HTTPStatus: status,
		Title:      http.StatusText(status),
		Message:    message,
		TypeURI:    typeURI,
	}
}

// Base taxonomy. Module sentinels reuse these statuses with more specific codes.
var (
	ErrValidation      = New("ErrValidation", http.StatusBadRequest, "validation failed", "urn:problem:validation-error")
	ErrUnauthorized    = New("ErrUnauthorized", http.StatusUnauthorized, "authentication required", "urn:problem:err-unauthorized")
	ErrNotFound        = New("ErrNotFound", http.StatusNotFound, "resource not found", "urn:problem:err-not-found")
	ErrConflict        = New("ErrConflict", http.StatusConflict, "resource already exists", "urn:problem:err-conflict")
	ErrTooManyRequests = New("ErrTooManyRequests", http.StatusTooManyRequests, "too many requests", "urn:problem:err-too-many-requests")
	ErrInternal        = New("ErrInternal", http.StatusInternalServerError, "internal server error", "urn:problem:err-internal")
)
