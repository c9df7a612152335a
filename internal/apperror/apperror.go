// Package apperror defines the caller-visible failure kinds shared by services and the HTTP layer.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies a failure. Each kind maps to exactly one HTTP status.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindInvalidIdentifier  Kind = "invalid_identifier"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindUnauthenticated    Kind = "unauthenticated"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindUpstream           Kind = "upstream"
	KindUnavailable        Kind = "unavailable"
	KindInternal           Kind = "internal"
)

var statusByKind = map[Kind]int{
	KindValidation:         http.StatusBadRequest,
	KindInvalidIdentifier:  http.StatusBadRequest,
	KindInvalidCredentials: http.StatusBadRequest,
	KindUnauthenticated:    http.StatusUnauthorized,
	KindForbidden:          http.StatusForbidden,
	KindNotFound:           http.StatusNotFound,
	KindConflict:           http.StatusConflict,
	KindUpstream:           http.StatusInternalServerError,
	KindUnavailable:        http.StatusServiceUnavailable,
	KindInternal:           http.StatusInternalServerError,
}

var codeByKind = map[Kind]string{
	KindValidation:         "VALIDATION_ERROR",
	KindInvalidIdentifier:  "INVALID_ID",
	KindInvalidCredentials: "INVALID_CREDENTIALS",
	KindUnauthenticated:    "UNAUTHENTICATED",
	KindForbidden:          "FORBIDDEN",
	KindNotFound:           "NOT_FOUND",
	KindConflict:           "CONFLICT",
	KindUpstream:           "UPSTREAM_ERROR",
	KindUnavailable:        "SERVICE_UNAVAILABLE",
	KindInternal:           "INTERNAL_ERROR",
}

// Error is a failure whose Message is safe to show to API callers.
// Err holds the underlying cause and is never serialized.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Detail  string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// ErrorCode returns the machine-readable code, preferring an explicit Code override.
func (e *Error) ErrorCode() string {
	if e.Code != "" {
		return e.Code
	}
	if c, ok := codeByKind[e.Kind]; ok {
		return c
	}
	return codeByKind[KindInternal]
}

// WithCode returns a copy of e carrying a more specific machine-readable code.
func (e *Error) WithCode(code string) *Error {
	cp := *e
	cp.Code = code
	return &cp
}

// As extracts an *Error from err. Unknown errors become KindInternal with a generic message.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// KindOf reports the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func InvalidIdentifier(message string) *Error {
	return &Error{Kind: KindInvalidIdentifier, Message: message}
}

func InvalidCredentials(message string) *Error {
	return &Error{Kind: KindInvalidCredentials, Message: message}
}

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Upstream wraps a failure of an external collaborator. detail is shown to the caller.
func Upstream(message, detail string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Detail: detail, Err: err}
}

func Unavailable(message string) *Error {
	return &Error{Kind: KindUnavailable, Message: message}
}

// Internal hides err behind a generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}
