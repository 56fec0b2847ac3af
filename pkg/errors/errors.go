// Package errors defines the domain error taxonomy for the farmer registry.
// Services raise these close to the violated rule; the HTTP layer performs
// the only translation to transport status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for boundary translation.
type Code string

const (
	// CodeInvalidDNI marks a malformed identifier at any boundary.
	CodeInvalidDNI Code = "invalid_dni"
	// CodeValidation marks a business-rule violation on a named field.
	CodeValidation Code = "validation_failed"
	// CodeNotFound marks a lookup for an identifier with no record.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a create with an already-used identifier.
	CodeConflict Code = "conflict"
	// CodeUnavailable marks a backing-store connectivity failure.
	CodeUnavailable Code = "store_unavailable"
	// CodeInternal marks any other unexpected failure.
	CodeInternal Code = "internal"
)

// Error is the domain error carried from services to the boundary.
// Field and Value are populated for validation failures so callers can
// report which rule was violated and on what input.
type Error struct {
	Code    Code
	Message string
	Field   string
	Value   any
	err     error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: field %q: %s", e.Code, e.Field, e.Message)
	}
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// New builds a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewFieldError builds a validation error naming the offending field and value.
func NewFieldError(field string, value any, message string) *Error {
	return &Error{Code: CodeValidation, Message: message, Field: field, Value: value}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/As while hiding store-specific types from callers.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// unclassified errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain error code to its transport status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidDNI, CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
