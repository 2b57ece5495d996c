// Package apperr defines the single status-coded error type used by every
// service in the platform. Business-rule failures carry an HTTP-like status
// so the request boundary can map them without knowing the originating module.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
)

// Error is a business-rule failure with an HTTP-status-like code.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// New creates an Error with an explicit status code.
func New(status int, message string) *Error {
	return &Error{StatusCode: status, Message: message}
}

// BadRequest reports invalid input or a violated business rule.
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// NotFound reports a missing referenced entity.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

// Forbidden reports a portal or role restriction.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

// Unauthorized reports a failed or missing authentication.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// Status extracts the status code from err. Non-apperr errors map to 500.
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// MessageOf extracts the client-facing message from err. Non-apperr errors
// are masked to avoid leaking internals.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// IsStatus reports whether err is an apperr with the given status code.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == status
}
