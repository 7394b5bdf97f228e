// Package domainerrors defines the typed, coded errors the registry's
// services return. Stores return sentinel errors (pkg/platform/sentinel)
// for infrastructure facts; services translate those into coded errors so
// transports can map them to status codes without string matching.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure. Every failure is terminal and synchronous:
// the operation either committed in full or had no effect.
type Code string

const (
	// CodePermissionDenied means the caller lacks the required role.
	CodePermissionDenied Code = "permission_denied"
	// CodeInvalidArgument means malformed or out-of-range input.
	CodeInvalidArgument Code = "invalid_argument"
	// CodeNotFound means the identifier is unknown to the store.
	CodeNotFound Code = "not_found"
	// CodeAlreadyExists means an identifier collision on issuance.
	CodeAlreadyExists Code = "already_exists"
	// CodeAlreadyRevoked means a redundant revocation attempt. Distinct
	// from CodeInvalidArgument: the input is well-formed, the state is not.
	CodeAlreadyRevoked Code = "already_revoked"
	// CodeInternal covers infrastructure failures the caller cannot correct.
	CodeInternal Code = "internal"
)

// Error carries a code plus a human-readable message and optionally wraps
// the underlying cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
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
// untyped errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status the transport layer returns.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeAlreadyRevoked:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
