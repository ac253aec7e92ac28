package errors

import (
	"errors"
	"fmt"
)

// Error codes shared by the bot layers.
const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeCacheMiss          = "CACHE_MISS"
	CodeInternal           = "INTERNAL_ERROR"
)

// Error represents a typed domain error. Message is safe to show to chat users.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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

// Is matches errors carrying the same code so clones compare equal to their template.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrUnauthorized         = New(CodeUnauthorized, "unauthorized")
	ErrBadRequest           = New(CodeBadRequest, "bad request")
	ErrMissingUploadContext = New(CodeBadRequest, "missing upload context")
	ErrNotFound             = New(CodeNotFound, "resource not found")
	ErrStorageUnavailable   = New(CodeStorageUnavailable, "storage unavailable")
	ErrCacheMiss            = New(CodeCacheMiss, "cache miss")
	ErrInternal             = New(CodeInternal, "internal error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Message)
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// UserFacing reports errors caused by the user's input or rights rather than by
// the system. They are answered with a notice and need no operator attention.
func UserFacing(err error) bool {
	if err == nil {
		return false
	}
	switch FromError(err).Code {
	case CodeUnauthorized, CodeBadRequest, CodeNotFound:
		return true
	default:
		return false
	}
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

// Storage wraps a persistence failure as StorageUnavailable.
func Storage(err error, message string) *Error {
	return Wrap(err, CodeStorageUnavailable, message)
}
