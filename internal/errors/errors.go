package errors

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind classifies a service error into a stable category that the HTTP
// layer can translate without inspecting error strings.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindTransient
)

// Error is the error type every service method returns on failure.
// Message is safe to show to the client; Err carries the cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error      { return &Error{Kind: KindValidation, Message: msg} }
func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Message: msg} }
func Forbidden(msg string) error       { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) error        { return &Error{Kind: KindConflict, Message: msg} }

// Internal wraps an unexpected error with a client-safe message.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// Map converts repo/infra errors into service errors.
// Keeps the service layer clean by centralizing error classification.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Message: "record not found", Err: err}

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindConflict, Message: "already exists", Err: err}

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTransient, Message: "request timed out", Err: err}

	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindTransient, Message: "request was canceled", Err: err}

	default:
		return &Error{Kind: KindInternal, Message: "internal error", Err: err}
	}
}

// KindOf extracts the Kind from an error, defaulting to KindInternal.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}
