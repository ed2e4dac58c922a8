package services

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation for the transport layer.
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindInvalidDateRange Kind = "INVALID_DATE_RANGE"
	KindValidation       Kind = "VALIDATION_ERROR"
	KindConflict         Kind = "CONFLICT"
	KindStateConflict    Kind = "STATE_CONFLICT"
	KindInternal         Kind = "INTERNAL_ERROR"
)

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

// Is matches any *Error of the same kind, so errors.Is(err, ErrStateConflict) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is checks; they carry only a kind.
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrInvalidDateRange = &Error{Kind: KindInvalidDateRange}
	ErrValidation       = &Error{Kind: KindValidation}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrStateConflict    = &Error{Kind: KindStateConflict}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func InvalidDateRange(format string, args ...any) *Error {
	return newError(KindInvalidDateRange, format, args...)
}

func Validation(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

func StateConflict(format string, args ...any) *Error {
	return newError(KindStateConflict, format, args...)
}

// KindOf returns the kind carried by err, or KindInternal for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
