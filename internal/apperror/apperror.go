package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so the HTTP layer can pick a status code.
type Kind struct {
	code   string
	status int
}

func (k *Kind) Error() string { return k.code }

func (k *Kind) Code() string { return k.code }

func (k *Kind) Status() int { return k.status }

var (
	ErrValidation    = &Kind{code: "validation_error", status: http.StatusBadRequest}
	ErrUnauthorized  = &Kind{code: "unauthorized", status: http.StatusUnauthorized}
	ErrForbidden     = &Kind{code: "forbidden", status: http.StatusForbidden}
	ErrNotFound      = &Kind{code: "not_found", status: http.StatusNotFound}
	ErrEmptyCart     = &Kind{code: "empty_cart", status: http.StatusConflict}
	ErrPriceMismatch = &Kind{code: "price_mismatch", status: http.StatusConflict}
	ErrConflict      = &Kind{code: "conflict", status: http.StatusConflict}
	ErrPersistence   = &Kind{code: "persistence_error", status: http.StatusInternalServerError}
)

// Error is a Kind with a caller-facing message and an optional cause.
type Error struct {
	Kind    *Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind *Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind *Kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func Validation(format string, args ...any) error {
	return New(ErrValidation, format, args...)
}

func NotFound(format string, args ...any) error {
	return New(ErrNotFound, format, args...)
}

// Persistence wraps an unexpected storage failure. Errors that already carry
// a Kind are returned unchanged so a typed failure raised inside a
// transaction survives the rollback.
func Persistence(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if _, ok := KindOf(err); ok {
		return err
	}
	return Wrap(ErrPersistence, err, format, args...)
}

// KindOf reports the Kind carried by err, if any.
func KindOf(err error) (*Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	var kind *Kind
	if errors.As(err, &kind) {
		return kind, true
	}
	return nil, false
}

// Message returns the caller-facing part of err, without the wrapped cause.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
