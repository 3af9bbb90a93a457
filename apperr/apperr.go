// Package apperr holds the error taxonomy shared by handlers, guards and stores.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindDependencyFailure Kind = iota
	KindUnauthorized
	KindInvalidToken
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidState
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidToken:
		return "invalid_token"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidState:
		return "invalid_state"
	case KindValidation:
		return "validation_error"
	default:
		return "dependency_failure"
	}
}

// Status maps a kind to the HTTP status code returned to the caller.
func (k Kind) Status() int {
	switch k {
	case KindUnauthorized, KindInvalidToken:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidState:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

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

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func InvalidToken(msg string) *Error { return &Error{Kind: KindInvalidToken, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }
func InvalidState(msg string) *Error { return &Error{Kind: KindInvalidState, Message: msg} }
func Validation(msg string) *Error   { return &Error{Kind: KindValidation, Message: msg} }

// Dependency wraps a database or payment provider failure.
func Dependency(msg string, err error) *Error {
	return &Error{Kind: KindDependencyFailure, Message: msg, Err: err}
}

// KindOf reports the kind of err. Errors outside the taxonomy are dependency failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDependencyFailure
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(err error) int {
	return KindOf(err).Status()
}

// PublicMessage is the text safe to show a client; dependency details stay in the logs.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
