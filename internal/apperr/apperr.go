// Package apperr defines the error taxonomy shared by every handler and its
// mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// Kind classifies an error for the caller.
type Kind string

// Auth kinds
const (
	MissingHeader Kind = "missing header"
	Malformed     Kind = "malformed header"
	Expired       Kind = "expired"
	Invalid       Kind = "invalid token"
)

// Validation kinds
const (
	MissingField  Kind = "missing field"
	InvalidFormat Kind = "invalid format"
	InvalidRange  Kind = "invalid range"
	Conflict      Kind = "conflict"
)

// Lifecycle kinds
const (
	NotFound       Kind = "not found"
	InvalidStatus  Kind = "invalid status"
	TenantMismatch Kind = "tenant mismatch"
)

// Storage kinds
const (
	ConnectionFailure   Kind = "connection failure"
	ConstraintViolation Kind = "constraint violation"
	Unexpected          Kind = "unexpected"
)

// Error carries a Kind, a message safe to show to the caller and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// New returns an error of the given kind with a caller-facing message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap returns an error of the given kind around a cause. The cause is only logged.
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Msg != "" && e.Err != nil {
		var b strings.Builder
		b.WriteString(e.Msg)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
		return b.String()
	} else if e.Msg != "" {
		return e.Msg
	} else if e.Err != nil {
		return e.Err.Error()
	}
	return "<" + string(e.Kind) + ">"
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in the chain, or Unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the caller-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return "Internal server error"
}

// HTTPStatus maps an error to its response code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case MissingHeader, Malformed, Expired, Invalid:
		return http.StatusUnauthorized
	case MissingField, InvalidFormat, InvalidRange, InvalidStatus, Conflict:
		return http.StatusBadRequest
	case TenantMismatch:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsInternal reports whether the error must be hidden behind a generic message.
func IsInternal(err error) bool {
	return HTTPStatus(err) == http.StatusInternalServerError
}

// FromDB classifies a persistence error. msg is used for not-found results.
func FromDB(err error, msg string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(err, NotFound, msg)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return Wrap(err, ConstraintViolation, "Database operation failed")
	default:
		return Wrap(pkgerrors.WithStack(err), ConnectionFailure, "Database operation failed")
	}
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") || strings.Contains(msg, "UNIQUE constraint failed")
}
