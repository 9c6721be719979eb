// Package apperr defines the error taxonomy shared by the service layer and the HTTP boundary.
//
// An *Error carries a Kind and a message key. It never carries locale text; the key is
// resolved through the i18n catalog when the error reaches a response.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the purpose of choosing a response.
type Kind int

const (
	Internal Kind = iota
	Validation
	InvalidCredentials
	Unauthorized
	Forbidden
	NotFound
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case InvalidCredentials:
		return "invalid_credentials"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified error with a catalog message key.
type Error struct {
	Kind Kind
	Key  string
}

// New returns a sentinel-style error of the given kind.
func New(kind Kind, key string) *Error {
	return &Error{Kind: kind, Key: key}
}

// Wrap attaches a cause to e. errors.Is(Wrap(e, cause), e) holds, and so does
// errors.Is(Wrap(e, cause), cause).
func Wrap(e *Error, cause error) error {
	return &wrapped{base: e, cause: cause}
}

func (e *Error) Error() string { return e.Key }

type wrapped struct {
	base  *Error
	cause error
}

func (w *wrapped) Error() string { return w.base.Error() + ": " + w.cause.Error() }

func (w *wrapped) Unwrap() []error { return []error{w.base, w.cause} }

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err. Unclassified errors are Internal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return Internal
}

// Status maps a kind onto an HTTP status code. Conflict surfaces as 400.
func Status(k Kind) int {
	switch k {
	case Validation, Conflict:
		return http.StatusBadRequest
	case InvalidCredentials, Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
