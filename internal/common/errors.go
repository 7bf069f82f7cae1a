package common

import (
	"errors"
	"net/http"
)

type ErrorKind string

// ErrFileNotFound is returned by attachment storage backends for unknown names.
var ErrFileNotFound = errors.New("file not found")

const (
	KindValidation   ErrorKind = "ValidationError"
	KindUnauthorized ErrorKind = "UnauthorizedError"
	KindForbidden    ErrorKind = "ForbiddenError"
	KindNotFound     ErrorKind = "NotFoundError"
	KindServer       ErrorKind = "ServerError"
)

// AppError is the error type that crosses the service boundary. Handlers map
// Kind to a status code; Err carries the underlying cause, if any. Type is a
// client-facing code and is only sent when a caller sets it.
type AppError struct {
	Kind    ErrorKind
	Message string
	Type    string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) error {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewUnauthorizedError(message string) error {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func NewForbiddenError(message string) error {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewNotFoundError(message string) error {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewServerError(message string, err error) error {
	return &AppError{Kind: KindServer, Message: message, Err: err}
}

// KindOf reports the AppError kind in err's chain, or KindServer for
// anything else.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindServer
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
