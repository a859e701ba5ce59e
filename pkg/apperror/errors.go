package apperror

import (
	"errors"
	"net/http"
)

// AppError carries an HTTP status, a machine-stable code and a human message.
// Handlers pass any error to response.Error; non-AppError values collapse to a
// logged 500.
type AppError struct {
	Status  int
	Code    string
	Message string
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

// Is lets sentinel comparisons like errors.Is(err, apperror.ErrNotFound) match
// derived errors that share the same code.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func New(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

var (
	ErrNotFound      = New(http.StatusNotFound, "not_found", "resource not found")
	ErrUnauthorized  = New(http.StatusUnauthorized, "unauthorized", "authentication required")
	ErrForbidden     = New(http.StatusForbidden, "forbidden", "forbidden")
	ErrValidation    = New(http.StatusBadRequest, "validation_error", "invalid input")
	ErrInvalidParent = New(http.StatusBadRequest, "invalid_parent", "parent comment does not belong to this post")
	ErrConflict      = New(http.StatusConflict, "conflict", "resource already exists")
	ErrInternal      = New(http.StatusInternalServerError, "internal_error", "internal server error")
)

// WithMessage derives an error with the same status/code but a specific message.
func WithMessage(base *AppError, message string) *AppError {
	return &AppError{Status: base.Status, Code: base.Code, Message: message}
}

// Wrap derives an error keeping base's status/code/message and recording cause.
func Wrap(base *AppError, err error) *AppError {
	return &AppError{Status: base.Status, Code: base.Code, Message: base.Message, Err: err}
}
