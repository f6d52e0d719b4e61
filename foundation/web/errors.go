package web

import (
	"github.com/pkg/errors"
)

// Error is used to pass an error during the request through the application
// with web specific context. Extra is merged into the error response body.
type Error struct {
	Err    error
	Status int
	Extra  map[string]interface{}
}

// NewRequestError wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewRequestError(err error, status int) error {
	return &Error{Err: err, Status: status}
}

// NewRequestErrorWith is NewRequestError carrying extra response fields.
func NewRequestErrorWith(err error, status int, extra map[string]interface{}) error {
	return &Error{Err: err, Status: status, Extra: extra}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsRequestError checks if an error of type *Error exists in the chain.
func IsRequestError(err error) bool {
	var re *Error
	return errors.As(err, &re)
}

func errorBody(message string, extra map[string]interface{}) map[string]interface{} {
	body := map[string]interface{}{
		"status":  "error",
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	return body
}
