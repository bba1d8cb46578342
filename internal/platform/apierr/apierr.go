package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries the HTTP status and machine-readable code a handler should
// answer with. Services return it for caller mistakes; anything else is
// treated as internal.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	default:
		return fmt.Sprintf("api error (%d)", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code, format string, args ...any) *Error {
	return New(http.StatusBadRequest, code, fmt.Errorf(format, args...))
}

func NotFound(code, format string, args ...any) *Error {
	return New(http.StatusNotFound, code, fmt.Errorf(format, args...))
}

// As unwraps err to the first *Error in its chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}
