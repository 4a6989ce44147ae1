package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a handler-level failure carrying the HTTP status and a stable machine code.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code string, err error) *Error { return New(http.StatusBadRequest, code, err) }

func NotFound(code string, err error) *Error { return New(http.StatusNotFound, code, err) }

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var out *Error
	if errors.As(err, &out) && out != nil {
		return out, true
	}
	return nil, false
}
