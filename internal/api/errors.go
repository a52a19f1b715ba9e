package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/pdxmph/tasks-tui/internal/tasks"
)

// Error kinds. Every *Error also matches ErrFetch.
var (
	ErrFetch      = errors.New("fetch failed")
	ErrNetwork    = errors.New("network error")
	ErrServer     = errors.New("server error")
	ErrNotFound   = tasks.ErrNotFound
	ErrValidation = errors.New("validation failed")
	ErrMalformed  = errors.New("malformed response")
)

// Error describes a failed call against the task API
type Error struct {
	Op      string // list, get, create, update, delete
	Status  int    // HTTP status, 0 when no response arrived
	Message string // message reported by the server, if any
	Kind    error
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s task: %v", e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	errs := []error{ErrFetch, e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// kindForStatus maps a non-2xx status onto the error taxonomy
func kindForStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation
	}
	return ErrServer
}

// errorBody covers the two error envelopes seen in the wild
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}
