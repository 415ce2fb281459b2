package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed backend interaction.
type Kind int

const (
	// KindTransport means no response was received.
	KindTransport Kind = iota + 1
	// KindAuth is a rejected credential, a missing session or a missing
	// credential in a login response.
	KindAuth
	// KindMalformed is a response body that does not have the expected shape.
	KindMalformed
	// KindValidation is a request rejected client-side before any I/O.
	KindValidation
	// KindStatus is any other non-success status.
	KindStatus
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindMalformed:
		return "malformed"
	case KindValidation:
		return "validation"
	case KindStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against *Error values of each kind.
var (
	ErrTransport  = &Error{Kind: KindTransport}
	ErrAuth       = &Error{Kind: KindAuth}
	ErrMalformed  = &Error{Kind: KindMalformed}
	ErrValidation = &Error{Kind: KindValidation}
	ErrStatus     = &Error{Kind: KindStatus}
)

// ErrUnauthenticated is returned by token sources when no session exists.
var ErrUnauthenticated = errors.New("not logged in")

// Error is the error type returned by Client methods.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String() + " error"
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// Message returns a user-facing message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		switch {
		case e.Kind == KindTransport:
			return "could not reach the server: " + e.Error()
		case e.Message != "":
			return e.Message
		}
	}
	return err.Error()
}

func validationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}
