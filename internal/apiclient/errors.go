package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures the way the pages present them.
type Kind int

const (
	// KindValidation is a client-side check that failed before any call.
	KindValidation Kind = iota + 1
	// KindRejected is an upstream 4xx/5xx answer.
	KindRejected
	// KindNetwork is a transport failure, timeout or unreadable answer.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRejected:
		return "rejected"
	case KindNetwork:
		return "network"
	}
	return "unknown"
}

// Error is returned by every Client method that fails.
type Error struct {
	Kind    Kind
	Status  int    // upstream status for KindRejected
	Message string // human readable, safe to show
	Err     error  // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a KindValidation error.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// KindOf returns the kind of err.  Errors that did not come from this
// package count as network failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNetwork
}

// MessageOf returns the displayable message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Something went wrong. Please try again."
}

// IsUnauthorized reports an upstream 401.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindRejected && e.Status == http.StatusUnauthorized
}

// IsNotFound reports an upstream 404.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindRejected && e.Status == http.StatusNotFound
}
