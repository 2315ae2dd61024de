package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a generation request failed.
type ErrorKind string

const (
	ErrEmptyInput      ErrorKind = "empty_input"
	ErrUnauthenticated ErrorKind = "unauthenticated"
	ErrServiceRejected ErrorKind = "service_rejected"
	ErrTransport       ErrorKind = "transport"
	ErrInvalidRequest  ErrorKind = "invalid_request"
	ErrBusy            ErrorKind = "busy"
)

// ErrStorageCorrupt marks persisted history that could not be decoded.
// The history cache recovers from it locally and never surfaces it.
var ErrStorageCorrupt = errors.New("history storage corrupt")

// GenerationError is returned by every failed dispatch.
type GenerationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewGenerationError creates a GenerationError without an underlying cause.
func NewGenerationError(kind ErrorKind, message string) *GenerationError {
	return &GenerationError{Kind: kind, Message: message}
}

// WrapGenerationError attaches a kind and message to an underlying error.
func WrapGenerationError(err error, kind ErrorKind, message string) *GenerationError {
	return &GenerationError{Kind: kind, Message: message, Err: err}
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// UserMessage is the short notification text shown to the user.
func (e *GenerationError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case ErrEmptyInput:
		return "Please enter a prompt"
	case ErrUnauthenticated:
		return "Please sign in first"
	case ErrTransport:
		return "System Error"
	case ErrBusy:
		return "A request is already in progress"
	default:
		return "Error"
	}
}

// KindOf extracts the kind of a generation error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return ""
}

// IsKind reports whether err is a GenerationError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
