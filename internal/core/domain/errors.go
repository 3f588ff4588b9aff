package domain

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindPermission
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPermission:
		return "permission"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Message is what the invoking user sees; Err
// carries the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidationError(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewPermissionError(message string) error {
	return &Error{Kind: KindPermission, Message: message}
}

// NewTransportError hides err from the user behind message.
func NewTransportError(message string, err error) error {
	return &Error{Kind: KindTransport, Message: message, Err: err}
}

// KindOf classifies err. Unclassified errors are KindUnknown, except the
// transport sentinels which are always transport failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnexpectedStatus) || errors.Is(err, ErrInvalidResponse) {
		return KindTransport
	}
	return KindUnknown
}

// UserMessage returns the message to show for err, or fallback when err is
// not safe to surface verbatim.
func UserMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" && e.Kind != KindUnknown {
		return e.Message
	}
	return fallback
}
