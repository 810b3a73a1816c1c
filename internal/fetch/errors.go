package fetch

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a load failure.
type Kind string

const (
	// KindTransport covers network failures where no response arrived.
	KindTransport Kind = "transport"
	// KindDecode covers responses whose body could not be decoded.
	KindDecode Kind = "decode"
	// KindApplication covers well-formed error responses, e.g. a template
	// syntax error reported by the render endpoint.
	KindApplication Kind = "application"
)

// Error is a classified load failure.
type Error struct {
	Kind Kind
	// Type is the remote error type when the server reported one.
	Type string
	Err  error
}

func (e *Error) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: %s", e.Type, e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// TransportError wraps err as a transport failure.
func TransportError(err error) error {
	return &Error{Kind: KindTransport, Err: err}
}

// DecodeError wraps err as a decode failure.
func DecodeError(err error) error {
	return &Error{Kind: KindDecode, Err: err}
}

// ApplicationError builds an application failure from a remote error.
func ApplicationError(errType, message string) error {
	return &Error{Kind: KindApplication, Type: errType, Err: errors.New(message)}
}

// ErrorDescriptor is the single shape every failure is reduced to before
// it reaches a view.
type ErrorDescriptor struct {
	Kind    Kind
	Message string
}

// Describe normalizes any error into an ErrorDescriptor. Unclassified
// errors are reported as transport failures.
func Describe(err error) ErrorDescriptor {
	if err == nil {
		return ErrorDescriptor{}
	}
	var fe *Error
	if errors.As(err, &fe) {
		return ErrorDescriptor{Kind: fe.Kind, Message: fe.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorDescriptor{Kind: KindTransport, Message: "request timed out"}
	}
	return ErrorDescriptor{Kind: KindTransport, Message: err.Error()}
}
