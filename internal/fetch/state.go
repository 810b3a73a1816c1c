// Package fetch tracks the lifecycle of asynchronous loads.
//
// A Controller issues loads, exposes the current State and drops results
// from loads that were superseded by a newer one. Consumers either poll
// State, subscribe to change pings, or block on Wait.
package fetch

import "fmt"

// Phase identifies which variant of a State is current.
type Phase int

const (
	// Idle means no load has been issued yet.
	Idle Phase = iota
	// Loading means a load is in flight.
	Loading
	// Succeeded means the latest load decoded successfully.
	Succeeded
	// Failed means the latest load ended in a transport, decode or application error.
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Succeeded:
		return "success"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the result of one asynchronous load. Data is only meaningful
// when Phase is Succeeded and Err only when Phase is Failed.
type State[T any] struct {
	Phase Phase
	Data  T
	Err   *ErrorDescriptor
}

// IdleState returns the zero state of a controller that has not loaded yet.
func IdleState[T any]() State[T] {
	return State[T]{Phase: Idle}
}

// LoadingState returns a state with a load in flight.
func LoadingState[T any]() State[T] {
	return State[T]{Phase: Loading}
}

// SuccessState wraps decoded data.
func SuccessState[T any](data T) State[T] {
	return State[T]{Phase: Succeeded, Data: data}
}

// FailedState wraps a normalized error.
func FailedState[T any](err error) State[T] {
	d := Describe(err)
	return State[T]{Phase: Failed, Err: &d}
}

// Pending reports whether the state has no result yet. Idle and Loading
// are treated the same so consumers never flash empty content before
// the first load starts.
func (s State[T]) Pending() bool {
	return s.Phase == Idle || s.Phase == Loading
}

// Settled reports whether the state carries a result or an error.
func (s State[T]) Settled() bool {
	return s.Phase == Succeeded || s.Phase == Failed
}

// ErrorMessage returns the human-readable error, or "" when not failed.
func (s State[T]) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Message
}

// Pair holds the data of two joined states.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Both joins two states: failed if either failed (the first failure
// wins), pending while either is pending, succeeded once both have.
func Both[A, B any](a State[A], b State[B]) State[Pair[A, B]] {
	switch {
	case a.Phase == Failed:
		return State[Pair[A, B]]{Phase: Failed, Err: a.Err}
	case b.Phase == Failed:
		return State[Pair[A, B]]{Phase: Failed, Err: b.Err}
	case a.Pending() || b.Pending():
		return LoadingState[Pair[A, B]]()
	default:
		return SuccessState(Pair[A, B]{First: a.Data, Second: b.Data})
	}
}
