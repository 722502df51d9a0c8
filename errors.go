package ragtune

import (
	"errors"
	"fmt"
)

// ErrNilConfig is returned when a required config pointer is nil.
var ErrNilConfig = errors.New("ragtune: config cannot be nil")

// ComponentFailureError wraps a recoverable error from a Reformulator or
// Reranker call. The Controller does not construct it: it records such
// failures in the trace as plain error strings and never returns them
// from Run.
type ComponentFailureError struct {
	Component string
	Action    string
	Err       error
}

func (e *ComponentFailureError) Error() string {
	return fmt.Sprintf("ragtune: %s %s failed: %v", e.Component, e.Action, e.Err)
}

func (e *ComponentFailureError) Unwrap() error { return e.Err }

// FatalRetrievalError is returned by Controller.Run when the original-query
// retrieval fails. Unlike every other component failure, this one is not
// recoverable: without an initial candidate set the loop has nothing to
// schedule.
type FatalRetrievalError struct {
	Err   error
	Trace []TraceEvent
}

func (e *FatalRetrievalError) Error() string {
	return fmt.Sprintf("ragtune: fatal retrieval failure: %v", e.Err)
}

func (e *FatalRetrievalError) Unwrap() error { return e.Err }
