package ragtune

import (
	"sync"
	"time"
)

// TraceEvent records one observable action the Controller or a component
// took during a request, for diagnostics and the testable-properties
// assertions.
type TraceEvent struct {
	Timestamp time.Time
	Component string
	Action    string
	Details   map[string]any
}

// Trace is an append-only, concurrency-safe event log for one request.
type Trace struct {
	mu     sync.Mutex
	events []TraceEvent
}

// NewTrace returns an empty Trace.
func NewTrace() *Trace {
	return &Trace{}
}

// Append records one event with the current wall-clock time.
func (t *Trace) Append(component, action string, details map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, TraceEvent{
		Timestamp: time.Now(),
		Component: component,
		Action:    action,
		Details:   details,
	})
}

// Events returns a copy of the events recorded so far, in append order.
func (t *Trace) Events() []TraceEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TraceEvent, len(t.events))
	copy(out, t.events)
	return out
}
