// Package budget implements the CostTracker: a multi-resource,
// monotone-increasing, never-raising ledger against which the Controller
// arbitrates every scheduling and reranking decision.
package budget

import (
	"sync"
	"time"
)

// Recognized resource names. Callers may track additional, unbounded
// resources under any other key; of these five, all but reformulations
// participate in IsExhausted's hard-stop check.
const (
	ResourceTokens         = "tokens"
	ResourceRerankDocs     = "rerank_docs"
	ResourceRerankCalls    = "rerank_calls"
	ResourceReformulations = "reformulations"
	ResourceLatencyMs      = "latency_ms"
)

var hardStopResources = [...]string{
	ResourceTokens,
	ResourceRerankDocs,
	ResourceRerankCalls,
	ResourceLatencyMs,
}

// Limits is the per-request budget configuration: resource name to its
// ceiling. A resource absent from Limits is treated as unbounded.
type Limits map[string]float64

// RemainingView is an immutable snapshot of remaining budget per resource,
// computed as max(0, limit-used). Unbounded resources are not included.
type RemainingView map[string]float64

// Tracker is the CostTracker. It never raises on exhaustion: callers
// consult TryConsume/IsExhausted and decide for themselves how to react.
type Tracker struct {
	mu     sync.Mutex
	limits Limits
	used   map[string]float64
	start  time.Time
}

// NewTracker builds a Tracker over the given limits, starting its latency
// clock immediately.
func NewTracker(limits Limits) *Tracker {
	cloned := make(Limits, len(limits))
	for k, v := range limits {
		cloned[k] = v
	}
	return &Tracker{
		limits: cloned,
		used:   make(map[string]float64),
		start:  time.Now(),
	}
}

// chargeElapsedLocked refreshes the live latency_ms usage from the wall
// clock. Called at the head of every read/write so latency is checked
// exactly as live as any other resource. Callers must hold t.mu.
func (t *Tracker) chargeElapsedLocked() {
	elapsed := float64(time.Since(t.start)) / float64(time.Millisecond)
	if elapsed > t.used[ResourceLatencyMs] {
		t.used[ResourceLatencyMs] = elapsed
	}
}

// TryConsume attempts to charge amount against resource. It always applies
// the charge (the tracker does not silently clamp); the boolean return
// reports whether the charge stayed within the configured limit, so the
// caller can react to an overage without the tracker raising.
func (t *Tracker) TryConsume(resource string, amount float64) bool {
	return t.TryConsumeAll(map[string]float64{resource: amount})
}

// TryConsumeAll charges every resource in costs in one locked step. It
// returns true only if every charge stayed within its configured limit;
// all charges are applied regardless, so at most one over-consuming round
// is ever permitted before IsExhausted starts reporting true. This is
// reserved for the single post-rerank charge the Controller's loop
// applies once a batch has already been scored — by then the cost is
// sunk and must be recorded whether or not it fit. Gating decisions
// (whether to dispatch more optional work) must use TryConsumeGated/
// TryConsumeAllGated instead, which never charge on denial.
func (t *Tracker) TryConsumeAll(costs map[string]float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chargeElapsedLocked()

	ok := true
	for resource, amount := range costs {
		limit, has := t.limits[resource]
		if has && t.used[resource]+amount > limit {
			ok = false
		}
	}
	for resource, amount := range costs {
		t.used[resource] += amount
	}
	return ok
}

// TryConsumeGated attempts to charge amount against resource, applying the
// charge only if it stays within the configured limit. On denial nothing
// is charged.
func (t *Tracker) TryConsumeGated(resource string, amount float64) bool {
	return t.TryConsumeAllGated(map[string]float64{resource: amount})
}

// TryConsumeAllGated charges every resource in costs in one locked step,
// but only if every one of them would stay within its configured limit;
// otherwise it applies nothing and returns false. This is the plain
// try_consume contract ("if affordable, add and return true; otherwise
// record a deny and return false") and is what every gating call site
// (deciding whether to do more optional work) should use.
func (t *Tracker) TryConsumeAllGated(costs map[string]float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chargeElapsedLocked()

	for resource, amount := range costs {
		limit, has := t.limits[resource]
		if has && t.used[resource]+amount > limit {
			return false
		}
	}
	for resource, amount := range costs {
		t.used[resource] += amount
	}
	return true
}

// IsExhausted reports whether any hard-stop resource has reached or
// exceeded its configured limit. Resources without a configured limit
// never exhaust.
func (t *Tracker) IsExhausted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chargeElapsedLocked()
	for _, resource := range hardStopResources {
		limit, has := t.limits[resource]
		if !has {
			continue
		}
		if t.used[resource] >= limit {
			return true
		}
	}
	return false
}

// RemainingView returns a read-only snapshot of remaining budget per
// configured resource.
func (t *Tracker) RemainingView() RemainingView {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chargeElapsedLocked()
	view := make(RemainingView, len(t.limits))
	for resource, limit := range t.limits {
		remaining := limit - t.used[resource]
		if remaining < 0 {
			remaining = 0
		}
		view[resource] = remaining
	}
	return view
}

// Snapshot returns the full usage map (including unbounded resources),
// suitable for attaching to the final ControllerOutput.
func (t *Tracker) Snapshot() map[string]float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chargeElapsedLocked()
	out := make(map[string]float64, len(t.used))
	for resource, used := range t.used {
		out[resource] = used
	}
	return out
}
