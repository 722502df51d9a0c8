// Package pool implements the CandidatePool: the per-request state machine
// that tracks every retrieved document from first admission through
// reranking or drop. The Controller is the pool's sole mutator; all other
// components see read-only snapshots.
package pool

// State is a CandidatePool item's position in the retrieval-rerank lifecycle.
type State int

const (
	// StateCandidate is the initial state for every admitted document:
	// eligible for scheduling, not yet selected for reranking.
	StateCandidate State = iota
	// StateInFlight marks a document the Scheduler has selected into the
	// current batch, awaiting a Reranker verdict.
	StateInFlight
	// StateReranked marks a document that received a reranker score.
	StateReranked
	// StateDropped is terminal: the document will never be reconsidered.
	StateDropped
)

func (s State) String() string {
	switch s {
	case StateCandidate:
		return "CANDIDATE"
	case StateInFlight:
		return "IN_FLIGHT"
	case StateReranked:
		return "RERANKED"
	case StateDropped:
		return "DROPPED"
	default:
		return "UNKNOWN"
	}
}

var legalTransitions = map[State]map[State]bool{
	StateCandidate: {StateInFlight: true, StateDropped: true},
	StateInFlight:  {StateReranked: true, StateDropped: true},
	StateReranked:  {StateDropped: true},
	StateDropped:   {},
}

func isLegal(from, to State) bool {
	next, ok := legalTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}
