package ragtune

import (
	"context"

	"github.com/ragtune-ai/ragtune/budget"
	"github.com/ragtune-ai/ragtune/pool"
)

// Retriever fetches up to topK documents for the query carried by rc. The
// Controller treats the very first call (against the original query) as
// fatal on error; every subsequent call (against a reformulated variant)
// is recoverable, logged, and skipped.
type Retriever interface {
	Retrieve(ctx context.Context, rc *Context, topK int) ([]ScoredDocument, error)
}

// Reformulator proposes alternative phrasings of rc.Query. A failure here
// is always recoverable: the Controller proceeds with the original
// retrieval round alone.
type Reformulator interface {
	Generate(ctx context.Context, rc *Context) ([]string, error)
}

// Estimator is a pure function from the current pool snapshot to a
// priority per eligible document. It must not mutate the pool; the
// Controller applies its output via pool.ApplyPriorities.
type Estimator interface {
	Value(ctx context.Context, snap pool.Snapshot, rc *Context) (map[string]float64, error)
}

// BatchProposal is a Scheduler's decision: which eligible documents to send
// to the Reranker next, under what strategy tag, at what expected cost.
// A nil proposal (or one with no DocIDs) tells the Controller to stop the
// iterative loop.
type BatchProposal struct {
	DocIDs       []string
	Strategy     string
	ExpectedCost map[string]float64
}

// Scheduler is a pure function from the current pool snapshot and
// remaining budget to the next BatchProposal.
type Scheduler interface {
	SelectBatch(ctx context.Context, snap pool.Snapshot, remaining budget.RemainingView) (*BatchProposal, error)
}

// Reranker scores a proposed batch under strategy. Documents named in
// items whose DocID is absent from the returned map are treated as
// dropped by the pool. A Reranker error is recoverable: the Controller
// drops the whole batch and continues the loop.
type Reranker interface {
	Rerank(ctx context.Context, items []pool.ItemView, strategy string, rc *Context) (map[string]float64, error)
}

// FeedbackPolicy is polled at the head of every loop iteration, after
// estimation and before scheduling, to decide whether the Controller
// should stop early regardless of remaining budget.
type FeedbackPolicy interface {
	ShouldStop(ctx context.Context, snap pool.Snapshot, remaining budget.RemainingView, estimates map[string]float64) (bool, string, error)
}

// Assembler selects and formats the final document list from whatever the
// pool holds as CANDIDATE or RERANKED when the loop exits, constrained by
// remainingTokens.
type Assembler interface {
	Assemble(ctx context.Context, items []pool.ItemView, rc *Context, remainingTokens float64) ([]ScoredDocument, error)
}
