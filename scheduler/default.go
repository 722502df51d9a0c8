// Package scheduler provides reference Scheduler implementations: pure
// functions from a pool.Snapshot and remaining budget to the next batch
// proposal.
package scheduler

import (
	"context"
	"sort"

	"github.com/ragtune-ai/ragtune"
	"github.com/ragtune-ai/ragtune/budget"
	"github.com/ragtune-ai/ragtune/pool"
)

var _ ragtune.Scheduler = (*Default)(nil)

// Default proposes the top BatchSize eligible documents by priority (then
// initial rank, then doc id) each call, capped to whatever remaining
// rerank_docs budget allows, tagged with Strategy, costed at one
// rerank_call and len(ids) rerank_docs/tokens-per-doc.
type Default struct {
	BatchSize    int
	Strategy     string
	TokensPerDoc float64
	MinBatchSize int
}

// NewDefault returns a Default scheduler with the given batch size and
// strategy tag.
func NewDefault(batchSize int, strategy string) *Default {
	return &Default{BatchSize: batchSize, Strategy: strategy, MinBatchSize: 1}
}

func (d *Default) SelectBatch(ctx context.Context, snap pool.Snapshot, remaining budget.RemainingView) (*ragtune.BatchProposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(snap.Eligible) < d.MinBatchSize {
		return nil, nil
	}

	ranked := make([]pool.ItemView, len(snap.Eligible))
	copy(ranked, snap.Eligible)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := ranked[i].PriorityValue, ranked[j].PriorityValue
		if pi != pj {
			return pi > pj
		}
		if ranked[i].InitialRank != ranked[j].InitialRank {
			return ranked[i].InitialRank < ranked[j].InitialRank
		}
		return ranked[i].DocID < ranked[j].DocID
	})

	n := d.BatchSize
	if n <= 0 || n > len(ranked) {
		n = len(ranked)
	}
	if remainingDocs, ok := remaining[budget.ResourceRerankDocs]; ok && int(remainingDocs) < n {
		n = int(remainingDocs)
	}
	if n <= 0 {
		return nil, nil
	}
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = ranked[i].DocID
	}

	cost := map[string]float64{
		budget.ResourceRerankCalls: 1,
		budget.ResourceRerankDocs:  float64(n),
	}
	if d.TokensPerDoc > 0 {
		cost[budget.ResourceTokens] = d.TokensPerDoc * float64(n)
	}

	return &ragtune.BatchProposal{DocIDs: ids, Strategy: d.Strategy, ExpectedCost: cost}, nil
}
