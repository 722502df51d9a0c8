package scheduler

import (
	"context"

	"github.com/ragtune-ai/ragtune"
	"github.com/ragtune-ai/ragtune/budget"
	"github.com/ragtune-ai/ragtune/pool"
)

var _ ragtune.Scheduler = (*Composite)(nil)

// Composite runs every sub-scheduler and applies pessimistic gating: if
// any sub-scheduler votes to stop (a nil or empty proposal), the composite
// stops too; otherwise it escalates to whichever sub-scheduler proposed
// the most expensive strategy, measured by total rerank_docs cost.
type Composite struct {
	Schedulers []ragtune.Scheduler
}

// NewComposite returns a ready Composite over the given sub-schedulers.
func NewComposite(schedulers ...ragtune.Scheduler) *Composite {
	return &Composite{Schedulers: schedulers}
}

func (c *Composite) SelectBatch(ctx context.Context, snap pool.Snapshot, remaining budget.RemainingView) (*ragtune.BatchProposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var proposals []*ragtune.BatchProposal
	for _, s := range c.Schedulers {
		p, err := s.SelectBatch(ctx, snap, remaining)
		if err != nil {
			return nil, err
		}
		if p == nil || len(p.DocIDs) == 0 {
			return nil, nil
		}
		proposals = append(proposals, p)
	}
	if len(proposals) == 0 {
		return nil, nil
	}

	winner := proposals[0]
	bestCost := proposals[0].ExpectedCost[budget.ResourceRerankDocs]
	for _, p := range proposals[1:] {
		if cost := p.ExpectedCost[budget.ResourceRerankDocs]; cost > bestCost {
			bestCost = cost
			winner = p
		}
	}
	return winner, nil
}
