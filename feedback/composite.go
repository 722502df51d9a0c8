package feedback

import (
	"context"

	"github.com/ragtune-ai/ragtune"
	"github.com/ragtune-ai/ragtune/budget"
	"github.com/ragtune-ai/ragtune/pool"
)

var _ ragtune.FeedbackPolicy = (*Composite)(nil)

// Composite polls every member policy and stops as soon as any one of them
// votes to stop — the same pessimistic-wins rule the Scheduler composite
// uses for escalation gating.
type Composite struct {
	Policies []ragtune.FeedbackPolicy
}

// NewComposite returns a ready Composite over the given member policies.
func NewComposite(policies ...ragtune.FeedbackPolicy) *Composite {
	return &Composite{Policies: policies}
}

func (c *Composite) ShouldStop(ctx context.Context, snap pool.Snapshot, remaining budget.RemainingView, estimates map[string]float64) (bool, string, error) {
	for _, p := range c.Policies {
		stop, reason, err := p.ShouldStop(ctx, snap, remaining, estimates)
		if err != nil {
			return false, "", err
		}
		if stop {
			return true, reason, nil
		}
	}
	return false, "", nil
}
