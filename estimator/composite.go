package estimator

import (
	"context"

	"github.com/samber/lo"

	"github.com/ragtune-ai/ragtune"
	"github.com/ragtune-ai/ragtune/pool"
)

var _ ragtune.Estimator = (*Composite)(nil)

// Member pairs a sub-estimator with whether its vote gates the final
// priority: a Gating member voting <= 0 for a document vetoes that
// document to 0 regardless of what other members say.
type Member struct {
	Estimator ragtune.Estimator
	Gating    bool
}

// MergeMode selects how non-gating member votes combine.
type MergeMode int

const (
	// MergeMean averages non-gating member votes.
	MergeMean MergeMode = iota
	// MergeMax takes the highest non-gating member vote.
	MergeMax
)

// Composite runs every member sequentially (matching the teacher's
// CompositeEvaluator) and merges their priorities with a pessimistic
// gating pass: any Gating member vetoing a document to <= 0 wins outright.
type Composite struct {
	Members []Member
	Merge   MergeMode
}

// NewComposite returns a ready Composite over members.
func NewComposite(merge MergeMode, members ...Member) *Composite {
	return &Composite{Members: members, Merge: merge}
}

func (c *Composite) Value(ctx context.Context, snap pool.Snapshot, rc *ragtune.Context) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	votes := make([]map[string]float64, 0, len(c.Members))
	gating := make([]bool, 0, len(c.Members))
	for _, m := range c.Members {
		v, err := m.Estimator.Value(ctx, snap, rc)
		if err != nil {
			return nil, err
		}
		votes = append(votes, v)
		gating = append(gating, m.Gating)
	}

	docIDs := lo.Map(snap.Eligible, func(it pool.ItemView, _ int) string { return it.DocID })
	out := make(map[string]float64, len(docIDs))
	for _, id := range docIDs {
		vetoed := false
		var values []float64
		for i, v := range votes {
			value, ok := v[id]
			if !ok {
				continue
			}
			if gating[i] {
				if value <= 0 {
					vetoed = true
					break
				}
				continue
			}
			values = append(values, value)
		}
		if vetoed {
			out[id] = 0
			continue
		}
		out[id] = c.mergeValues(values)
	}
	return out, nil
}

func (c *Composite) mergeValues(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	switch c.Merge {
	case MergeMax:
		best := values[0]
		for _, v := range values[1:] {
			if v > best {
				best = v
			}
		}
		return best
	default: // MergeMean
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	}
}
