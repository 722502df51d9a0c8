// Package estimator provides reference Estimator implementations: pure
// functions from a pool.Snapshot to a priority per eligible document.
// Modeled on the teacher's ai/evaluation.CompositeEvaluator for the
// sequential-run-then-merge composite shape.
package estimator

import (
	"context"

	"github.com/ragtune-ai/ragtune"
	"github.com/ragtune-ai/ragtune/pool"
)

var _ ragtune.Estimator = (*Baseline)(nil)

// Baseline scores each eligible document by identity: the best score any
// retrieval round assigned it, i.e. max(sources.values()).
type Baseline struct{}

// NewBaseline returns a ready Baseline estimator.
func NewBaseline() *Baseline { return &Baseline{} }

func (b *Baseline) Value(ctx context.Context, snap pool.Snapshot, _ *ragtune.Context) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(snap.Eligible) == 0 {
		return nil, nil
	}

	out := make(map[string]float64, len(snap.Eligible))
	for _, it := range snap.Eligible {
		out[it.DocID] = maxOf(it.Sources)
	}
	return out, nil
}
