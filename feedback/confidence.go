// Package feedback provides reference FeedbackPolicy implementations,
// polled at the head of every Controller loop iteration to decide whether
// to stop early regardless of remaining budget.
package feedback

import (
	"context"

	"github.com/ragtune-ai/ragtune"
	"github.com/ragtune-ai/ragtune/budget"
	"github.com/ragtune-ai/ragtune/pool"
)

var _ ragtune.FeedbackPolicy = (*ConfidenceThreshold)(nil)

// ConfidenceThreshold stops once the mean FinalScore of the top K reranked
// winners crosses Threshold. It never stops before at least MinWinners
// documents have been reranked.
type ConfidenceThreshold struct {
	TopK       int
	Threshold  float64
	MinWinners int
}

// NewConfidenceThreshold returns a ready ConfidenceThreshold policy.
func NewConfidenceThreshold(topK int, threshold float64) *ConfidenceThreshold {
	return &ConfidenceThreshold{TopK: topK, Threshold: threshold, MinWinners: topK}
}

func (c *ConfidenceThreshold) ShouldStop(ctx context.Context, snap pool.Snapshot, _ budget.RemainingView, _ map[string]float64) (bool, string, error) {
	if err := ctx.Err(); err != nil {
		return false, "", err
	}
	if len(snap.Winners) < c.MinWinners {
		return false, "", nil
	}

	k := c.TopK
	if k <= 0 || k > len(snap.Winners) {
		k = len(snap.Winners)
	}
	var sum float64
	for i := 0; i < k; i++ {
		sum += snap.Winners[i].FinalScore()
	}
	mean := sum / float64(k)
	if mean >= c.Threshold {
		return true, "confidence_threshold_reached", nil
	}
	return false, "", nil
}
