package estimator

import (
	"context"
	"strings"

	"github.com/ragtune-ai/ragtune"
	"github.com/ragtune-ai/ragtune/pool"
)

var _ ragtune.Estimator = (*Similarity)(nil)

// Similarity scores each eligible document as Baseline's own value (the
// best retrieval score any round assigned it) plus a bounded consensus
// boost: the token-overlap Jaccard similarity between the candidate's
// content and the reranker-scored winners so far, taking the highest
// similarity against any single winner as the consensus signal. The
// boost is bounded in [0,1] and added to the baseline, per the
// Similarity estimator's contract. Before any winners exist (the first
// loop iteration), the boost is zero and Similarity's output equals
// Baseline's — so a Composite does not need both members to get
// Baseline's signal once Similarity is wired in.
type Similarity struct{}

// NewSimilarity returns a ready Similarity estimator.
func NewSimilarity() *Similarity { return &Similarity{} }

func (s *Similarity) Value(ctx context.Context, snap pool.Snapshot, rc *ragtune.Context) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(snap.Eligible) == 0 {
		return nil, nil
	}

	winnerTokens := make([]map[string]struct{}, len(snap.Winners))
	for i, w := range snap.Winners {
		winnerTokens[i] = tokenSet(w.Content)
	}

	out := make(map[string]float64, len(snap.Eligible))
	for _, it := range snap.Eligible {
		baseline := maxOf(it.Sources)
		out[it.DocID] = baseline + consensusBoost(tokenSet(it.Content), winnerTokens)
	}
	return out, nil
}

// consensusBoost is the highest Jaccard similarity between candidate and
// any one winner, or 0 if there are no winners yet.
func consensusBoost(candidate map[string]struct{}, winners []map[string]struct{}) float64 {
	var best float64
	for _, w := range winners {
		if sim := jaccard(candidate, w); sim > best {
			best = sim
		}
	}
	return best
}

func maxOf(sources map[string]float64) float64 {
	var best float64
	for _, v := range sources {
		if v > best {
			best = v
		}
	}
	return best
}

func tokenSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
