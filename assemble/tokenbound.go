// Package assemble provides reference Assembler implementations: the final
// stage that turns whatever the pool holds as CANDIDATE/RERANKED into the
// document list a caller actually receives.
package assemble

import (
	"context"

	"github.com/ragtune-ai/ragtune"
	"github.com/ragtune-ai/ragtune/pool"
	"github.com/ragtune-ai/ragtune/tokenizer"
)

var _ ragtune.Assembler = (*TokenBoundAssembler)(nil)

// TokenBoundAssembler walks items in the order the pool already ranks them
// (FinalScore descending), greedily including each document that still
// fits within remainingTokens; a document that would exceed it is skipped
// and later, smaller documents may still be included. Modeled on the teacher's
// TokenCountBatcher: token counts come from an injected estimator and a
// ReservePercentage of the budget is held back as headroom, but unlike the
// batcher this assembler produces one final ordered list, not a sequence
// of batches.
type TokenBoundAssembler struct {
	Estimator         tokenizer.TextEstimator
	ReservePercentage float64
}

// NewTokenBoundAssembler returns an assembler using estimator for token
// counts, holding back reservePercentage of the budget as headroom (e.g.
// 0.1 reserves 10%), matching the teacher's TokenCountBatcherConfig
// default.
func NewTokenBoundAssembler(estimator tokenizer.TextEstimator, reservePercentage float64) *TokenBoundAssembler {
	if reservePercentage < 0 || reservePercentage >= 1 {
		reservePercentage = 0.1
	}
	return &TokenBoundAssembler{Estimator: estimator, ReservePercentage: reservePercentage}
}

func (a *TokenBoundAssembler) Assemble(ctx context.Context, items []pool.ItemView, _ *ragtune.Context, remainingTokens float64) ([]ragtune.ScoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	budget := remainingTokens * (1 - a.ReservePercentage)
	if budget < 0 {
		budget = 0
	}

	var used float64
	out := make([]ragtune.ScoredDocument, 0, len(items))
	for _, it := range items {
		count, err := a.Estimator.EstimateText(ctx, it.Content)
		if err != nil {
			return nil, err
		}
		if used+float64(count) > budget {
			continue
		}
		used += float64(count)
		out = append(out, ragtune.ScoredDocument{
			DocID:    it.DocID,
			Content:  it.Content,
			Metadata: it.Metadata,
			Score:    it.FinalScore(),
		})
	}
	return out, nil
}
