package rerank

import (
	"context"
	"strings"

	"github.com/ragtune-ai/ragtune"
	"github.com/ragtune-ai/ragtune/pool"
)

var _ ragtune.Reranker = (*Lexical)(nil)

// Lexical scores each candidate by token overlap with the query. It needs
// no external model, so it is useful both in tests and as a degraded
// fallback strategy when an LLM reranker is unavailable.
type Lexical struct{}

// NewLexical returns a Lexical reranker.
func NewLexical() *Lexical {
	return &Lexical{}
}

func (l *Lexical) Rerank(ctx context.Context, items []pool.ItemView, strategy string, rc *ragtune.Context) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	queryTokens := tokenSet(rc.Query)
	scores := make(map[string]float64, len(items))
	for _, it := range items {
		docTokens := tokenSet(it.Content)
		scores[it.DocID] = overlapRatio(queryTokens, docTokens)
	}
	return scores, nil
}

func tokenSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// overlapRatio is the fraction of query tokens also present in doc,
// i.e. recall of the query against the document, not Jaccard.
func overlapRatio(query, doc map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	var hits int
	for tok := range query {
		if _, ok := doc[tok]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}
