package retrieve

import (
	"context"
	"sort"
	"strings"

	"github.com/ragtune-ai/ragtune"
)

var _ ragtune.Retriever = (*InMemory)(nil)

// InMemory scores a fixed corpus by query/content token overlap and
// returns the topK highest-scoring documents. It needs no external
// service, so it is useful for tests and small static corpora.
type InMemory struct {
	corpus []ragtune.ScoredDocument
}

// NewInMemory returns a retriever over corpus. Each document's Score
// field is ignored; scores are computed fresh per query.
func NewInMemory(corpus []ragtune.ScoredDocument) *InMemory {
	return &InMemory{corpus: corpus}
}

func (m *InMemory) Retrieve(ctx context.Context, rc *ragtune.Context, topK int) ([]ragtune.ScoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	queryTokens := tokenize(rc.Query)
	scored := make([]ragtune.ScoredDocument, len(m.corpus))
	for i, doc := range m.corpus {
		scored[i] = doc
		scored[i].Score = overlapScore(queryTokens, tokenize(doc.Content))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > 0 && topK < len(scored) {
		scored = scored[:topK]
	}
	return scored, nil
}

func tokenize(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func overlapScore(query, doc map[string]struct{}) float64 {
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
