package reformulate

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ragtune-ai/ragtune"
)

var _ ragtune.Reformulator = (*Memo)(nil)

// Memo wraps a Reformulator with an LRU cache keyed on normalized query
// text. Reformulations are pure functions of the query text alone, so
// repeated identical queries never need to pay the LLM round trip twice.
// Memo itself never charges any budget resource: the Controller charges
// the reformulations resource once per request before calling Generate,
// whether the answer then comes from the cache or from the wrapped
// Reformulator. lru.Cache is already safe for concurrent use.
type Memo struct {
	inner ragtune.Reformulator
	cache *lru.Cache[string, []string]
}

// NewMemo wraps inner with an LRU cache holding up to size distinct
// normalized queries.
func NewMemo(inner ragtune.Reformulator, size int) (*Memo, error) {
	cache, err := lru.New[string, []string](size)
	if err != nil {
		return nil, err
	}
	return &Memo{inner: inner, cache: cache}, nil
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func (m *Memo) Generate(ctx context.Context, rc *ragtune.Context) ([]string, error) {
	key := normalizeQuery(rc.Query)

	if cached, ok := m.cache.Get(key); ok {
		return cached, nil
	}

	queries, err := m.inner.Generate(ctx, rc)
	if err != nil {
		return nil, err
	}

	// Defense in depth: the wrapped Reformulator should already enforce
	// the contract, but a cached dirty entry would otherwise be served
	// forever.
	queries = CleanVariants(rc.Query, queries)

	m.cache.Add(key, queries)
	return queries, nil
}
