package estimator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragtune-ai/ragtune"
	"github.com/ragtune-ai/ragtune/pool"
)

func TestBaselineIsMaxOfSources(t *testing.T) {
	b := NewBaseline()
	snap := pool.Snapshot{Eligible: []pool.ItemView{
		{DocID: "a", Sources: map[string]float64{"original": 0.4, "rewrite_0": 0.9}},
	}}
	out, err := b.Value(context.Background(), snap, &ragtune.Context{})
	require.NoError(t, err)
	assert.Equal(t, 0.9, out["a"])
}

func TestSimilarityEqualsBaselineWithNoWinnersYet(t *testing.T) {
	s := NewSimilarity()
	snap := pool.Snapshot{
		Eligible: []pool.ItemView{
			{DocID: "a", Content: "paris capital france", Sources: map[string]float64{"original": 0.6}},
		},
	}
	out, err := s.Value(context.Background(), snap, &ragtune.Context{})
	require.NoError(t, err)
	assert.Equal(t, 0.6, out["a"], "no winners yet means the consensus boost is zero")
}

func TestSimilarityAddsBoundedBoostFromWinnerOverlap(t *testing.T) {
	s := NewSimilarity()
	score := 0.9
	snap := pool.Snapshot{
		Eligible: []pool.ItemView{
			{DocID: "a", Content: "paris capital france", Sources: map[string]float64{"original": 0.4}},
			{DocID: "b", Content: "unrelated cooking recipe", Sources: map[string]float64{"original": 0.4}},
		},
		Winners: []pool.ItemView{
			{DocID: "w", Content: "paris capital france", RerankerScore: &score},
		},
	}
	out, err := s.Value(context.Background(), snap, &ragtune.Context{})
	require.NoError(t, err)
	assert.Greater(t, out["a"], out["b"], "overlap with a winner must boost a candidate over one with none")
	assert.LessOrEqual(t, out["a"]-0.4, 1.0, "boost term must stay bounded in [0,1]")
}
