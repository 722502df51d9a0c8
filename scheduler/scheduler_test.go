package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragtune-ai/ragtune/budget"
	"github.com/ragtune-ai/ragtune/pool"
)

func snapWithN(n int) pool.Snapshot {
	views := make([]pool.ItemView, n)
	for i := range views {
		views[i] = pool.ItemView{DocID: string(rune('a' + i)), InitialRank: i}
	}
	return pool.Snapshot{Eligible: views}
}

func TestDefaultSchedulerCapsBatchSize(t *testing.T) {
	d := NewDefault(2, "listwise")
	p, err := d.SelectBatch(context.Background(), snapWithN(5), nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Len(t, p.DocIDs, 2)
	assert.Equal(t, "listwise", p.Strategy)
}

func TestDefaultSchedulerStopsBelowMinBatchSize(t *testing.T) {
	d := NewDefault(2, "listwise")
	d.MinBatchSize = 3
	p, err := d.SelectBatch(context.Background(), snapWithN(2), nil)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDefaultSchedulerCapsToRemainingRerankDocs(t *testing.T) {
	d := NewDefault(5, "listwise")
	remaining := budget.RemainingView{budget.ResourceRerankDocs: 1}
	p, err := d.SelectBatch(context.Background(), snapWithN(5), remaining)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Len(t, p.DocIDs, 1, "proposal must never exceed remaining rerank_docs budget")
}

func TestDefaultSchedulerReturnsNilWhenRerankDocsBudgetIsExhausted(t *testing.T) {
	d := NewDefault(5, "listwise")
	remaining := budget.RemainingView{budget.ResourceRerankDocs: 0}
	p, err := d.SelectBatch(context.Background(), snapWithN(5), remaining)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDefaultSchedulerTieBreaksByDocIDWhenPriorityAndRankEqual(t *testing.T) {
	d := NewDefault(3, "listwise")
	views := []pool.ItemView{
		{DocID: "c", InitialRank: 0},
		{DocID: "a", InitialRank: 0},
		{DocID: "b", InitialRank: 0},
	}
	p, err := d.SelectBatch(context.Background(), pool.Snapshot{Eligible: views}, nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, []string{"a", "b", "c"}, p.DocIDs, "equal priority and rank must tie-break by doc_id ascending")
}

func TestCompositeStopsIfAnyMemberVotesToStop(t *testing.T) {
	cheap := NewDefault(1, "cheap")
	never := NewDefault(100, "expensive")
	never.MinBatchSize = 1000 // never fires on a small pool, votes "stop"

	c := NewComposite(cheap, never)
	p, err := c.SelectBatch(context.Background(), snapWithN(2), budget.RemainingView{})
	require.NoError(t, err)
	assert.Nil(t, p, "one member voting stop must veto the whole composite")
}

func TestCompositeEscalatesToMostExpensiveStrategy(t *testing.T) {
	cheap := NewDefault(1, "cheap")
	expensive := NewDefault(2, "expensive")

	c := NewComposite(cheap, expensive)
	p, err := c.SelectBatch(context.Background(), snapWithN(5), budget.RemainingView{})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "expensive", p.Strategy)
}
