package retrieve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragtune-ai/ragtune"
)

func TestInMemoryRanksByTokenOverlap(t *testing.T) {
	r := NewInMemory([]ragtune.ScoredDocument{
		{DocID: "a", Content: "paris is the capital of france"},
		{DocID: "b", Content: "tokyo is the capital of japan"},
		{DocID: "c", Content: "unrelated text about cooking"},
	})

	docs, err := r.Retrieve(context.Background(), &ragtune.Context{Query: "capital of france"}, 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].DocID)
}

func TestInMemoryRespectsTopK(t *testing.T) {
	r := NewInMemory([]ragtune.ScoredDocument{
		{DocID: "a", Content: "one"},
		{DocID: "b", Content: "two"},
		{DocID: "c", Content: "three"},
	})
	docs, err := r.Retrieve(context.Background(), &ragtune.Context{Query: "x"}, 1)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestInMemoryRespectsCancelledContext(t *testing.T) {
	r := NewInMemory(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Retrieve(ctx, &ragtune.Context{Query: "x"}, 5)
	assert.Error(t, err)
}
