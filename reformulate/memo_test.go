package reformulate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragtune-ai/ragtune"
)

type countingReformulator struct {
	calls int
	out   []string
}

func (c *countingReformulator) Generate(_ context.Context, _ *ragtune.Context) ([]string, error) {
	c.calls++
	return c.out, nil
}

func TestMemoCachesByNormalizedQuery(t *testing.T) {
	inner := &countingReformulator{out: []string{"a", "b"}}
	m, err := NewMemo(inner, 16)
	require.NoError(t, err)

	rc1 := &ragtune.Context{Query: "Capital of France"}
	rc2 := &ragtune.Context{Query: "  capital of france  "}

	first, err := m.Generate(context.Background(), rc1)
	require.NoError(t, err)
	second, err := m.Generate(context.Background(), rc2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls, "second call should be served from cache")
}

func TestMemoDistinctQueriesBothCallInner(t *testing.T) {
	inner := &countingReformulator{out: []string{"a"}}
	m, err := NewMemo(inner, 16)
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), &ragtune.Context{Query: "one"})
	require.NoError(t, err)
	_, err = m.Generate(context.Background(), &ragtune.Context{Query: "two"})
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}
