package tokenizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTextSimple(t *testing.T) {
	e := NewCL100KEstimator()
	count, err := e.EstimateText(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Greater(t, count, 0)
	assert.LessOrEqual(t, count, 10)
}

func TestEstimateTextLongerTextCountsMoreTokens(t *testing.T) {
	e := NewCL100KEstimator()
	short, err := e.EstimateText(context.Background(), "hi")
	require.NoError(t, err)
	long, err := e.EstimateText(context.Background(), "this is a considerably longer sentence with many more words in it")
	require.NoError(t, err)
	assert.Greater(t, long, short)
}

func TestEstimateTextInvalidEncodingReturnsError(t *testing.T) {
	e := NewTikTokenEstimator("not_a_real_encoding")
	_, err := e.EstimateText(context.Background(), "hello")
	assert.Error(t, err)
}

func TestEstimateTextRespectsCancelledContext(t *testing.T) {
	e := NewCL100KEstimator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.EstimateText(ctx, "hello")
	assert.Error(t, err)
}
