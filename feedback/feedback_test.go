package feedback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragtune-ai/ragtune/budget"
	"github.com/ragtune-ai/ragtune/pool"
)

func winners(scores ...float64) pool.Snapshot {
	views := make([]pool.ItemView, len(scores))
	for i, s := range scores {
		score := s
		views[i] = pool.ItemView{DocID: string(rune('a' + i)), RerankerScore: &score}
	}
	return pool.Snapshot{Winners: views}
}

func TestConfidenceThresholdStopsOnceMeanCrossesBar(t *testing.T) {
	c := NewConfidenceThreshold(2, 0.8)
	stop, reason, err := c.ShouldStop(context.Background(), winners(0.9, 0.85), nil, nil)
	require.NoError(t, err)
	assert.True(t, stop)
	assert.Equal(t, "confidence_threshold_reached", reason)
}

func TestConfidenceThresholdWaitsForMinWinners(t *testing.T) {
	c := NewConfidenceThreshold(2, 0.1)
	stop, _, err := c.ShouldStop(context.Background(), winners(0.99), nil, nil)
	require.NoError(t, err)
	assert.False(t, stop)
}

type fakePolicy struct {
	stop bool
}

func (f fakePolicy) ShouldStop(context.Context, pool.Snapshot, budget.RemainingView, map[string]float64) (bool, string, error) {
	return f.stop, "fake_stop", nil
}

func TestCompositeStopsIfAnyMemberVotesToStop(t *testing.T) {
	c := NewComposite(fakePolicy{stop: false}, fakePolicy{stop: true})
	stop, reason, err := c.ShouldStop(context.Background(), pool.Snapshot{}, nil, nil)
	require.NoError(t, err)
	assert.True(t, stop)
	assert.Equal(t, "fake_stop", reason)
}
