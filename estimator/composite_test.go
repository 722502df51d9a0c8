package estimator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragtune-ai/ragtune"
	"github.com/ragtune-ai/ragtune/pool"
)

type constEstimator map[string]float64

func (c constEstimator) Value(_ context.Context, _ pool.Snapshot, _ *ragtune.Context) (map[string]float64, error) {
	return c, nil
}

func snapshotFor(ids ...string) pool.Snapshot {
	views := make([]pool.ItemView, len(ids))
	for i, id := range ids {
		views[i] = pool.ItemView{DocID: id}
	}
	return pool.Snapshot{Eligible: views}
}

func TestCompositeGatingVetoesRegardlessOfMergeMode(t *testing.T) {
	c := NewComposite(MergeMax,
		Member{Estimator: constEstimator{"a": 0.9, "b": 0.9}, Gating: false},
		Member{Estimator: constEstimator{"a": 0, "b": 0.5}, Gating: true},
	)

	out, err := c.Value(context.Background(), snapshotFor("a", "b"), &ragtune.Context{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out["a"], "a gating vote of 0 must veto regardless of other members")
	assert.Equal(t, 0.9, out["b"])
}

func TestCompositeMergeMean(t *testing.T) {
	c := NewComposite(MergeMean,
		Member{Estimator: constEstimator{"a": 1.0}},
		Member{Estimator: constEstimator{"a": 0.5}},
	)
	out, err := c.Value(context.Background(), snapshotFor("a"), &ragtune.Context{})
	require.NoError(t, err)
	assert.Equal(t, 0.75, out["a"])
}
