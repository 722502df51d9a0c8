package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTryConsumeStaysWithinLimit(t *testing.T) {
	tr := NewTracker(Limits{ResourceTokens: 100})
	assert.True(t, tr.TryConsume(ResourceTokens, 40))
	assert.True(t, tr.TryConsume(ResourceTokens, 40))
	assert.Equal(t, 20.0, tr.RemainingView()[ResourceTokens])
}

func TestTryConsumeReportsOverageButStillApplies(t *testing.T) {
	tr := NewTracker(Limits{ResourceTokens: 100})
	assert.True(t, tr.TryConsume(ResourceTokens, 90))
	assert.False(t, tr.TryConsume(ResourceTokens, 20), "overage must be reported")
	assert.Equal(t, 0.0, tr.RemainingView()[ResourceTokens], "remaining never goes negative")
	assert.True(t, tr.IsExhausted(), "tokens is a hard-stop resource")
}

func TestUnboundedResourceNeverExhausts(t *testing.T) {
	tr := NewTracker(Limits{ResourceTokens: 10})
	assert.True(t, tr.TryConsume("custom_metric", 1_000_000))
	assert.False(t, tr.IsExhausted())
}

func TestTryConsumeAllAppliesEveryResourceAtomicallyInOneLock(t *testing.T) {
	tr := NewTracker(Limits{ResourceRerankDocs: 10, ResourceRerankCalls: 1})
	ok := tr.TryConsumeAll(map[string]float64{ResourceRerankDocs: 5, ResourceRerankCalls: 1})
	assert.True(t, ok)
	view := tr.RemainingView()
	assert.Equal(t, 5.0, view[ResourceRerankDocs])
	assert.Equal(t, 0.0, view[ResourceRerankCalls])
}

func TestTryConsumeGatedDeniesAndAppliesNothing(t *testing.T) {
	tr := NewTracker(Limits{ResourceReformulations: 2})
	assert.True(t, tr.TryConsumeGated(ResourceReformulations, 2))
	assert.False(t, tr.TryConsumeGated(ResourceReformulations, 1), "second charge would exceed the limit")
	assert.Equal(t, 0.0, tr.RemainingView()[ResourceReformulations])
	assert.Equal(t, 2.0, tr.Snapshot()[ResourceReformulations], "denied gated charge must not be applied")
}

func TestTryConsumeAllGatedAppliesNothingIfAnyResourceWouldOverflow(t *testing.T) {
	tr := NewTracker(Limits{ResourceRerankDocs: 10, ResourceRerankCalls: 1})
	ok := tr.TryConsumeAllGated(map[string]float64{ResourceRerankDocs: 5, ResourceRerankCalls: 2})
	assert.False(t, ok, "rerank_calls alone would overflow")
	snap := tr.Snapshot()
	assert.Equal(t, 0.0, snap[ResourceRerankDocs], "no partial charge even though rerank_docs alone would have fit")
	assert.Equal(t, 0.0, snap[ResourceRerankCalls])
}

func TestLatencyIsLiveAndAutoCharged(t *testing.T) {
	tr := NewTracker(Limits{ResourceLatencyMs: 5})
	time.Sleep(10 * time.Millisecond)
	assert.True(t, tr.IsExhausted(), "latency must be charged from wall-clock elapsed time")
}

func TestSnapshotIncludesUnboundedResources(t *testing.T) {
	tr := NewTracker(Limits{ResourceTokens: 100})
	tr.TryConsume("no_limit_resource", 7)
	snap := tr.Snapshot()
	assert.Equal(t, 7.0, snap["no_limit_resource"])
}
