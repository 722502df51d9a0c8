package ragtune

import (
	"context"

	"github.com/ragtune-ai/ragtune/budget"
	"github.com/ragtune-ai/ragtune/pool"
)

var (
	_ Reformulator   = (*Nop)(nil)
	_ Retriever      = (*Nop)(nil)
	_ FeedbackPolicy = (*Nop)(nil)
)

// Nop is a no-operation implementation of every optional interface: a
// Reformulator that proposes nothing, a Retriever that returns nothing,
// and a FeedbackPolicy that never stops early. ControllerConfig defaults
// to it when the Reformulator or Feedback is left unset; a nil Retriever
// is a config error rather than a Nop.
type Nop struct{}

var sharedNop = &Nop{}

// NewNop returns the shared Nop singleton.
func NewNop() *Nop { return sharedNop }

func (n *Nop) Generate(_ context.Context, _ *Context) ([]string, error) { return nil, nil }

func (n *Nop) Retrieve(_ context.Context, _ *Context, _ int) ([]ScoredDocument, error) {
	return nil, nil
}

func (n *Nop) ShouldStop(_ context.Context, _ pool.Snapshot, _ budget.RemainingView, _ map[string]float64) (bool, string, error) {
	return false, "", nil
}
