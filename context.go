package ragtune

import (
	"maps"

	"github.com/ragtune-ai/ragtune/budget"
)

// Context is the per-request state every pluggable component reads from:
// the current query text, free-form metadata, and a read-only view of the
// live budget. Only the Controller holds the underlying *budget.Tracker;
// Context exposes it exclusively through Budget(), which never allows a
// component to consume budget directly (see the Controller as sole
// mutator note in the component contracts).
type Context struct {
	Query   string
	Extra   map[string]any
	tracker *budget.Tracker
}

// NewContext builds a Context for one request against tracker, which the
// Controller constructs and owns for the whole request lifetime.
func NewContext(query string, tracker *budget.Tracker) *Context {
	return &Context{
		Query:   query,
		Extra:   make(map[string]any),
		tracker: tracker,
	}
}

func (c *Context) ensureExtra() {
	if c.Extra == nil {
		c.Extra = make(map[string]any)
	}
}

// Get reads a metadata value set by an earlier pipeline stage.
func (c *Context) Get(key string) (any, bool) {
	c.ensureExtra()
	v, ok := c.Extra[key]
	return v, ok
}

// Set records a metadata value for later pipeline stages to read.
func (c *Context) Set(key string, value any) {
	c.ensureExtra()
	c.Extra[key] = value
}

// Clone returns a deep-enough copy: Query and Extra are independent, but
// the tracker pointer is shared, since every clone within a request still
// arbitrates against the same single live budget.
func (c *Context) Clone() *Context {
	return &Context{
		Query:   c.Query,
		Extra:   maps.Clone(c.Extra),
		tracker: c.tracker,
	}
}

// WithQuery returns a clone carrying a different query string, used when
// fanning a reformulated variant out to retrieval without mutating the
// context the original query round is still using.
func (c *Context) WithQuery(query string) *Context {
	clone := c.Clone()
	clone.Query = query
	return clone
}

// Budget returns a snapshot of remaining budget. It never exposes a way to
// consume budget: only the Controller may do that.
func (c *Context) Budget() budget.RemainingView {
	if c.tracker == nil {
		return budget.RemainingView{}
	}
	return c.tracker.RemainingView()
}
