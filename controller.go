package ragtune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ragtune-ai/ragtune/budget"
	"github.com/ragtune-ai/ragtune/pool"
)

// RetrievalConfig shapes the initial and reformulation-fan-out retrieval
// rounds.
type RetrievalConfig struct {
	// OriginalQueryDepth is topK for the first, fatal-on-failure retrieval.
	OriginalQueryDepth int
	// DepthPerReformulation is topK for each reformulated-variant retrieval.
	DepthPerReformulation int
	// ExpectedRetrievalCost, if set, is charged against the tracker before
	// each reformulated-variant retrieval is dispatched; fan-out stops
	// (without cancelling already-dispatched variants) the first time a
	// charge would be denied. Nil means every variant is retrieved.
	ExpectedRetrievalCost map[string]float64
}

func (c *RetrievalConfig) validate() {
	if c.OriginalQueryDepth <= 0 {
		c.OriginalQueryDepth = 20
	}
	if c.DepthPerReformulation <= 0 {
		c.DepthPerReformulation = c.OriginalQueryDepth
	}
}

// ControllerConfig wires every pluggable component together with the
// request's resource limits. Retriever/Estimator/Scheduler/Reranker/
// Assembler are required; Reformulator and Feedback default to Nop.
type ControllerConfig struct {
	Budget       budget.Limits
	Retriever    Retriever
	Reformulator Reformulator
	Estimator    Estimator
	Scheduler    Scheduler
	Reranker     Reranker
	Assembler    Assembler
	Feedback     FeedbackPolicy
	Retrieval    RetrievalConfig
	// MaxPoolSize bounds the CandidatePool; 0 means unbounded.
	MaxPoolSize int
	Logger      *slog.Logger
}

func (c *ControllerConfig) validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.Retriever == nil {
		return errors.New("ragtune: controller config: retriever is required")
	}
	if c.Estimator == nil {
		return errors.New("ragtune: controller config: estimator is required")
	}
	if c.Scheduler == nil {
		return errors.New("ragtune: controller config: scheduler is required")
	}
	if c.Reranker == nil {
		return errors.New("ragtune: controller config: reranker is required")
	}
	if c.Assembler == nil {
		return errors.New("ragtune: controller config: assembler is required")
	}
	if c.Reformulator == nil {
		c.Reformulator = NewNop()
	}
	if c.Feedback == nil {
		c.Feedback = NewNop()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	c.Retrieval.validate()
	return nil
}

// Controller is the sole mutator of a request's CandidatePool and
// CostTracker. It orchestrates retrieval, reformulation fan-out, and the
// iterative estimate/schedule/rerank loop, then assembles the final
// document list.
type Controller struct {
	cfg ControllerConfig
}

// NewController validates cfg (applying defaults in place) and returns a
// ready Controller.
func NewController(cfg *ControllerConfig) (*Controller, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("ragtune: invalid controller config: %w", err)
	}
	return &Controller{cfg: *cfg}, nil
}

// Run executes one request synchronously to completion.
func (c *Controller) Run(ctx context.Context, query string) (*ControllerOutput, error) {
	tracker := budget.NewTracker(c.cfg.Budget)
	rc := NewContext(query, tracker)
	p := pool.New(c.cfg.MaxPoolSize)
	trace := NewTrace()
	log := c.cfg.Logger

	originalDocs, err := c.cfg.Retriever.Retrieve(ctx, rc, c.cfg.Retrieval.OriginalQueryDepth)
	if err != nil {
		trace.Append("retriever", "retrieve_failed", map[string]any{"round": "original", "error": err.Error()})
		log.Error("original retrieval failed", slog.String("error", err.Error()))
		return nil, &FatalRetrievalError{Err: err, Trace: trace.Events()}
	}
	p.Admit(toCandidates(originalDocs), "original", 0)
	trace.Append("retriever", "retrieve", map[string]any{"round": "original", "count": len(originalDocs)})

	if _, isNop := c.cfg.Reformulator.(*Nop); !isNop {
		c.runReformulation(ctx, rc, p, trace, log)
	}

	loopReason, err := c.runLoop(ctx, rc, p, tracker, trace, log)
	if err != nil {
		// IllegalTransition is always a programming error: it leaves the
		// core unhandled rather than being degraded around like a
		// ComponentFailure.
		return nil, err
	}
	trace.Append("controller", "loop_exit", map[string]any{"reason": loopReason})

	remaining := tracker.RemainingView()
	active := p.GetActiveItems()
	docs, err := c.cfg.Assembler.Assemble(ctx, active, rc, remaining[budget.ResourceTokens])
	if err != nil {
		trace.Append("assembler", "assembly_failed", map[string]any{"error": err.Error()})
		log.Warn("assembler failed, falling back to ranked active items", slog.String("error", err.Error()))
		docs = toScoredDocuments(active)
	} else {
		trace.Append("assembler", "assembly", map[string]any{"count": len(docs)})
	}

	return &ControllerOutput{
		Query:            query,
		Documents:        docs,
		Trace:            trace.Events(),
		FinalBudgetState: tracker.Snapshot(),
	}, nil
}

// runReformulation generates reformulated query variants (charging the
// reformulations resource once) and fans their retrievals out
// concurrently, admitting results back into the pool in deterministic
// variant order regardless of which goroutine finished first.
func (c *Controller) runReformulation(ctx context.Context, rc *Context, p *pool.Pool, trace *Trace, log *slog.Logger) {
	tracker := rc.tracker
	if tracker != nil && !tracker.TryConsumeGated(budget.ResourceReformulations, 1) {
		trace.Append("controller", "budget_deny", map[string]any{"resource": budget.ResourceReformulations})
		return
	}

	if err := ctx.Err(); err != nil {
		trace.Append("controller", "cancelled", map[string]any{"stage": "reformulate", "error": err.Error()})
		return
	}

	variants, err := c.cfg.Reformulator.Generate(ctx, rc)
	if err != nil {
		trace.Append("reformulator", "reformulate_failed", map[string]any{"error": err.Error()})
		log.Warn("reformulation failed, continuing with original query only", slog.String("error", err.Error()))
		return
	}
	if len(variants) == 0 {
		return
	}
	trace.Append("reformulator", "reformulate", map[string]any{"count": len(variants)})

	type pending struct {
		tag     string
		ctxCopy *Context
	}
	toRun := make([]pending, 0, len(variants))
	for i, variant := range variants {
		tag := fmt.Sprintf("rewrite_%d", i)
		if len(c.cfg.Retrieval.ExpectedRetrievalCost) > 0 {
			if !tracker.TryConsumeAllGated(c.cfg.Retrieval.ExpectedRetrievalCost) {
				trace.Append("controller", "budget_deny", map[string]any{
					"resource": "retrieval", "stopped_at_variant": i,
				})
				break
			}
		}
		toRun = append(toRun, pending{tag: tag, ctxCopy: rc.WithQuery(variant)})
	}
	if len(toRun) == 0 {
		return
	}

	type result struct {
		tag  string
		docs []ScoredDocument
		err  error
	}
	results := make([]result, len(toRun))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range toRun {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = result{tag: item.tag, err: err}
				return nil
			}
			docs, err := c.cfg.Retriever.Retrieve(ctx, item.ctxCopy, c.cfg.Retrieval.DepthPerReformulation)
			results[i] = result{tag: item.tag, docs: docs, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		if res.err != nil {
			trace.Append("retriever", "retrieve_failed", map[string]any{"round": res.tag, "error": res.err.Error()})
			log.Warn("reformulated retrieval failed", slog.String("round", res.tag), slog.String("error", res.err.Error()))
			continue
		}
		if len(res.docs) == 0 {
			continue
		}
		p.Admit(toCandidates(res.docs), res.tag, 0)
		trace.Append("retriever", "retrieve", map[string]any{"round": res.tag, "count": len(res.docs)})
	}
}

// runLoop runs the estimate/feedback/schedule/rerank cycle until a
// terminal condition is reached, returning the reason it exited.
func (c *Controller) runLoop(ctx context.Context, rc *Context, p *pool.Pool, tracker *budget.Tracker, trace *Trace, log *slog.Logger) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			trace.Append("controller", "cancelled", map[string]any{"stage": "loop", "error": err.Error()})
			return "cancelled", nil
		}

		snap := p.Snapshot()
		priorities, err := c.cfg.Estimator.Value(ctx, snap, rc)
		if err != nil {
			trace.Append("estimator", "estimate_failed", map[string]any{"error": err.Error()})
			log.Error("estimator failed", slog.String("error", err.Error()))
			return "estimator_error", nil
		}
		p.ApplyPriorities(priorities)
		trace.Append("estimator", "estimate", map[string]any{"count": len(priorities)})

		stop, reason, err := c.cfg.Feedback.ShouldStop(ctx, p.Snapshot(), tracker.RemainingView(), priorities)
		if err != nil {
			trace.Append("feedback", "feedback_error", map[string]any{"error": err.Error()})
			log.Warn("feedback policy failed, ignoring its vote this round", slog.String("error", err.Error()))
		} else if stop {
			trace.Append("feedback", "should_stop", map[string]any{"reason": reason})
			return "feedback:" + reason, nil
		}

		proposal, err := c.cfg.Scheduler.SelectBatch(ctx, p.Snapshot(), tracker.RemainingView())
		if err != nil {
			trace.Append("scheduler", "propose_batch_failed", map[string]any{"error": err.Error()})
			log.Error("scheduler failed", slog.String("error", err.Error()))
			return "scheduler_error", nil
		}
		if proposal == nil || len(proposal.DocIDs) == 0 {
			trace.Append("scheduler", "no_proposal", nil)
			return "no_proposal", nil
		}
		trace.Append("scheduler", "propose_batch", map[string]any{
			"doc_ids": proposal.DocIDs, "strategy": proposal.Strategy, "expected_cost": proposal.ExpectedCost,
		})

		if _, err := p.Transition(proposal.DocIDs, pool.StateInFlight); err != nil {
			// IllegalTransition is always a programming error: it propagates
			// out of Run unhandled rather than being degraded around.
			log.Error("illegal transition from scheduler proposal", slog.String("error", err.Error()))
			return "", err
		}

		if err := ctx.Err(); err != nil {
			// Never leave a batch stuck IN_FLIGHT on cancellation.
			if _, tErr := p.Transition(proposal.DocIDs, pool.StateDropped); tErr != nil {
				return "", tErr
			}
			trace.Append("controller", "cancelled", map[string]any{"stage": "rerank", "error": err.Error()})
			return "cancelled", nil
		}

		items := p.ItemsByID(proposal.DocIDs)
		scores, err := c.cfg.Reranker.Rerank(ctx, items, proposal.Strategy, rc)
		if err != nil {
			trace.Append("reranker", "rerank_error", map[string]any{"strategy": proposal.Strategy, "error": err.Error()})
			log.Warn("reranker failed, dropping batch and continuing",
				slog.String("strategy", proposal.Strategy), slog.String("error", err.Error()))
			if _, tErr := p.Transition(proposal.DocIDs, pool.StateDropped); tErr != nil {
				return "", tErr
			}
			continue
		}

		warnings, err := p.UpdateScores(scores, proposal.Strategy)
		if err != nil {
			log.Error("update_scores rejected reranker output", slog.String("error", err.Error()))
			return "", err
		}
		for _, w := range warnings {
			trace.Append("pool", "unknown_id", map[string]any{"doc_id": w.DocID, "reason": w.Reason})
		}
		if len(scores) == 0 {
			// UpdateScores is a no-op on an empty result, so the Controller
			// drops the unreturned batch itself.
			if _, tErr := p.Transition(proposal.DocIDs, pool.StateDropped); tErr != nil {
				return "", tErr
			}
		}
		trace.Append("reranker", "rerank_batch", map[string]any{
			"strategy": proposal.Strategy, "requested": len(proposal.DocIDs), "scored": len(scores),
		})

		within := tracker.TryConsumeAll(proposal.ExpectedCost)
		trace.Append("controller", "budget_consume", map[string]any{
			"expected_cost": proposal.ExpectedCost, "within_limit": within,
		})
		if !within {
			trace.Append("controller", "budget_deny", map[string]any{"expected_cost": proposal.ExpectedCost})
		}

		if tracker.IsExhausted() {
			return "budget_exhausted", nil
		}
	}
}

func toCandidates(docs []ScoredDocument) []pool.Candidate {
	out := make([]pool.Candidate, len(docs))
	for i, d := range docs {
		out[i] = pool.Candidate{DocID: d.DocID, Content: d.Content, Metadata: d.Metadata, Score: d.Score}
	}
	return out
}

func toScoredDocuments(items []pool.ItemView) []ScoredDocument {
	out := make([]ScoredDocument, len(items))
	for i, it := range items {
		out[i] = ScoredDocument{DocID: it.DocID, Content: it.Content, Metadata: it.Metadata, Score: it.FinalScore()}
	}
	return out
}
