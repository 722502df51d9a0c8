// Package ragtune implements an iterative, budget-aware retrieval and
// reranking pipeline.
//
// A Controller runs a single request through four stages: an initial
// retrieval round against the original query, an optional reformulation
// fan-out that retrieves against alternate phrasings of the same query,
// an iterative estimate/schedule/rerank loop that narrows a growing pool
// of candidates down to a ranked set of winners, and a final assembly
// pass that selects the documents returned to the caller.
//
// Every stage after the first retrieval round is driven by pluggable
// components (Retriever, Reformulator, Estimator, Scheduler, Reranker,
// FeedbackPolicy, Assembler) defined as interfaces in this package;
// reference implementations live in the pool, budget, estimator,
// scheduler, feedback, rerank, reformulate, retrieve, assemble, and
// tokenizer subpackages. The Controller is the sole mutator of a
// request's CandidatePool (package pool) and CostTracker (package
// budget); every other component is either a pure function over a
// read-only snapshot or a fallible I/O call the Controller recovers
// around.
package ragtune
