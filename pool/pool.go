package pool

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Candidate is a retrieval result as handed to Admit, decoupled from the
// root package's ScoredDocument so this package stays import-free of it.
type Candidate struct {
	DocID    string
	Content  string
	Metadata map[string]any
	Score    float64
}

// Warning describes a non-fatal problem the Pool noticed while applying a
// batch operation (e.g. an id the caller named that the pool doesn't know).
type Warning struct {
	DocID  string
	Reason string
}

// Snapshot is a point-in-time, read-only view of the pool split by the two
// states pure components care about: documents still eligible for
// scheduling, and documents that already carry a reranker verdict.
type Snapshot struct {
	// Eligible holds CANDIDATE items in pool insertion order.
	Eligible []ItemView
	// Winners holds RERANKED items, sorted by FinalScore descending.
	Winners []ItemView
}

// Pool is the CandidatePool: the single source of truth for every document
// discovered during one request. The Controller is its only caller.
type Pool struct {
	mu          sync.Mutex
	items       map[string]*Item
	order       []string
	maxPoolSize int
}

// New constructs an empty Pool. maxPoolSize <= 0 means unbounded.
func New(maxPoolSize int) *Pool {
	return &Pool{
		items:       make(map[string]*Item),
		maxPoolSize: maxPoolSize,
	}
}

// Admit merges a retrieval round's results into the pool. Documents already
// known keep their CANDIDATE/IN_FLIGHT/RERANKED/DROPPED state untouched;
// only their provenance (Sources[roundTag]), appearance count, and best
// (lowest) initial rank are updated. New documents are admitted as
// CANDIDATE at rank baseRank+offset. The optional cap policy is applied
// once, after the whole batch has been merged.
func (p *Pool) Admit(docs []Candidate, roundTag string, baseRank int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for offset, doc := range docs {
		rank := baseRank + offset
		if doc.DocID == "" {
			// Adapters retrieving from sources without stable ids (e.g. a
			// raw-text Retriever) still need a pool key; synthesize one.
			doc.DocID = uuid.NewString()
		}
		if existing, ok := p.items[doc.DocID]; ok {
			if cur, has := existing.Sources[roundTag]; !has || doc.Score > cur {
				existing.Sources[roundTag] = doc.Score
			}
			existing.AppearancesCount++
			if rank < existing.InitialRank {
				existing.InitialRank = rank
			}
			continue
		}
		item := &Item{
			DocID:            doc.DocID,
			Content:          doc.Content,
			Metadata:         doc.Metadata,
			state:            StateCandidate,
			Sources:          map[string]float64{roundTag: doc.Score},
			InitialRank:      rank,
			AppearancesCount: 1,
		}
		p.items[doc.DocID] = item
		p.order = append(p.order, doc.DocID)
	}

	p.applyCapLocked()
}

// applyCapLocked ranks every item by max(sources) descending, then doc_id
// ascending, once the pool exceeds maxPoolSize, and removes the CANDIDATE
// items ranked beyond maxPoolSize. Non-CANDIDATE items ranked beyond it are
// exempt and stay, so the pool may still exceed maxPoolSize afterwards.
func (p *Pool) applyCapLocked() {
	if p.maxPoolSize <= 0 {
		return
	}
	if len(p.order) <= p.maxPoolSize {
		return
	}

	type entry struct {
		id  string
		max float64
	}
	ranked := make([]entry, 0, len(p.order))
	for _, id := range p.order {
		ranked = append(ranked, entry{id: id, max: maxOf(p.items[id].Sources)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].max != ranked[j].max {
			return ranked[i].max > ranked[j].max
		}
		return ranked[i].id < ranked[j].id
	})

	toRemove := make(map[string]bool, len(ranked)-p.maxPoolSize)
	for _, e := range ranked[p.maxPoolSize:] {
		if p.items[e.id].state == StateCandidate {
			toRemove[e.id] = true
		}
	}
	if len(toRemove) == 0 {
		return
	}

	newOrder := make([]string, 0, len(p.order)-len(toRemove))
	for _, id := range p.order {
		if toRemove[id] {
			delete(p.items, id)
			continue
		}
		newOrder = append(newOrder, id)
	}
	p.order = newOrder
}

// Transition moves every named id to target. Validation runs over the
// whole id list before any mutation is applied: if any named id is in an
// illegal state for target, the pool is left unchanged and an
// *IllegalTransitionError is returned. Unknown ids are reported as
// warnings and otherwise ignored.
func (p *Pool) Transition(ids []string, target State) ([]Warning, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var warnings []Warning
	legal := make([]string, 0, len(ids))
	for _, id := range ids {
		item, ok := p.items[id]
		if !ok {
			warnings = append(warnings, Warning{DocID: id, Reason: "unknown id"})
			continue
		}
		if !isLegal(item.state, target) {
			return warnings, &IllegalTransitionError{DocID: id, From: item.state, To: target}
		}
		legal = append(legal, id)
	}
	for _, id := range legal {
		p.items[id].state = target
	}
	return warnings, nil
}

// UpdateScores applies reranker verdicts: every id in scores must currently
// be IN_FLIGHT (validated before any mutation, same atomicity guarantee as
// Transition) and becomes RERANKED carrying that score and strategy tag.
// Any id left IN_FLIGHT afterward (proposed but not returned by the
// reranker) is transitioned to DROPPED. An empty scores map is a no-op.
func (p *Pool) UpdateScores(scores map[string]float64, strategy string) ([]Warning, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(scores) == 0 {
		return nil, nil
	}

	var warnings []Warning
	valid := make(map[string]float64, len(scores))
	for id, score := range scores {
		item, ok := p.items[id]
		if !ok {
			warnings = append(warnings, Warning{DocID: id, Reason: "unknown id"})
			continue
		}
		if item.state != StateInFlight {
			return warnings, fmt.Errorf("pool: update_scores: doc %q: %w", id, ErrNotInFlight)
		}
		valid[id] = score
	}

	for id, score := range valid {
		s := score
		item := p.items[id]
		item.RerankerScore = &s
		item.RerankerStrategy = strategy
		item.state = StateReranked
	}
	for _, item := range p.items {
		if item.state == StateInFlight {
			item.state = StateDropped
		}
	}
	return warnings, nil
}

// ApplyPriorities sets PriorityValue on named CANDIDATE items. Ids that are
// unknown or not CANDIDATE are silently skipped: Estimator output is
// advisory and must never fail the loop on a stale id.
func (p *Pool) ApplyPriorities(priorities map[string]float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, v := range priorities {
		item, ok := p.items[id]
		if !ok || item.state != StateCandidate {
			continue
		}
		item.PriorityValue = v
	}
}

// ItemsByID returns views for exactly the named ids, in the order given,
// skipping any id the pool no longer recognizes.
func (p *Pool) ItemsByID(ids []string) []ItemView {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ItemView, 0, len(ids))
	for _, id := range ids {
		if item, ok := p.items[id]; ok {
			out = append(out, item.view())
		}
	}
	return out
}

// GetActiveItems returns every CANDIDATE or RERANKED item, sorted by
// FinalScore descending, then initial rank ascending, then doc_id
// ascending — the order an Assembler should consume.
func (p *Pool) GetActiveItems() []ItemView {
	p.mu.Lock()
	defer p.mu.Unlock()
	var views []ItemView
	for _, id := range p.order {
		item := p.items[id]
		if item.state == StateCandidate || item.state == StateReranked {
			views = append(views, item.view())
		}
	}
	sort.SliceStable(views, func(i, j int) bool {
		si, sj := views[i].FinalScore(), views[j].FinalScore()
		if si != sj {
			return si > sj
		}
		if views[i].InitialRank != views[j].InitialRank {
			return views[i].InitialRank < views[j].InitialRank
		}
		return views[i].DocID < views[j].DocID
	})
	return views
}

// GetEligible returns CANDIDATE items in pool insertion order; the
// Scheduler is responsible for its own ranking.
func (p *Pool) GetEligible() []ItemView {
	p.mu.Lock()
	defer p.mu.Unlock()
	var views []ItemView
	for _, id := range p.order {
		item := p.items[id]
		if item.state == StateCandidate {
			views = append(views, item.view())
		}
	}
	return views
}

// Snapshot returns the Eligible/Winners split pure components consume.
func (p *Pool) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	var eligible, winners []ItemView
	for _, id := range p.order {
		item := p.items[id]
		switch item.state {
		case StateCandidate:
			eligible = append(eligible, item.view())
		case StateReranked:
			winners = append(winners, item.view())
		}
	}
	sort.SliceStable(winners, func(i, j int) bool {
		return winners[i].FinalScore() > winners[j].FinalScore()
	})
	return Snapshot{Eligible: eligible, Winners: winners}
}

// Size returns the total number of items the pool has ever admitted and
// not since evicted by the cap policy.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.order)
}
