package pool

// Item is the pool's internal, mutable record for one document. Only the
// Pool itself holds *Item pointers; everyone else is handed ItemView copies.
type Item struct {
	DocID            string
	Content          string
	Metadata         map[string]any
	state            State
	Sources          map[string]float64
	InitialRank      int
	AppearancesCount int
	PriorityValue    float64
	RerankerScore    *float64
	RerankerStrategy string
}

// FinalScore implements the precedence rule: reranker score, if present,
// wins outright; otherwise a positive estimator priority wins; otherwise
// the best score any retrieval round assigned; otherwise zero.
func (it *Item) FinalScore() float64 {
	if it.RerankerScore != nil {
		return *it.RerankerScore
	}
	if it.PriorityValue > 0 {
		return it.PriorityValue
	}
	return maxOf(it.Sources)
}

func (it *Item) view() ItemView {
	return ItemView{
		DocID:            it.DocID,
		Content:          it.Content,
		Metadata:         it.Metadata,
		State:            it.state,
		Sources:          cloneScores(it.Sources),
		InitialRank:      it.InitialRank,
		AppearancesCount: it.AppearancesCount,
		PriorityValue:    it.PriorityValue,
		RerankerScore:    it.RerankerScore,
		RerankerStrategy: it.RerankerStrategy,
	}
}

// ItemView is an immutable snapshot of one pool item, safe to hand to pure
// components (Estimator, Scheduler) and fallible ones (Reranker, Assembler)
// without exposing the pool's internal mutation surface.
type ItemView struct {
	DocID            string
	Content          string
	Metadata         map[string]any
	State            State
	Sources          map[string]float64
	InitialRank      int
	AppearancesCount int
	PriorityValue    float64
	RerankerScore    *float64
	RerankerStrategy string
}

// FinalScore mirrors Item.FinalScore over the snapshot's own fields.
func (v ItemView) FinalScore() float64 {
	if v.RerankerScore != nil {
		return *v.RerankerScore
	}
	if v.PriorityValue > 0 {
		return v.PriorityValue
	}
	return maxOf(v.Sources)
}

func maxOf(m map[string]float64) float64 {
	var best float64
	for _, v := range m {
		if v > best {
			best = v
		}
	}
	return best
}

func cloneScores(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
